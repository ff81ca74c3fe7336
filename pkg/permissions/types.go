package permissions

// Function names the portal subsystems access is granted on.
const (
	FunctionMembers = "members"
	FunctionWebshop = "webshop"
	FunctionOrders  = "orders"
	FunctionEvents  = "events"
	FunctionRoles   = "roles"
)

// Action represents an operation on a portal function.
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionExport Action = "export"
)

// FieldTag marks a grant as covering a category of sensitive record fields.
// A caller whose grant for a function carries the tag may see and modify the
// fields in that category; everyone else gets them redacted or stripped.
type FieldTag string

const (
	// TagFinancial covers dues, bank details and order amounts.
	TagFinancial FieldTag = "financial"
)

// Grant is the atomic permission unit: one action on one function, optionally
// tagged with the field categories it unlocks.
type Grant struct {
	Function string     `yaml:"function"`
	Action   Action     `yaml:"action"`
	Tags     []FieldTag `yaml:"tags,omitempty"`
}

// RoleDefinition describes a single role in the catalog.
type RoleDefinition struct {
	// Name is the role token as issued by the identity provider.
	Name string `yaml:"name"`

	// Precedence orders roles for display purposes only ("show the user's
	// primary role"). It never overrides grants from other roles.
	Precedence int `yaml:"precedence"`

	Grants []Grant `yaml:"grants"`

	// Legacy marks roles from the old naming generation (wildcard-suffixed
	// names such as "Members_CRUD_All"). Their use is logged and counted.
	Legacy bool `yaml:"legacy,omitempty"`

	// AllRegions marks legacy roles whose "_All" suffix bakes an all-regions
	// scope into the role name itself.
	AllRegions bool `yaml:"all_regions,omitempty"`
}
