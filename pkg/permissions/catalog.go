package permissions

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Catalog holds the authoritative set of role definitions. It is immutable
// after construction and safe for concurrent readers.
type Catalog struct {
	byName  map[string]RoleDefinition
	ordered []RoleDefinition
}

// NewCatalog builds a catalog from the given definitions. A later definition
// with the same name replaces an earlier one, which is how the YAML overlay
// amends the built-in set.
func NewCatalog(defs ...RoleDefinition) *Catalog {
	byName := make(map[string]RoleDefinition, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
	}
	ordered := make([]RoleDefinition, 0, len(byName))
	for _, def := range byName {
		ordered = append(ordered, def)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Precedence != ordered[j].Precedence {
			return ordered[i].Precedence < ordered[j].Precedence
		}
		return ordered[i].Name < ordered[j].Name
	})
	return &Catalog{byName: byName, ordered: ordered}
}

// Definition looks up a role by its token name.
func (c *Catalog) Definition(name string) (RoleDefinition, bool) {
	def, ok := c.byName[name]
	return def, ok
}

// All returns every role definition ordered by precedence ascending.
func (c *Catalog) All() []RoleDefinition {
	out := make([]RoleDefinition, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// WithOverlay returns a new catalog with the definitions from a YAML overlay
// file applied on top of the receiver. Overlay entries replace built-in
// definitions of the same name.
func (c *Catalog) WithOverlay(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog overlay: %w", err)
	}
	var overlay struct {
		Roles []RoleDefinition `yaml:"roles"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse catalog overlay: %w", err)
	}
	defs := append(c.All(), overlay.Roles...)
	return NewCatalog(defs...), nil
}

// DefaultCatalog returns the built-in role catalog. Both naming generations
// are present: the current split roles and the legacy wildcard-suffixed names
// still issued to long-standing accounts.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		RoleDefinition{
			Name:       "hdcnLeden",
			Precedence: 10,
			Grants: []Grant{
				{Function: FunctionWebshop, Action: ActionRead},
				{Function: FunctionEvents, Action: ActionRead},
			},
		},
		RoleDefinition{
			Name:       "Members_Read",
			Precedence: 30,
			Grants: []Grant{
				{Function: FunctionMembers, Action: ActionRead},
			},
		},
		RoleDefinition{
			Name:       "Members_CRUD",
			Precedence: 40,
			Grants: []Grant{
				{Function: FunctionMembers, Action: ActionRead},
				{Function: FunctionMembers, Action: ActionWrite},
				{Function: FunctionMembers, Action: ActionExport},
			},
		},
		RoleDefinition{
			Name:       "Members_Financial",
			Precedence: 45,
			Grants: []Grant{
				{Function: FunctionMembers, Action: ActionRead, Tags: []FieldTag{TagFinancial}},
				{Function: FunctionMembers, Action: ActionWrite, Tags: []FieldTag{TagFinancial}},
				{Function: FunctionMembers, Action: ActionExport, Tags: []FieldTag{TagFinancial}},
			},
		},
		RoleDefinition{
			Name:       "Webshop_CRUD",
			Precedence: 40,
			Grants: []Grant{
				{Function: FunctionWebshop, Action: ActionRead},
				{Function: FunctionWebshop, Action: ActionWrite},
				{Function: FunctionWebshop, Action: ActionExport},
				{Function: FunctionOrders, Action: ActionRead, Tags: []FieldTag{TagFinancial}},
				{Function: FunctionOrders, Action: ActionWrite},
			},
		},
		RoleDefinition{
			Name:       "Events_CRUD",
			Precedence: 40,
			Grants: []Grant{
				{Function: FunctionEvents, Action: ActionRead},
				{Function: FunctionEvents, Action: ActionWrite},
				{Function: FunctionEvents, Action: ActionExport},
			},
		},
		RoleDefinition{
			Name:       "Portal_Admin",
			Precedence: 100,
			Grants: []Grant{
				{Function: FunctionMembers, Action: ActionRead, Tags: []FieldTag{TagFinancial}},
				{Function: FunctionMembers, Action: ActionWrite, Tags: []FieldTag{TagFinancial}},
				{Function: FunctionMembers, Action: ActionExport, Tags: []FieldTag{TagFinancial}},
				{Function: FunctionWebshop, Action: ActionRead},
				{Function: FunctionWebshop, Action: ActionWrite},
				{Function: FunctionWebshop, Action: ActionExport},
				{Function: FunctionOrders, Action: ActionRead, Tags: []FieldTag{TagFinancial}},
				{Function: FunctionOrders, Action: ActionWrite},
				{Function: FunctionEvents, Action: ActionRead},
				{Function: FunctionEvents, Action: ActionWrite},
				{Function: FunctionEvents, Action: ActionExport},
				{Function: FunctionRoles, Action: ActionRead},
				{Function: FunctionRoles, Action: ActionWrite},
			},
		},

		// Legacy generation. Same grants as their split counterparts, with
		// the all-regions scope baked into the name.
		RoleDefinition{
			Name:       "Members_Read_All",
			Precedence: 30,
			Legacy:     true,
			AllRegions: true,
			Grants: []Grant{
				{Function: FunctionMembers, Action: ActionRead},
			},
		},
		RoleDefinition{
			Name:       "Members_CRUD_All",
			Precedence: 40,
			Legacy:     true,
			AllRegions: true,
			Grants: []Grant{
				{Function: FunctionMembers, Action: ActionRead},
				{Function: FunctionMembers, Action: ActionWrite},
				{Function: FunctionMembers, Action: ActionExport},
			},
		},
		RoleDefinition{
			Name:       "Webshop_CRUD_All",
			Precedence: 40,
			Legacy:     true,
			AllRegions: true,
			Grants: []Grant{
				{Function: FunctionWebshop, Action: ActionRead},
				{Function: FunctionWebshop, Action: ActionWrite},
				{Function: FunctionWebshop, Action: ActionExport},
				{Function: FunctionOrders, Action: ActionRead, Tags: []FieldTag{TagFinancial}},
				{Function: FunctionOrders, Action: ActionWrite},
			},
		},
		RoleDefinition{
			Name:       "Events_CRUD_All",
			Precedence: 40,
			Legacy:     true,
			AllRegions: true,
			Grants: []Grant{
				{Function: FunctionEvents, Action: ActionRead},
				{Function: FunctionEvents, Action: ActionWrite},
				{Function: FunctionEvents, Action: ActionExport},
			},
		},
	)
}
