package permissions

import (
	"encoding/json"
	"sort"
)

// PermissionSet is the effective permission mapping resolved from a role
// token list. It is immutable after resolution and safe for concurrent
// readers. The zero-grant set denies everything.
type PermissionSet struct {
	grants  map[string]map[Action]map[FieldTag]struct{}
	scope   RegionScope
	primary string
	legacy  []string
}

func newPermissionSet() *PermissionSet {
	return &PermissionSet{grants: make(map[string]map[Action]map[FieldTag]struct{})}
}

// EmptyPermissionSet returns a deny-all PermissionSet. It is what callers get
// for unauthenticated or malformed sessions.
func EmptyPermissionSet() *PermissionSet {
	return newPermissionSet()
}

func (ps *PermissionSet) addGrant(g Grant) {
	actions, ok := ps.grants[g.Function]
	if !ok {
		actions = make(map[Action]map[FieldTag]struct{})
		ps.grants[g.Function] = actions
	}
	tags, ok := actions[g.Action]
	if !ok {
		tags = make(map[FieldTag]struct{})
		actions[g.Action] = tags
	}
	for _, t := range g.Tags {
		tags[t] = struct{}{}
	}
}

// Allows reports whether the set grants an action on a function. Absence is
// denial.
func (ps *PermissionSet) Allows(function string, action Action) bool {
	actions, ok := ps.grants[function]
	if !ok {
		return false
	}
	_, ok = actions[action]
	return ok
}

// AllowsRecord composes Allows with the region scope for a concrete record.
// A set without a region scope is not regionally restricted; a scoped set
// must cover the record's region, and a record without a region is covered
// only by an all-regions scope.
func (ps *PermissionSet) AllowsRecord(function string, action Action, recordRegion string) bool {
	if !ps.Allows(function, action) {
		return false
	}
	if ps.scope.IsZero() {
		return true
	}
	return ps.scope.Matches(recordRegion)
}

// HasTag reports whether the grant for (function, action) carries a field
// tag. Used by the field-level filter.
func (ps *PermissionSet) HasTag(function string, action Action, tag FieldTag) bool {
	actions, ok := ps.grants[function]
	if !ok {
		return false
	}
	tags, ok := actions[action]
	if !ok {
		return false
	}
	_, ok = tags[tag]
	return ok
}

// Scope returns the region scope attached to the set.
func (ps *PermissionSet) Scope() RegionScope { return ps.scope }

// PrimaryRole returns the display label for the session: the name of the
// highest-precedence recognized role, or "" when none matched.
func (ps *PermissionSet) PrimaryRole() string { return ps.primary }

// LegacyRoles returns the legacy-generation role names that contributed to
// the set, so their use can be audited.
func (ps *PermissionSet) LegacyRoles() []string { return ps.legacy }

// Empty reports whether the set denies everything.
func (ps *PermissionSet) Empty() bool { return len(ps.grants) == 0 }

// Functions returns the granted function names, sorted.
func (ps *PermissionSet) Functions() []string {
	out := make([]string, 0, len(ps.grants))
	for fn := range ps.grants {
		out = append(out, fn)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON renders the set for the session endpoint. The front end treats
// this as a rendering hint only; the server re-checks every request.
func (ps *PermissionSet) MarshalJSON() ([]byte, error) {
	type scopeJSON struct {
		All     bool     `json:"all"`
		Regions []string `json:"regions,omitempty"`
	}
	grants := make(map[string]map[string]bool, len(ps.grants))
	for fn, actions := range ps.grants {
		m := make(map[string]bool, len(actions))
		for action := range actions {
			m[string(action)] = true
		}
		grants[fn] = m
	}
	var scope *scopeJSON
	if !ps.scope.IsZero() {
		scope = &scopeJSON{All: ps.scope.IsAll(), Regions: ps.scope.Regions()}
	}
	return json.Marshal(struct {
		PrimaryRole string                     `json:"primary_role,omitempty"`
		RegionScope *scopeJSON                 `json:"region_scope,omitempty"`
		Grants      map[string]map[string]bool `json:"grants"`
	}{
		PrimaryRole: ps.primary,
		RegionScope: scope,
		Grants:      grants,
	})
}
