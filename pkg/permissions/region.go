package permissions

import (
	"sort"
	"strings"
)

const (
	// RegionTokenPrefix identifies regional role tokens ("Regio_Utrecht").
	RegionTokenPrefix = "Regio_"

	// RegionAllSuffix is the token suffix granting access to every region.
	RegionAllSuffix = "All"
)

// RegionScope is the geographic breadth attached to a PermissionSet: all
// regions, a set of named regions, or the zero value (no regional tokens
// held, so no region restriction is carried).
type RegionScope struct {
	all     bool
	regions map[string]struct{}
}

// RegionScopeAll returns a scope covering every region.
func RegionScopeAll() RegionScope {
	return RegionScope{all: true}
}

// RegionScopeFor returns a scope covering exactly the named regions.
func RegionScopeFor(regions ...string) RegionScope {
	s := RegionScope{regions: make(map[string]struct{}, len(regions))}
	for _, r := range regions {
		s.regions[r] = struct{}{}
	}
	return s
}

// IsAll reports whether the scope covers every region.
func (s RegionScope) IsAll() bool { return s.all }

// IsZero reports whether no regional token contributed to the scope.
func (s RegionScope) IsZero() bool { return !s.all && len(s.regions) == 0 }

// Regions returns the named regions in the scope, sorted. Nil for All or
// zero scopes.
func (s RegionScope) Regions() []string {
	if s.all || len(s.regions) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.regions))
	for r := range s.regions {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Matches reports whether the scope covers a record's region field. The
// comparison is a case-sensitive exact match on the canonical region name.
// A record without a region is covered only by an All scope: a
// specific-region scope fails closed.
func (s RegionScope) Matches(recordRegion string) bool {
	if s.all {
		return true
	}
	if recordRegion == "" {
		return false
	}
	_, ok := s.regions[recordRegion]
	return ok
}

// Widen returns the union of two scopes. Any All side wins.
func (s RegionScope) Widen(other RegionScope) RegionScope {
	if s.all || other.all {
		return RegionScopeAll()
	}
	if other.IsZero() {
		return s
	}
	if s.IsZero() {
		return other
	}
	merged := make(map[string]struct{}, len(s.regions)+len(other.regions))
	for r := range s.regions {
		merged[r] = struct{}{}
	}
	for r := range other.regions {
		merged[r] = struct{}{}
	}
	return RegionScope{regions: merged}
}

// String renders the scope for logs and the session endpoint.
func (s RegionScope) String() string {
	if s.all {
		return RegionAllSuffix
	}
	if s.IsZero() {
		return ""
	}
	return strings.Join(s.Regions(), ",")
}

// ParseRegionToken interprets a role token as a regional token. It returns
// the derived scope and true when the token carries the "Regio_" prefix.
func ParseRegionToken(token string) (RegionScope, bool) {
	if !strings.HasPrefix(token, RegionTokenPrefix) {
		return RegionScope{}, false
	}
	suffix := strings.TrimPrefix(token, RegionTokenPrefix)
	if suffix == "" {
		return RegionScope{}, false
	}
	if suffix == RegionAllSuffix {
		return RegionScopeAll(), true
	}
	return RegionScopeFor(suffix), true
}
