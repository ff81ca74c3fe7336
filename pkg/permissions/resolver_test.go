package permissions

import (
	"io"
	"testing"

	"github.com/hdcn/portal/pkg/observability"
)

func newTestResolver() *Resolver {
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	return NewResolver(DefaultCatalog(), logger)
}

func TestResolveMemberBaseline(t *testing.T) {
	r := newTestResolver()
	ps := r.Resolve([]string{"hdcnLeden"})

	if !ps.Allows(FunctionWebshop, ActionRead) {
		t.Error("member should be able to browse the webshop")
	}
	if !ps.Allows(FunctionEvents, ActionRead) {
		t.Error("member should be able to view events")
	}
	if ps.Allows(FunctionMembers, ActionRead) {
		t.Error("member must not see the member administration")
	}
	if ps.Allows(FunctionWebshop, ActionWrite) {
		t.Error("member must not edit the webshop")
	}
	if ps.PrimaryRole() != "hdcnLeden" {
		t.Errorf("primary role = %q, want hdcnLeden", ps.PrimaryRole())
	}
}

func TestResolveRegionalAdmin(t *testing.T) {
	r := newTestResolver()
	ps := r.Resolve([]string{"Members_CRUD", "Regio_Utrecht"})

	if !ps.AllowsRecord(FunctionMembers, ActionWrite, "Utrecht") {
		t.Error("regional admin should edit members in their own region")
	}
	if ps.AllowsRecord(FunctionMembers, ActionWrite, "Groningen") {
		t.Error("regional admin must not edit members in another region")
	}
	if ps.AllowsRecord(FunctionMembers, ActionRead, "") {
		t.Error("records with no region must be invisible to regional scopes")
	}
}

func TestResolveLegacyEquivalence(t *testing.T) {
	r := newTestResolver()
	legacy := r.Resolve([]string{"Members_Read_All"})
	current := r.Resolve([]string{"Members_Read", "Regio_All"})

	for _, region := range []string{"Utrecht", "Groningen", ""} {
		if legacy.AllowsRecord(FunctionMembers, ActionRead, region) != current.AllowsRecord(FunctionMembers, ActionRead, region) {
			t.Errorf("legacy and current role generations disagree for region %q", region)
		}
	}
	if !legacy.AllowsRecord(FunctionMembers, ActionRead, "") {
		t.Error("all-regions scope should see records with no region")
	}
	if legacy.Allows(FunctionMembers, ActionWrite) {
		t.Error("read role must not grant write")
	}
	if got := legacy.LegacyRoles(); len(got) != 1 || got[0] != "Members_Read_All" {
		t.Errorf("LegacyRoles() = %v", got)
	}
	if got := current.LegacyRoles(); len(got) != 0 {
		t.Errorf("current naming should report no legacy roles, got %v", got)
	}
}

func TestResolveEmptyTokenList(t *testing.T) {
	r := newTestResolver()

	for _, tokens := range [][]string{nil, {}} {
		ps := r.Resolve(tokens)
		if !ps.Empty() {
			t.Errorf("Resolve(%v) should produce the deny-all set", tokens)
		}
		if ps.Allows(FunctionWebshop, ActionRead) {
			t.Error("deny-all set must not allow anything")
		}
	}
}

func TestResolveUnknownTokensSkipped(t *testing.T) {
	r := newTestResolver()
	ps := r.Resolve([]string{"NoSuchRole", "hdcnLeden", "AnotherStaleGroup"})

	if !ps.Allows(FunctionWebshop, ActionRead) {
		t.Error("known roles must survive unknown neighbors")
	}
	if ps.Allows(FunctionMembers, ActionRead) {
		t.Error("unknown tokens must grant nothing")
	}
}

func TestResolveGrantsAreAdditive(t *testing.T) {
	r := newTestResolver()
	ps := r.Resolve([]string{"hdcnLeden", "Members_Read", "Events_CRUD", "Regio_All"})

	checks := []struct {
		function string
		action   Action
		want     bool
	}{
		{FunctionWebshop, ActionRead, true},
		{FunctionMembers, ActionRead, true},
		{FunctionMembers, ActionWrite, false},
		{FunctionEvents, ActionRead, true},
		{FunctionEvents, ActionWrite, true},
		{FunctionOrders, ActionRead, false},
	}
	for _, c := range checks {
		if got := ps.Allows(c.function, c.action); got != c.want {
			t.Errorf("Allows(%s, %s) = %v, want %v", c.function, c.action, got, c.want)
		}
	}
}

func TestResolveMultipleRegionsUnion(t *testing.T) {
	r := newTestResolver()
	ps := r.Resolve([]string{"Members_CRUD", "Regio_Utrecht", "Regio_Drenthe"})

	for _, region := range []string{"Utrecht", "Drenthe"} {
		if !ps.AllowsRecord(FunctionMembers, ActionRead, region) {
			t.Errorf("region %s should be in scope", region)
		}
	}
	if ps.AllowsRecord(FunctionMembers, ActionRead, "Limburg") {
		t.Error("Limburg should be out of scope")
	}
}

func TestResolvePrimaryRolePrecedence(t *testing.T) {
	r := newTestResolver()

	tests := []struct {
		tokens []string
		want   string
	}{
		{[]string{"hdcnLeden", "Members_Read"}, "Members_Read"},
		{[]string{"Members_Read", "hdcnLeden"}, "Members_Read"},
		{[]string{"hdcnLeden", "Members_CRUD", "Portal_Admin"}, "Portal_Admin"},
		{[]string{"Members_CRUD", "Members_Financial"}, "Members_Financial"},
	}
	for _, tc := range tests {
		if got := r.Resolve(tc.tokens).PrimaryRole(); got != tc.want {
			t.Errorf("Resolve(%v).PrimaryRole() = %q, want %q", tc.tokens, got, tc.want)
		}
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	r := newTestResolver()
	tokens := []string{"Members_CRUD", "Regio_Utrecht", "hdcnLeden"}

	first := r.Resolve(tokens)
	second := r.Resolve(tokens)

	if first.PrimaryRole() != second.PrimaryRole() {
		t.Error("repeated resolution changed the primary role")
	}
	for _, fn := range []string{FunctionMembers, FunctionWebshop, FunctionEvents, FunctionOrders} {
		for _, action := range []Action{ActionRead, ActionWrite, ActionExport} {
			if first.Allows(fn, action) != second.Allows(fn, action) {
				t.Errorf("repeated resolution changed Allows(%s, %s)", fn, action)
			}
		}
	}
}

func TestResolveAdminScope(t *testing.T) {
	r := newTestResolver()
	ps := r.Resolve([]string{"Portal_Admin", "Regio_All"})

	if !ps.Allows(FunctionRoles, ActionWrite) {
		t.Error("admin should manage role assignments")
	}
	if !ps.AllowsRecord(FunctionMembers, ActionWrite, "Zeeland") {
		t.Error("admin with all-regions scope should reach every region")
	}
	if !ps.HasTag(FunctionMembers, ActionRead, TagFinancial) {
		t.Error("admin should read financial member fields")
	}
}
