package permissions

import (
	"encoding/json"
	"testing"
)

func TestEmptyPermissionSetDeniesEverything(t *testing.T) {
	ps := EmptyPermissionSet()

	if !ps.Empty() {
		t.Fatal("empty set should report Empty")
	}
	if ps.Allows(FunctionMembers, ActionRead) {
		t.Error("empty set must deny")
	}
	if ps.AllowsRecord(FunctionMembers, ActionRead, "Utrecht") {
		t.Error("empty set must deny record access")
	}
	if ps.HasTag(FunctionMembers, ActionRead, TagFinancial) {
		t.Error("empty set has no tags")
	}
	if ps.PrimaryRole() != "" {
		t.Error("empty set has no primary role")
	}
}

func TestPermissionSetFunctions(t *testing.T) {
	r := newTestResolver()
	ps := r.Resolve([]string{"hdcnLeden", "Members_Read"})

	got := ps.Functions()
	want := []string{FunctionEvents, FunctionMembers, FunctionWebshop}
	if len(got) != len(want) {
		t.Fatalf("Functions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Functions() = %v, want %v", got, want)
		}
	}
}

func TestPermissionSetMarshalJSON(t *testing.T) {
	r := newTestResolver()
	ps := r.Resolve([]string{"Members_CRUD", "Regio_Utrecht"})

	data, err := json.Marshal(ps)
	if err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		PrimaryRole string `json:"primary_role"`
		RegionScope *struct {
			All     bool     `json:"all"`
			Regions []string `json:"regions"`
		} `json:"region_scope"`
		Grants map[string]map[string]bool `json:"grants"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	if decoded.PrimaryRole != "Members_CRUD" {
		t.Errorf("primary_role = %q", decoded.PrimaryRole)
	}
	if decoded.RegionScope == nil || decoded.RegionScope.All {
		t.Fatalf("region_scope = %+v", decoded.RegionScope)
	}
	if len(decoded.RegionScope.Regions) != 1 || decoded.RegionScope.Regions[0] != "Utrecht" {
		t.Errorf("regions = %v", decoded.RegionScope.Regions)
	}
	if !decoded.Grants[FunctionMembers]["write"] {
		t.Error("grants should include members write")
	}
	if decoded.Grants[FunctionWebshop] != nil {
		t.Error("grants must not include ungranted functions")
	}
}
