package permissions

import (
	"errors"
	"sort"
	"testing"
)

func memberRecord() map[string]interface{} {
	return map[string]interface{}{
		"id":             "m-1",
		"name":           "J. de Vries",
		"region":         "Utrecht",
		"contribution":   52.50,
		"iban":           "NL00BANK0123456789",
		"payment_status": "paid",
	}
}

func TestFilterForReadStripsFinancialFields(t *testing.T) {
	r := newTestResolver()
	ps := r.Resolve([]string{"Members_Read", "Regio_All"})

	got := FilterForRead(ps, FunctionMembers, memberRecord())

	for _, field := range []string{"contribution", "iban", "payment_status"} {
		if _, ok := got[field]; ok {
			t.Errorf("field %s should have been removed", field)
		}
	}
	if got["name"] != "J. de Vries" {
		t.Error("plain fields must survive filtering")
	}
}

func TestFilterForReadKeepsTaggedFields(t *testing.T) {
	r := newTestResolver()
	ps := r.Resolve([]string{"Members_Financial", "Regio_All"})

	got := FilterForRead(ps, FunctionMembers, memberRecord())

	if _, ok := got["iban"]; !ok {
		t.Error("financial grant should expose the iban")
	}
	if len(got) != len(memberRecord()) {
		t.Errorf("expected the full record, got %d of %d fields", len(got), len(memberRecord()))
	}
}

func TestFilterForReadDoesNotMutateInput(t *testing.T) {
	r := newTestResolver()
	ps := r.Resolve([]string{"Members_Read", "Regio_All"})
	rec := memberRecord()

	FilterForRead(ps, FunctionMembers, rec)

	if _, ok := rec["iban"]; !ok {
		t.Error("input record was mutated")
	}
}

func TestFilterForWritePartialRejection(t *testing.T) {
	r := newTestResolver()
	ps := r.Resolve([]string{"Members_CRUD", "Regio_All"})

	patch := map[string]interface{}{
		"name":         "Nieuwe Naam",
		"contribution": 60.00,
		"iban":         "NL11BANK9876543210",
	}
	filtered, rejected, err := FilterForWrite(ps, FunctionMembers, patch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := filtered["name"]; !ok {
		t.Error("allowed field was stripped")
	}
	if _, ok := filtered["contribution"]; ok {
		t.Error("financial field should have been stripped")
	}
	sort.Strings(rejected)
	if len(rejected) != 2 || rejected[0] != "contribution" || rejected[1] != "iban" {
		t.Errorf("rejected = %v, want [contribution iban]", rejected)
	}
}

func TestFilterForWriteNothingLeft(t *testing.T) {
	r := newTestResolver()
	ps := r.Resolve([]string{"Members_CRUD", "Regio_All"})

	patch := map[string]interface{}{"iban": "NL11BANK9876543210"}
	_, rejected, err := FilterForWrite(ps, FunctionMembers, patch)
	if !errors.Is(err, ErrNothingToUpdate) {
		t.Fatalf("err = %v, want ErrNothingToUpdate", err)
	}
	if len(rejected) != 1 {
		t.Errorf("rejected = %v", rejected)
	}
}

func TestFilterForWriteUntaggedFunctionPassesThrough(t *testing.T) {
	r := newTestResolver()
	ps := r.Resolve([]string{"Events_CRUD"})

	patch := map[string]interface{}{"title": "Voorjaarsrit", "location": "Arnhem"}
	filtered, rejected, err := FilterForWrite(ps, FunctionEvents, patch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rejected) != 0 || len(filtered) != 2 {
		t.Errorf("events have no sensitive fields, got filtered=%v rejected=%v", filtered, rejected)
	}
}
