package permissions

import "errors"

// ErrNothingToUpdate is returned by FilterForWrite when every field of a
// patch was stripped. An empty patch is reported explicitly rather than
// silently succeeding as a no-op.
var ErrNothingToUpdate = errors.New("nothing to update: all fields rejected")

// sensitiveFields maps, per function, record field names to the tag a grant
// must carry for the field to be visible or writable. Field names follow the
// document attribute names used in storage.
var sensitiveFields = map[string]map[string]FieldTag{
	FunctionMembers: {
		"contribution":   TagFinancial,
		"iban":           TagFinancial,
		"payment_status": TagFinancial,
	},
	FunctionOrders: {
		"total_amount":      TagFinancial,
		"payment_reference": TagFinancial,
	},
}

// FilterForRead returns a copy of the record with sensitive fields removed
// unless the caller's read grant for the function carries the matching tag.
// The input record is never modified.
func FilterForRead(ps *PermissionSet, function string, record map[string]interface{}) map[string]interface{} {
	tags := sensitiveFields[function]
	out := make(map[string]interface{}, len(record))
	for field, value := range record {
		if tag, sensitive := tags[field]; sensitive && !ps.HasTag(function, ActionRead, tag) {
			continue
		}
		out[field] = value
	}
	return out
}

// FilterForWrite returns a copy of the patch with disallowed fields stripped,
// together with the names of the rejected fields. Rejection of individual
// fields is a partial result, not a hard failure; only a patch stripped to
// nothing yields ErrNothingToUpdate.
func FilterForWrite(ps *PermissionSet, function string, patch map[string]interface{}) (map[string]interface{}, []string, error) {
	tags := sensitiveFields[function]
	out := make(map[string]interface{}, len(patch))
	var rejected []string
	for field, value := range patch {
		if tag, sensitive := tags[field]; sensitive && !ps.HasTag(function, ActionWrite, tag) {
			rejected = append(rejected, field)
			continue
		}
		out[field] = value
	}
	if len(patch) > 0 && len(out) == 0 {
		return nil, rejected, ErrNothingToUpdate
	}
	return out, rejected, nil
}
