package identity

import "fmt"

// DefaultGroupsClaim is the claim carrying group memberships in tokens issued
// by the club's identity pool.
const DefaultGroupsClaim = "cognito:groups"

// Identity is the authenticated caller as established from a verified token.
type Identity struct {
	// Subject is the stable identity-provider user id.
	Subject string

	// Email is the verified email address, when present in the token.
	Email string

	// RoleTokens are the group names from the groups claim, in token order.
	// Nil when the claim is absent or malformed.
	RoleTokens []string
}

// roleTokensFromClaims extracts the role token list from a claim set. The
// claim must be a list of strings; anything else is malformed and yields an
// error so the caller can log it and fall back to deny-all.
func roleTokensFromClaims(claims map[string]interface{}, claimName string) ([]string, error) {
	raw, ok := claims[claimName]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("groups claim %q is not a list (got %T)", claimName, raw)
	}
	tokens := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("groups claim %q contains a non-string entry (got %T)", claimName, item)
		}
		tokens = append(tokens, s)
	}
	return tokens, nil
}
