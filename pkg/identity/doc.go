// Package identity verifies identity-provider tokens and extracts the role
// token list used for authorization.
//
// The portal trusts only the signed ID token: the groups claim inside a
// verified token is the sole source of role tokens. Role lists supplied by
// the client (headers, body fields, cached UI state) are never consulted for
// authorization.
//
// A malformed groups claim does not fail the session; it yields an empty role
// list, which resolves to the deny-all PermissionSet downstream.
package identity
