// Package middleware provides the HTTP request pipeline: bearer-token
// authentication, server-side permission resolution, permission gates, and
// rate limiting.
//
// The Authenticator verifies the bearer token, resolves the caller's
// PermissionSet from the token's group claims, and stores both in the request
// context. RequirePermission then gates routes on a (function, action) pair:
//
//	r.Handle("/v1/members",
//	    middleware.RequirePermission(permissions.FunctionMembers, permissions.ActionRead, metrics)(
//	        http.HandlerFunc(listMembers))).Methods("GET")
//
// Authorization is resolved on the server for every request; nothing the
// client sends besides the signed token influences the decision.
package middleware
