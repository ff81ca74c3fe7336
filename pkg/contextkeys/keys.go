// Package contextkeys provides centralized context key definitions.
//
// All context keys used across the application are defined here. This
// prevents typos, documents dependencies, and makes key usage discoverable.
package contextkeys

import (
	"context"

	"github.com/hdcn/portal/pkg/identity"
	"github.com/hdcn/portal/pkg/permissions"
)

// Key is the type for context keys to prevent collisions
type Key string

const (
	// IdentityKey contains *identity.Identity
	// Set by: middleware.Authenticator (pkg/middleware/auth.go)
	// Type: *identity.Identity
	IdentityKey Key = "identity"

	// PermissionsKey contains *permissions.PermissionSet
	// Set by: middleware.Authenticator after server-side resolution
	// Required by: RequirePermission middleware, all gated handlers
	// Type: *permissions.PermissionSet
	PermissionsKey Key = "permission_set"

	// RequestIDKey contains the request ID string (UUID)
	// Set by: httputil.RequestIDMiddleware
	// Used by: logging, audit trail
	// Type: string
	RequestIDKey Key = "request_id"
)

// WithIdentity stores the authenticated identity in the context.
func WithIdentity(ctx context.Context, id *identity.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFrom retrieves the authenticated identity, or nil.
func IdentityFrom(ctx context.Context) *identity.Identity {
	id, _ := ctx.Value(IdentityKey).(*identity.Identity)
	return id
}

// WithPermissions stores the resolved PermissionSet in the context.
func WithPermissions(ctx context.Context, ps *permissions.PermissionSet) context.Context {
	return context.WithValue(ctx, PermissionsKey, ps)
}

// PermissionsFrom retrieves the resolved PermissionSet. It returns the
// deny-all set when none was stored, so callers fail closed.
func PermissionsFrom(ctx context.Context) *permissions.PermissionSet {
	if ps, ok := ctx.Value(PermissionsKey).(*permissions.PermissionSet); ok && ps != nil {
		return ps
	}
	return permissions.EmptyPermissionSet()
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestIDFrom retrieves the request ID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
