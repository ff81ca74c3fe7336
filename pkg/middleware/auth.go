package middleware

import (
	"net/http"
	"strings"

	"github.com/hdcn/portal/pkg/audit"
	"github.com/hdcn/portal/pkg/contextkeys"
	"github.com/hdcn/portal/pkg/httputil"
	"github.com/hdcn/portal/pkg/identity"
	"github.com/hdcn/portal/pkg/observability"
	"github.com/hdcn/portal/pkg/permissions"
)

// PermissionSource resolves a role token list into a PermissionSet. Both
// *permissions.Resolver and *permissions.Cache satisfy it.
type PermissionSource interface {
	Resolve(tokens []string) *permissions.PermissionSet
}

// Authenticator verifies bearer tokens and resolves permissions server-side.
type Authenticator struct {
	verifier    identity.TokenVerifier
	permissions PermissionSource
	logger      *observability.Logger
	audit       audit.Logger
	optional    bool
}

// AuthOption configures an Authenticator.
type AuthOption func(*Authenticator)

// WithAuditLogger records legacy-role usage in the audit trail.
func WithAuditLogger(sink audit.Logger) AuthOption {
	return func(a *Authenticator) { a.audit = sink }
}

// NewAuthenticator creates the authentication middleware. When optional is
// true, unauthenticated requests pass through with the deny-all permission
// set instead of a 401 (used for public read-only routes).
func NewAuthenticator(verifier identity.TokenVerifier, source PermissionSource, logger *observability.Logger, optional bool, opts ...AuthOption) *Authenticator {
	a := &Authenticator{
		verifier:    verifier,
		permissions: source,
		logger:      logger,
		optional:    optional,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handler wraps an HTTP handler with authentication and permission
// resolution.
func (m *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			if m.optional {
				next.ServeHTTP(w, r)
				return
			}
			httputil.WriteUnauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.WriteUnauthorized(w, "invalid authorization header format")
			return
		}

		id, err := m.verifier.Verify(r.Context(), parts[1])
		if err != nil {
			m.logger.WithError(err).Debug("Token verification failed")
			httputil.WriteUnauthorized(w, "invalid or expired token")
			return
		}

		ps := m.permissions.Resolve(id.RoleTokens)

		if m.audit != nil {
			for _, name := range ps.LegacyRoles() {
				event := audit.NewEvent(audit.EventTypeLegacyRoleUsage, audit.EventStatusSuccess)
				event.Subject = id.Subject
				event.Email = id.Email
				event.Message = "legacy role name " + name
				event.RequestID = contextkeys.RequestIDFrom(r.Context())
				if err := m.audit.Log(r.Context(), event); err != nil {
					m.logger.WithError(err).Warn("Audit log write failed")
				}
			}
		}

		ctx := contextkeys.WithIdentity(r.Context(), id)
		ctx = contextkeys.WithPermissions(ctx, ps)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetIdentity extracts the authenticated identity from a request, or nil.
func GetIdentity(r *http.Request) *identity.Identity {
	return contextkeys.IdentityFrom(r.Context())
}

// GetPermissions extracts the resolved PermissionSet from a request. It
// returns the deny-all set when the request was never authenticated, so
// handlers fail closed.
func GetPermissions(r *http.Request) *permissions.PermissionSet {
	return contextkeys.PermissionsFrom(r.Context())
}

// RequirePermission gates a route on a (function, action) grant. Denials are
// normal results: the response is a 403 with a role-requirement hint.
func RequirePermission(function string, action permissions.Action, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ps := GetPermissions(r)
			allowed := ps.Allows(function, action)
			if metrics != nil {
				metrics.ObservePermissionCheck(function, string(action), allowed)
			}
			if !allowed {
				httputil.WriteForbidden(w, "requires a role granting "+function+":"+string(action))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
