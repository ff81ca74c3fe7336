package permissions

import (
	"github.com/hdcn/portal/pkg/observability"
)

// Resolver computes the effective PermissionSet for a role token list. It
// holds no mutable state; resolution is a pure function of the token list and
// the catalog, so concurrent callers may resolve the same list redundantly
// without coordination.
type Resolver struct {
	catalog *Catalog
	logger  *observability.Logger
	metrics *observability.Metrics
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMetrics wires resolution counters (unknown tokens, legacy usage).
func WithMetrics(m *observability.Metrics) ResolverOption {
	return func(r *Resolver) { r.metrics = m }
}

// NewResolver creates a resolver over the given catalog.
func NewResolver(catalog *Catalog, logger *observability.Logger, opts ...ResolverOption) *Resolver {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	r := &Resolver{catalog: catalog, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve computes the PermissionSet for a token list.
//
// Unknown tokens are skipped with a warning: the identity provider and the
// catalog migrate independently, so a stale group name must never break a
// session. A nil or empty list resolves to the deny-all set. Resolve never
// panics into the caller's request path.
func (r *Resolver) Resolve(tokens []string) *PermissionSet {
	ps := newPermissionSet()
	if len(tokens) == 0 {
		return ps
	}

	var scope RegionScope
	primaryPrecedence := -1

	for _, token := range tokens {
		if regional, ok := ParseRegionToken(token); ok {
			scope = scope.Widen(regional)
			continue
		}

		def, ok := r.catalog.Definition(token)
		if !ok {
			if r.logger != nil {
				r.logger.WithField("role", token).Warn("Skipping unknown role token")
			}
			if r.metrics != nil {
				r.metrics.UnknownRoleTokensTotal.WithLabelValues(token).Inc()
			}
			continue
		}

		if def.Legacy {
			ps.legacy = append(ps.legacy, def.Name)
			if r.logger != nil {
				r.logger.WithField("role", def.Name).Warn("Legacy role name in use")
			}
			if r.metrics != nil {
				r.metrics.LegacyRoleUsageTotal.WithLabelValues(def.Name).Inc()
			}
		}
		if def.AllRegions {
			scope = scope.Widen(RegionScopeAll())
		}

		for _, grant := range def.Grants {
			ps.addGrant(grant)
		}

		if def.Precedence > primaryPrecedence {
			primaryPrecedence = def.Precedence
			ps.primary = def.Name
		}
	}

	ps.scope = scope
	return ps
}

// Catalog returns the catalog the resolver was built with.
func (r *Resolver) Catalog() *Catalog { return r.catalog }
