package authz

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quadra-imoveis/quadra/internal/platform/httpx"
	"github.com/quadra-imoveis/quadra/internal/shared"
)

// Policy wires authorization helpers for HTTP handlers. Every check assumes an
// upstream gate already resolved the identity.
type Policy struct {
	store    Store
	registry *Registry
	logger   *slog.Logger
	now      func() time.Time
}

// NewPolicy builds a Policy.
func NewPolicy(store Store, registry *Registry, logger *slog.Logger) *Policy {
	return &Policy{store: store, registry: registry, logger: logger, now: time.Now}
}

func identityOrReject(w http.ResponseWriter, r *http.Request) (*shared.Identity, bool) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return nil, false
	}
	return identity, true
}

// RequireRole allows only identities whose role is in the given set.
func (p *Policy) RequireRole(roles ...shared.Role) func(http.Handler) http.Handler {
	allowed := make(map[shared.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := identityOrReject(w, r)
			if !ok {
				return
			}
			if _, ok := allowed[identity.Role]; !ok {
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAccessLevel allows identities whose role maps to at least min.
func (p *Policy) RequireAccessLevel(min int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := identityOrReject(w, r)
			if !ok {
				return
			}
			if identity.Role.AccessLevel() < min {
				httpx.RespondError(w, shared.ErrInsufficientLevel)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwnership loads the routed resource and allows its owner or any role
// the resource tag elevates. A missing resource is a 404 before any
// authorization outcome, so probing cannot distinguish absent from forbidden.
// The loaded resource is attached to the context for the handler.
func (p *Policy) RequireOwnership(tag string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := identityOrReject(w, r)
			if !ok {
				return
			}
			spec, ok := p.registry.spec(tag)
			if !ok {
				p.logError("ownership spec missing", slog.String("tag", tag))
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}

			resource, err := spec.Load(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					httpx.RespondError(w, shared.ErrNotFound)
					return
				}
				p.logError("ownership load", slog.Any("error", err))
				httpx.RespondError(w, err)
				return
			}

			if spec.Owner(resource) != identity.ID && !roleIn(identity.Role, spec.Elevated) {
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			ctx := ContextWithResource(r.Context(), resource)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAllPermissions allows identities holding every named permission.
func (p *Policy) RequireAllPermissions(names ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := identityOrReject(w, r)
			if !ok {
				return
			}
			granted, err := p.store.PermissionsFor(r.Context(), identity.ID)
			if err != nil {
				p.logError("load permissions", slog.Any("error", err))
				httpx.RespondError(w, err)
				return
			}
			set := make(map[string]struct{}, len(granted))
			for _, name := range granted {
				set[name] = struct{}{}
			}
			for _, name := range names {
				if _, ok := set[name]; !ok {
					httpx.RespondError(w, shared.ErrInsufficientPermissions)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUsageUnderLimit caps how many times an identity may hit the route per
// local day. The window resets at local midnight.
func (p *Policy) RequireUsageUnderLimit(limit int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := identityOrReject(w, r)
			if !ok {
				return
			}
			now := p.now()
			midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			action := r.Method + " " + r.URL.Path

			allowed, err := p.store.RecordUsage(r.Context(), identity.ID, action, midnight, limit)
			if err != nil {
				p.logError("record usage", slog.Any("error", err))
				httpx.RespondError(w, err)
				return
			}
			if !allowed {
				httpx.RespondError(w, shared.ErrUsageLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireTimeWindow allows requests only when the local hour is within
// [start, end).
func (p *Policy) RequireTimeWindow(start, end int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hour := p.now().Hour()
			if hour < start || hour >= end {
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func roleIn(role shared.Role, roles []shared.Role) bool {
	for _, candidate := range roles {
		if role == candidate {
			return true
		}
	}
	return false
}

func (p *Policy) logError(msg string, attrs ...any) {
	if p.logger != nil {
		p.logger.Error(msg, attrs...)
	}
}
