package authz

import (
	"context"

	"github.com/google/uuid"

	"github.com/quadra-imoveis/quadra/internal/shared"
)

// ResourceSpec describes how to load a resource kind and who may act on it
// besides its owner.
type ResourceSpec struct {
	// Load fetches the resource by its route identifier. It must return
	// shared.ErrNotFound when the resource does not exist.
	Load func(ctx context.Context, id string) (any, error)
	// Owner extracts the owning user from a loaded resource.
	Owner func(resource any) uuid.UUID
	// Elevated lists roles allowed to act regardless of ownership.
	Elevated []shared.Role
}

// Registry maps resource tags to their ownership specs.
type Registry struct {
	specs map[string]ResourceSpec
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]ResourceSpec)}
}

// Register binds a spec to a resource tag. Later registrations replace
// earlier ones.
func (r *Registry) Register(tag string, spec ResourceSpec) {
	r.specs[tag] = spec
}

func (r *Registry) spec(tag string) (ResourceSpec, bool) {
	spec, ok := r.specs[tag]
	return spec, ok
}

type resourceContextKey struct{}

// ContextWithResource attaches a loaded resource for downstream handlers.
func ContextWithResource(ctx context.Context, resource any) context.Context {
	return context.WithValue(ctx, resourceContextKey{}, resource)
}

// ResourceFromContext retrieves the resource loaded by RequireOwnership.
func ResourceFromContext(ctx context.Context) (any, bool) {
	resource := ctx.Value(resourceContextKey{})
	return resource, resource != nil
}
