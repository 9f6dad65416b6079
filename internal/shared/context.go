package shared

import (
	"context"
	"sync"
)

type identityContextKey struct{}

type refreshTokenContextKey struct{}

type identityRecorderContextKey struct{}

// IdentityRecorder lets middleware installed above the auth gate observe the
// identity the gate resolves further down the chain. Context values only flow
// downstream, so outer middleware needs a mutable cell the gate writes into.
type IdentityRecorder struct {
	mu sync.Mutex
	id *Identity
}

func (r *IdentityRecorder) record(id *Identity) {
	r.mu.Lock()
	r.id = id
	r.mu.Unlock()
}

// Identity returns the recorded identity, if the gate resolved one.
func (r *IdentityRecorder) Identity() (*Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id, r.id != nil
}

// ContextWithIdentityRecorder installs a recorder that ContextWithIdentity
// fills when called on any context derived from the returned one.
func ContextWithIdentityRecorder(ctx context.Context) (context.Context, *IdentityRecorder) {
	recorder := &IdentityRecorder{}
	return context.WithValue(ctx, identityRecorderContextKey{}, recorder), recorder
}

// ContextWithIdentity stores the resolved identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	if recorder, ok := ctx.Value(identityRecorderContextKey{}).(*IdentityRecorder); ok && recorder != nil {
		recorder.record(id)
	}
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*Identity)
	return id, ok && id != nil
}

// ContextWithRefreshToken stores the raw refresh token for rotation by the caller.
func ContextWithRefreshToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, refreshTokenContextKey{}, token)
}

// RefreshTokenFromContext extracts the raw refresh token placed by the refresh gate.
func RefreshTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(refreshTokenContextKey{}).(string)
	return token, ok && token != ""
}
