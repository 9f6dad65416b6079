package authz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadra-imoveis/quadra/internal/shared"
)

type fakeStore struct {
	permissions map[uuid.UUID][]string
	usage       map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		permissions: make(map[uuid.UUID][]string),
		usage:       make(map[string]int),
	}
}

func (s *fakeStore) PermissionsFor(_ context.Context, userID uuid.UUID) ([]string, error) {
	return s.permissions[userID], nil
}

func (s *fakeStore) RecordUsage(_ context.Context, userID uuid.UUID, action string, _ time.Time, limit int) (bool, error) {
	key := userID.String() + "|" + action
	if s.usage[key] >= limit {
		return false, nil
	}
	s.usage[key]++
	return true, nil
}

var _ Store = (*fakeStore)(nil)

type ownedThing struct {
	owner uuid.UUID
}

func testPolicy(store Store, registry *Registry) *Policy {
	return NewPolicy(store, registry, nil)
}

func identityRequest(method, target string, identity *shared.Identity) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if identity != nil {
		req = req.WithContext(shared.ContextWithIdentity(req.Context(), identity))
	}
	return req
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAccessLevel(t *testing.T) {
	policy := testPolicy(newFakeStore(), NewRegistry())
	mw := policy.RequireAccessLevel(2)

	cases := []struct {
		role shared.Role
		code int
	}{
		{shared.RoleAdmin, http.StatusOK},
		{shared.RoleCorretor, http.StatusOK},
		{shared.RoleAssistente, http.StatusForbidden},
		{shared.RoleCliente, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			var called bool
			rec := httptest.NewRecorder()
			req := identityRequest(http.MethodPost, "/listings", &shared.Identity{ID: uuid.New(), Role: tc.role})
			mw(okHandler(&called)).ServeHTTP(rec, req)

			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.code == http.StatusOK, called)
		})
	}
}

func TestRequireAccessLevelWithoutIdentity(t *testing.T) {
	policy := testPolicy(newFakeStore(), NewRegistry())

	var called bool
	rec := httptest.NewRecorder()
	req := identityRequest(http.MethodPost, "/listings", nil)
	policy.RequireAccessLevel(1)(okHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestRequireRole(t *testing.T) {
	policy := testPolicy(newFakeStore(), NewRegistry())
	mw := policy.RequireRole(shared.RoleAdmin, shared.RoleCorretor)

	var called bool
	rec := httptest.NewRecorder()
	req := identityRequest(http.MethodGet, "/finance", &shared.Identity{ID: uuid.New(), Role: shared.RoleCliente})
	mw(okHandler(&called)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	req = identityRequest(http.MethodGet, "/finance", &shared.Identity{ID: uuid.New(), Role: shared.RoleCorretor})
	mw(okHandler(&called)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func ownershipFixture(owner uuid.UUID, elevated ...shared.Role) (*Policy, string) {
	registry := NewRegistry()
	resource := &ownedThing{owner: owner}
	registry.Register("thing", ResourceSpec{
		Load: func(_ context.Context, id string) (any, error) {
			if id != "known" {
				return nil, shared.ErrNotFound
			}
			return resource, nil
		},
		Owner:    func(r any) uuid.UUID { return r.(*ownedThing).owner },
		Elevated: elevated,
	})
	return testPolicy(newFakeStore(), registry), "thing"
}

func TestRequireOwnershipAllowsOwner(t *testing.T) {
	owner := uuid.New()
	policy, tag := ownershipFixture(owner)

	var loaded any
	rec := httptest.NewRecorder()
	req := identityRequest(http.MethodPut, "/things/known", &shared.Identity{ID: owner, Role: shared.RoleCliente})
	req = withURLParam(req, "id", "known")
	policy.RequireOwnership(tag)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loaded, _ = ResourceFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, loaded)
	assert.Equal(t, owner, loaded.(*ownedThing).owner)
}

func TestRequireOwnershipRejectsStranger(t *testing.T) {
	policy, tag := ownershipFixture(uuid.New())

	var called bool
	rec := httptest.NewRecorder()
	req := identityRequest(http.MethodPut, "/things/known", &shared.Identity{ID: uuid.New(), Role: shared.RoleCliente})
	req = withURLParam(req, "id", "known")
	policy.RequireOwnership(tag)(okHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
}

func TestRequireOwnershipAllowsElevatedRole(t *testing.T) {
	policy, tag := ownershipFixture(uuid.New(), shared.RoleAdmin)

	var called bool
	rec := httptest.NewRecorder()
	req := identityRequest(http.MethodDelete, "/things/known", &shared.Identity{ID: uuid.New(), Role: shared.RoleAdmin})
	req = withURLParam(req, "id", "known")
	policy.RequireOwnership(tag)(okHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestRequireOwnershipMissingResourceIs404(t *testing.T) {
	policy, tag := ownershipFixture(uuid.New())

	var called bool
	rec := httptest.NewRecorder()
	req := identityRequest(http.MethodPut, "/things/absent", &shared.Identity{ID: uuid.New(), Role: shared.RoleCliente})
	req = withURLParam(req, "id", "absent")
	policy.RequireOwnership(tag)(okHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code, "absence is reported before authorization")
	assert.False(t, called)
}

func TestRequireOwnershipUnknownTag(t *testing.T) {
	policy := testPolicy(newFakeStore(), NewRegistry())

	var called bool
	rec := httptest.NewRecorder()
	req := identityRequest(http.MethodPut, "/things/known", &shared.Identity{ID: uuid.New(), Role: shared.RoleAdmin})
	req = withURLParam(req, "id", "known")
	policy.RequireOwnership("missing")(okHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
}

func TestRequireAllPermissions(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	store.permissions[userID] = []string{"listings.feature", "finance.export"}
	policy := testPolicy(store, NewRegistry())

	var called bool
	rec := httptest.NewRecorder()
	req := identityRequest(http.MethodPost, "/x", &shared.Identity{ID: userID, Role: shared.RoleCorretor})
	policy.RequireAllPermissions("listings.feature", "finance.export")(okHandler(&called)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = identityRequest(http.MethodPost, "/x", &shared.Identity{ID: userID, Role: shared.RoleCorretor})
	policy.RequireAllPermissions("listings.feature", "users.manage")(okHandler(&called)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code, "one missing permission denies the whole set")
}

func TestRequireUsageUnderLimit(t *testing.T) {
	store := newFakeStore()
	policy := testPolicy(store, NewRegistry())
	identity := &shared.Identity{ID: uuid.New(), Role: shared.RoleCliente}
	mw := policy.RequireUsageUnderLimit(2)

	for i := 0; i < 2; i++ {
		var called bool
		rec := httptest.NewRecorder()
		mw(okHandler(&called)).ServeHTTP(rec, identityRequest(http.MethodPost, "/visits", identity))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	var called bool
	rec := httptest.NewRecorder()
	mw(okHandler(&called)).ServeHTTP(rec, identityRequest(http.MethodPost, "/visits", identity))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, called)
}

func TestRequireTimeWindow(t *testing.T) {
	policy := testPolicy(newFakeStore(), NewRegistry())
	identity := &shared.Identity{ID: uuid.New(), Role: shared.RoleCliente}

	cases := []struct {
		hour int
		code int
	}{
		{7, http.StatusForbidden},
		{8, http.StatusOK},
		{19, http.StatusOK},
		{20, http.StatusForbidden},
	}
	for _, tc := range cases {
		policy.now = func() time.Time {
			return time.Date(2026, time.March, 10, tc.hour, 30, 0, 0, time.Local)
		}
		var called bool
		rec := httptest.NewRecorder()
		policy.RequireTimeWindow(8, 20)(okHandler(&called)).ServeHTTP(rec, identityRequest(http.MethodPut, "/visits/x/confirm", identity))
		assert.Equal(t, tc.code, rec.Code, "hour %d", tc.hour)
	}
}
