package users

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadra-imoveis/quadra/internal/shared"
)

type fakeAdminRepo struct {
	identities map[uuid.UUID]*shared.Identity
	granted    map[uuid.UUID][]string
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{
		identities: make(map[uuid.UUID]*shared.Identity),
		granted:    make(map[uuid.UUID][]string),
	}
}

func (f *fakeAdminRepo) List(_ context.Context, _ ListFilter) ([]shared.Identity, int, error) {
	var out []shared.Identity
	for _, id := range f.identities {
		out = append(out, *id)
	}
	return out, len(out), nil
}

func (f *fakeAdminRepo) Get(_ context.Context, id uuid.UUID) (*shared.Identity, error) {
	identity, ok := f.identities[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *identity
	return &clone, nil
}

func (f *fakeAdminRepo) SetRole(_ context.Context, id uuid.UUID, role shared.Role) error {
	identity, ok := f.identities[id]
	if !ok {
		return shared.ErrNotFound
	}
	identity.Role = role
	return nil
}

func (f *fakeAdminRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	identity, ok := f.identities[id]
	if !ok {
		return shared.ErrNotFound
	}
	identity.IsActive = active
	return nil
}

func (f *fakeAdminRepo) GrantPermission(_ context.Context, userID uuid.UUID, name string) error {
	f.granted[userID] = append(f.granted[userID], name)
	return nil
}

func (f *fakeAdminRepo) RevokePermission(_ context.Context, userID uuid.UUID, name string) error {
	kept := f.granted[userID][:0]
	for _, granted := range f.granted[userID] {
		if granted != name {
			kept = append(kept, granted)
		}
	}
	f.granted[userID] = kept
	return nil
}

var _ Repository = (*fakeAdminRepo)(nil)

func newAdminFixture() (*Service, *fakeAdminRepo, *shared.Identity, *shared.Identity) {
	repo := newFakeAdminRepo()
	admin := &shared.Identity{ID: uuid.New(), Role: shared.RoleAdmin, IsActive: true}
	target := &shared.Identity{ID: uuid.New(), Role: shared.RoleCliente, IsActive: true}
	repo.identities[admin.ID] = admin
	repo.identities[target.ID] = target
	service := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return service, repo, admin, target
}

func TestChangeRole(t *testing.T) {
	service, repo, admin, target := newAdminFixture()

	require.NoError(t, service.ChangeRole(context.Background(), admin, target.ID, shared.RoleCorretor))
	assert.Equal(t, shared.RoleCorretor, repo.identities[target.ID].Role)
}

func TestChangeRoleRejectsSelf(t *testing.T) {
	service, repo, admin, _ := newAdminFixture()

	err := service.ChangeRole(context.Background(), admin, admin.ID, shared.RoleCliente)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Equal(t, shared.RoleAdmin, repo.identities[admin.ID].Role)
}

func TestChangeRoleRejectsUnknownRole(t *testing.T) {
	service, _, admin, target := newAdminFixture()

	err := service.ChangeRole(context.Background(), admin, target.ID, shared.Role("imperador"))
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestSetActiveRejectsSelf(t *testing.T) {
	service, repo, admin, target := newAdminFixture()

	err := service.SetActive(context.Background(), admin, admin.ID, false)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	require.NoError(t, service.SetActive(context.Background(), admin, target.ID, false))
	assert.False(t, repo.identities[target.ID].IsActive)
}

func TestGrantPermissionRequiresExistingUser(t *testing.T) {
	service, repo, _, target := newAdminFixture()

	err := service.GrantPermission(context.Background(), uuid.New(), "listings.feature")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, service.GrantPermission(context.Background(), target.ID, "listings.feature"))
	assert.Equal(t, []string{"listings.feature"}, repo.granted[target.ID])
}
