package visits

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadra-imoveis/quadra/internal/listings"
	"github.com/quadra-imoveis/quadra/internal/shared"
)

type fakeVisitRepo struct {
	visits map[uuid.UUID]*Visit
}

func newFakeVisitRepo() *fakeVisitRepo {
	return &fakeVisitRepo{visits: make(map[uuid.UUID]*Visit)}
}

func (f *fakeVisitRepo) Create(_ context.Context, visit *Visit) error {
	clone := *visit
	f.visits[visit.ID] = &clone
	return nil
}

func (f *fakeVisitRepo) FindByID(_ context.Context, id uuid.UUID) (*Visit, error) {
	v, ok := f.visits[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *v
	return &clone, nil
}

func (f *fakeVisitRepo) SetStatus(_ context.Context, id uuid.UUID, from []string, to string) error {
	v, ok := f.visits[id]
	if !ok {
		return shared.ErrValidation
	}
	for _, status := range from {
		if v.Status == status {
			v.Status = to
			return nil
		}
	}
	return shared.ErrValidation
}

func (f *fakeVisitRepo) ListByVisitor(_ context.Context, visitorID uuid.UUID) ([]Visit, error) {
	var out []Visit
	for _, v := range f.visits {
		if v.VisitorID == visitorID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeVisitRepo) ListByListing(_ context.Context, listingID uuid.UUID) ([]Visit, error) {
	var out []Visit
	for _, v := range f.visits {
		if v.ListingID == listingID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeVisitRepo) HasConflict(_ context.Context, listingID uuid.UUID, at time.Time) (bool, error) {
	for _, v := range f.visits {
		if v.ListingID == listingID && v.ScheduledAt.Equal(at) &&
			(v.Status == StatusScheduled || v.Status == StatusConfirmed) {
			return true, nil
		}
	}
	return false, nil
}

var _ Repository = (*fakeVisitRepo)(nil)

type fakeListingRepo struct {
	listings map[uuid.UUID]*listings.Listing
}

func (f *fakeListingRepo) FindByID(_ context.Context, id uuid.UUID) (*listings.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return l, nil
}

func (f *fakeListingRepo) Create(context.Context, *listings.Listing) error    { return nil }
func (f *fakeListingRepo) Update(context.Context, *listings.Listing) error    { return nil }
func (f *fakeListingRepo) SetStatus(context.Context, uuid.UUID, string) error { return nil }
func (f *fakeListingRepo) SetFeatured(context.Context, uuid.UUID, bool) error { return nil }
func (f *fakeListingRepo) FindBySlug(context.Context, string) (*listings.Listing, error) {
	return nil, shared.ErrNotFound
}
func (f *fakeListingRepo) SlugExists(context.Context, string) (bool, error) { return false, nil }
func (f *fakeListingRepo) List(context.Context, listings.ListFilter) ([]listings.Listing, int, error) {
	return nil, 0, nil
}
func (f *fakeListingRepo) Featured(context.Context, int) ([]listings.Listing, error) {
	return nil, nil
}
func (f *fakeListingRepo) PriceHistory(context.Context, uuid.UUID) ([]listings.PriceChange, error) {
	return nil, nil
}

var _ listings.Repository = (*fakeListingRepo)(nil)

type visitFixture struct {
	service *Service
	repo    *fakeVisitRepo
	listing *listings.Listing
	visitor *shared.Identity
}

func newVisitFixture(t *testing.T) *visitFixture {
	t.Helper()
	listing := &listings.Listing{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Status:  listings.StatusAvailable,
	}
	repo := newFakeVisitRepo()
	listingRepo := &fakeListingRepo{listings: map[uuid.UUID]*listings.Listing{listing.ID: listing}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &visitFixture{
		service: NewService(repo, listingRepo, logger),
		repo:    repo,
		listing: listing,
		visitor: &shared.Identity{ID: uuid.New(), Role: shared.RoleCliente},
	}
}

func TestScheduleVisit(t *testing.T) {
	f := newVisitFixture(t)
	at := time.Now().Add(48 * time.Hour)

	visit, err := f.service.Schedule(context.Background(), f.visitor, f.listing.ID, at, "prefiro manhã")
	require.NoError(t, err)

	assert.Equal(t, StatusScheduled, visit.Status)
	assert.Equal(t, f.visitor.ID, visit.VisitorID)
	assert.Equal(t, f.listing.ID, visit.ListingID)
}

func TestScheduleRejectsPastSlot(t *testing.T) {
	f := newVisitFixture(t)

	_, err := f.service.Schedule(context.Background(), f.visitor, f.listing.ID, time.Now().Add(-time.Hour), "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestScheduleRejectsUnavailableListing(t *testing.T) {
	f := newVisitFixture(t)
	f.listing.Status = listings.StatusSold

	_, err := f.service.Schedule(context.Background(), f.visitor, f.listing.ID, time.Now().Add(48*time.Hour), "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestScheduleRejectsUnknownListing(t *testing.T) {
	f := newVisitFixture(t)

	_, err := f.service.Schedule(context.Background(), f.visitor, uuid.New(), time.Now().Add(48*time.Hour), "")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestScheduleRejectsTakenSlot(t *testing.T) {
	f := newVisitFixture(t)
	at := time.Now().Add(48 * time.Hour)

	_, err := f.service.Schedule(context.Background(), f.visitor, f.listing.ID, at, "")
	require.NoError(t, err)

	other := &shared.Identity{ID: uuid.New(), Role: shared.RoleCliente}
	_, err = f.service.Schedule(context.Background(), other, f.listing.ID, at, "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestVisitStatusTransitions(t *testing.T) {
	f := newVisitFixture(t)
	visit, err := f.service.Schedule(context.Background(), f.visitor, f.listing.ID, time.Now().Add(48*time.Hour), "")
	require.NoError(t, err)

	// realizada requires confirmada first
	err = f.service.Complete(context.Background(), visit.ID)
	assert.ErrorIs(t, err, shared.ErrValidation)

	require.NoError(t, f.service.Confirm(context.Background(), visit.ID))
	require.NoError(t, f.service.Complete(context.Background(), visit.ID))

	err = f.service.Cancel(context.Background(), visit.ID)
	assert.ErrorIs(t, err, shared.ErrValidation, "a completed visit cannot be cancelled")
}

func TestCancelFromScheduledOrConfirmed(t *testing.T) {
	f := newVisitFixture(t)
	visit, err := f.service.Schedule(context.Background(), f.visitor, f.listing.ID, time.Now().Add(48*time.Hour), "")
	require.NoError(t, err)

	require.NoError(t, f.service.Cancel(context.Background(), visit.ID))

	stored, err := f.repo.FindByID(context.Background(), visit.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)
}
