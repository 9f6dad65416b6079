package favorites

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadra-imoveis/quadra/internal/listings"
	"github.com/quadra-imoveis/quadra/internal/shared"
)

type fakeFavoriteRepo struct {
	byID map[uuid.UUID]*Favorite
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{byID: make(map[uuid.UUID]*Favorite)}
}

func (f *fakeFavoriteRepo) Create(_ context.Context, favorite *Favorite) error {
	clone := *favorite
	f.byID[favorite.ID] = &clone
	return nil
}

func (f *fakeFavoriteRepo) FindByID(_ context.Context, id uuid.UUID) (*Favorite, error) {
	fav, ok := f.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *fav
	return &clone, nil
}

func (f *fakeFavoriteRepo) Exists(_ context.Context, userID, listingID uuid.UUID) (bool, error) {
	for _, fav := range f.byID {
		if fav.UserID == userID && fav.ListingID == listingID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFavoriteRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeFavoriteRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]Favorite, error) {
	var out []Favorite
	for _, fav := range f.byID {
		if fav.UserID == userID {
			out = append(out, *fav)
		}
	}
	return out, nil
}

var _ Repository = (*fakeFavoriteRepo)(nil)

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

type favoriteFixture struct {
	service *Service
	repo    *fakeFavoriteRepo
	listing *listings.Listing
	user    uuid.UUID
}

func newFavoriteFixture(t *testing.T) *favoriteFixture {
	t.Helper()
	listing := &listings.Listing{ID: uuid.New(), OwnerID: uuid.New(), Slug: "casa-agua-verde", Status: listings.StatusAvailable}
	listingRepo := &fakeListingRepo{listings: map[uuid.UUID]*listings.Listing{listing.ID: listing}}
	repo := newFakeFavoriteRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &favoriteFixture{
		service: NewService(repo, listingRepo, logger),
		repo:    repo,
		listing: listing,
		user:    uuid.New(),
	}
}

func TestAddFavorite(t *testing.T) {
	f := newFavoriteFixture(t)

	favorite, err := f.service.Add(context.Background(), f.user, f.listing.ID)
	require.NoError(t, err)
	assert.Equal(t, f.user, favorite.UserID)
	assert.Equal(t, f.listing.ID, favorite.ListingID)
}

func TestAddFavoriteTwiceFails(t *testing.T) {
	f := newFavoriteFixture(t)

	_, err := f.service.Add(context.Background(), f.user, f.listing.ID)
	require.NoError(t, err)

	_, err = f.service.Add(context.Background(), f.user, f.listing.ID)
	assert.ErrorIs(t, err, shared.ErrAlreadyFavorited)
}

func TestAddFavoriteUnknownListing(t *testing.T) {
	f := newFavoriteFixture(t)

	_, err := f.service.Add(context.Background(), f.user, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRemoveFavorite(t *testing.T) {
	f := newFavoriteFixture(t)

	favorite, err := f.service.Add(context.Background(), f.user, f.listing.ID)
	require.NoError(t, err)

	require.NoError(t, f.service.Remove(context.Background(), f.user, favorite.ID))

	mine, err := f.service.ListMine(context.Background(), f.user)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestRemoveFavoriteOfAnotherUserReadsAsAbsent(t *testing.T) {
	f := newFavoriteFixture(t)

	favorite, err := f.service.Add(context.Background(), f.user, f.listing.ID)
	require.NoError(t, err)

	err = f.service.Remove(context.Background(), uuid.New(), favorite.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	mine, err := f.service.ListMine(context.Background(), f.user)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
