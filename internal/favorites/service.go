package favorites

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quadra-imoveis/quadra/internal/listings"
	"github.com/quadra-imoveis/quadra/internal/shared"
)

// Service carries favoriting rules.
type Service struct {
	repo        Repository
	listingRepo listings.Repository
	logger      *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, listingRepo listings.Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, listingRepo: listingRepo, logger: logger}
}

// Add favorites a listing for the acting user. Each listing may appear on a
// user's list once.
func (s *Service) Add(ctx context.Context, userID, listingID uuid.UUID) (*Favorite, error) {
	if _, err := s.listingRepo.FindByID(ctx, listingID); err != nil {
		return nil, err
	}

	taken, err := s.repo.Exists(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.ErrAlreadyFavorited
	}

	favorite := &Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		ListingID: listingID,
	}
	if err := s.repo.Create(ctx, favorite); err != nil {
		return nil, err
	}
	return favorite, nil
}

// Remove deletes a favorite. A favorite owned by someone else reads as absent,
// the same as an unknown id.
func (s *Service) Remove(ctx context.Context, userID, id uuid.UUID) error {
	favorite, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if favorite.UserID != userID {
		return shared.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// ListMine returns the acting user's favorites, newest first.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]Favorite, error) {
	return s.repo.ListByUser(ctx, userID)
}
