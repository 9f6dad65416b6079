package visits

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quadra-imoveis/quadra/internal/listings"
	"github.com/quadra-imoveis/quadra/internal/shared"
)

// Service carries visit scheduling rules.
type Service struct {
	repo        Repository
	listingRepo listings.Repository
	logger      *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, listingRepo listings.Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, listingRepo: listingRepo, logger: logger}
}

// Schedule books a tour for the acting visitor. The listing must be available
// and the slot free.
func (s *Service) Schedule(ctx context.Context, visitor *shared.Identity, listingID uuid.UUID, at time.Time, notes string) (*Visit, error) {
	if at.Before(time.Now()) {
		return nil, shared.ErrValidation
	}

	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != listings.StatusAvailable {
		return nil, shared.ErrValidation
	}

	taken, err := s.repo.HasConflict(ctx, listingID, at)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.ErrValidation
	}

	visit := &Visit{
		ID:          uuid.New(),
		ListingID:   listingID,
		VisitorID:   visitor.ID,
		ScheduledAt: at,
		Status:      StatusScheduled,
		Notes:       notes,
	}
	if err := s.repo.Create(ctx, visit); err != nil {
		return nil, err
	}

	s.logger.Info("visit scheduled",
		slog.String("visit", visit.ID.String()),
		slog.String("listing", listingID.String()),
		slog.String("visitor", visitor.ID.String()))
	return visit, nil
}

// Confirm moves a scheduled visit to confirmed.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetStatus(ctx, id, []string{StatusScheduled}, StatusConfirmed)
}

// Cancel aborts a visit that has not happened yet.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetStatus(ctx, id, []string{StatusScheduled, StatusConfirmed}, StatusCancelled)
}

// Complete marks a confirmed visit as done.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetStatus(ctx, id, []string{StatusConfirmed}, StatusDone)
}

func (s *Service) ListMine(ctx context.Context, visitorID uuid.UUID) ([]Visit, error) {
	return s.repo.ListByVisitor(ctx, visitorID)
}

// ListForListing returns the agenda of one listing for its corretor.
func (s *Service) ListForListing(ctx context.Context, listingID uuid.UUID) ([]Visit, error) {
	if _, err := s.listingRepo.FindByID(ctx, listingID); err != nil {
		return nil, err
	}
	return s.repo.ListByListing(ctx, listingID)
}
