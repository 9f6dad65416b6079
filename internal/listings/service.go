package listings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quadra-imoveis/quadra/internal/shared"
)

// Service carries listing business rules.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateInput is the data needed to publish a listing.
type CreateInput struct {
	Title       string
	Description string
	Type        string
	Price       int64
	Bedrooms    int
	Bathrooms   int
	Area        float64
	Featured    bool
	Address     Address
	Features    []string
}

// Create publishes a listing owned by the acting corretor. The slug derives
// from the title; collisions get a short random suffix.
func (s *Service) Create(ctx context.Context, owner *shared.Identity, input CreateInput) (*Listing, error) {
	if !validType(input.Type) || input.Price <= 0 {
		return nil, shared.ErrValidation
	}

	slug, err := s.uniqueSlug(ctx, input.Title)
	if err != nil {
		return nil, err
	}

	listing := &Listing{
		ID:          uuid.New(),
		OwnerID:     owner.ID,
		Title:       input.Title,
		Slug:        slug,
		Description: input.Description,
		Type:        input.Type,
		Status:      StatusAvailable,
		Price:       input.Price,
		Bedrooms:    input.Bedrooms,
		Bathrooms:   input.Bathrooms,
		Area:        input.Area,
		Featured:    input.Featured,
		Address:     input.Address,
		Features:    input.Features,
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, err
	}

	s.logger.Info("listing created",
		slog.String("listing", listing.ID.String()),
		slog.String("owner", owner.ID.String()),
		slog.String("slug", slug))
	return listing, nil
}

// UpdateInput is the mutable subset of a listing.
type UpdateInput struct {
	Title       string
	Description string
	Type        string
	Status      string
	Price       int64
	Bedrooms    int
	Bathrooms   int
	Area        float64
	Featured    bool
	Address     Address
	Features    []string
}

// Update rewrites a listing. Price changes append to the price history. The
// slug is stable across updates so published links keep working.
func (s *Service) Update(ctx context.Context, current *Listing, input UpdateInput) (*Listing, error) {
	if !validType(input.Type) || !validStatus(input.Status) || input.Price <= 0 {
		return nil, shared.ErrValidation
	}

	updated := *current
	updated.Title = input.Title
	updated.Description = input.Description
	updated.Type = input.Type
	updated.Status = input.Status
	updated.Price = input.Price
	updated.Bedrooms = input.Bedrooms
	updated.Bathrooms = input.Bathrooms
	updated.Area = input.Area
	updated.Featured = input.Featured
	updated.Address = input.Address
	updated.Features = input.Features

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Remove soft-deletes by flipping the listing to inactive.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetStatus(ctx, id, StatusInactive)
}

// SetFeatured toggles the homepage highlight flag.
func (s *Service) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	return s.repo.SetFeatured(ctx, id, featured)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	return s.repo.FindByID(ctx, id)
}

// GetBySlug resolves a public listing and counts the view.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Listing, error) {
	return s.repo.FindBySlug(ctx, slug)
}

// ListResult pairs a page of listings with its pagination metadata.
type ListResult struct {
	Listings   []Listing         `json:"listings"`
	Pagination shared.Pagination `json:"pagination"`
}

func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Listings:   items,
		Pagination: shared.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

func (s *Service) Featured(ctx context.Context, limit int) ([]Listing, error) {
	return s.repo.Featured(ctx, limit)
}

func (s *Service) PriceHistory(ctx context.Context, listingID uuid.UUID) ([]PriceChange, error) {
	if _, err := s.repo.FindByID(ctx, listingID); err != nil {
		return nil, err
	}
	return s.repo.PriceHistory(ctx, listingID)
}

func (s *Service) uniqueSlug(ctx context.Context, title string) (string, error) {
	slug := Slugify(title)
	if slug == "" {
		return "", shared.ErrValidation
	}
	exists, err := s.repo.SlugExists(ctx, slug)
	if err != nil {
		return "", err
	}
	if !exists {
		return slug, nil
	}
	return fmt.Sprintf("%s-%s", slug, uuid.NewString()[:8]), nil
}
