package users

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quadra-imoveis/quadra/internal/shared"
)

// Service applies administrative rules over the user repository.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListResult pairs a page of users with its pagination metadata.
type ListResult struct {
	Users      []shared.Identity `json:"users"`
	Pagination shared.Pagination `json:"pagination"`
}

func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	identities, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Users:      identities,
		Pagination: shared.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*shared.Identity, error) {
	return s.repo.Get(ctx, id)
}

// ChangeRole assigns a new role. Admins cannot change their own role, which
// keeps the last admin from locking itself out.
func (s *Service) ChangeRole(ctx context.Context, actor *shared.Identity, id uuid.UUID, role shared.Role) error {
	if !role.Valid() {
		return shared.ErrValidation
	}
	if actor.ID == id {
		return shared.ErrForbidden
	}
	if err := s.repo.SetRole(ctx, id, role); err != nil {
		return err
	}
	s.logger.Info("role changed",
		slog.String("actor", actor.ID.String()),
		slog.String("user", id.String()),
		slog.String("role", string(role)))
	return nil
}

// SetActive disables or re-enables an account. Accounts are never hard
// deleted. Admins cannot disable themselves.
func (s *Service) SetActive(ctx context.Context, actor *shared.Identity, id uuid.UUID, active bool) error {
	if actor.ID == id {
		return shared.ErrForbidden
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.logger.Info("account status changed",
		slog.String("actor", actor.ID.String()),
		slog.String("user", id.String()),
		slog.Bool("active", active))
	return nil
}

func (s *Service) GrantPermission(ctx context.Context, userID uuid.UUID, name string) error {
	if _, err := s.repo.Get(ctx, userID); err != nil {
		return err
	}
	return s.repo.GrantPermission(ctx, userID, name)
}

func (s *Service) RevokePermission(ctx context.Context, userID uuid.UUID, name string) error {
	return s.repo.RevokePermission(ctx, userID, name)
}
