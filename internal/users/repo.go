package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quadra-imoveis/quadra/internal/shared"
)

// Repository exposes administrative user queries.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]shared.Identity, int, error)
	Get(ctx context.Context, id uuid.UUID) (*shared.Identity, error)
	SetRole(ctx context.Context, id uuid.UUID, role shared.Role) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	GrantPermission(ctx context.Context, userID uuid.UUID, name string) error
	RevokePermission(ctx context.Context, userID uuid.UUID, name string) error
}

// ListFilter narrows and pages the user listing.
type ListFilter struct {
	Role   string
	Search string
	Page   int
	Limit  int
}

// PGRepository is the pgx-backed Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const identityColumns = `id, email, name, COALESCE(phone, ''), role, verified,
	COALESCE(avatar_url, ''), is_active, created_at, updated_at`

func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]shared.Identity, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.Role != "" {
		args = append(args, filter.Role)
		where += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("users: count: %w", err)
	}

	pagination := shared.NewPagination(filter.Page, filter.Limit, total)
	args = append(args, pagination.PerPage, pagination.Offset())
	query := `SELECT ` + identityColumns + ` FROM users` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	var identities []shared.Identity
	for rows.Next() {
		var identity shared.Identity
		if err := rows.Scan(
			&identity.ID, &identity.Email, &identity.Name, &identity.Phone,
			&identity.Role, &identity.Verified, &identity.AvatarURL,
			&identity.IsActive, &identity.CreatedAt, &identity.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("users: scan: %w", err)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("users: iterate: %w", err)
	}
	return identities, total, nil
}

func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*shared.Identity, error) {
	var identity shared.Identity
	err := r.pool.QueryRow(ctx,
		`SELECT `+identityColumns+` FROM users WHERE id = $1`, id,
	).Scan(
		&identity.ID, &identity.Email, &identity.Name, &identity.Phone,
		&identity.Role, &identity.Verified, &identity.AvatarURL,
		&identity.IsActive, &identity.CreatedAt, &identity.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: get: %w", err)
	}
	return &identity, nil
}

func (r *PGRepository) SetRole(ctx context.Context, id uuid.UUID, role shared.Role) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("users: set role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("users: set active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) GrantPermission(ctx context.Context, userID uuid.UUID, name string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO permissions (id, user_id, name, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, name) DO NOTHING`,
		uuid.New(), userID, name)
	if err != nil {
		return fmt.Errorf("users: grant permission: %w", err)
	}
	return nil
}

func (r *PGRepository) RevokePermission(ctx context.Context, userID uuid.UUID, name string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM permissions WHERE user_id = $1 AND name = $2`, userID, name)
	if err != nil {
		return fmt.Errorf("users: revoke permission: %w", err)
	}
	return nil
}
