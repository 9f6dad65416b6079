package favorites

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quadra-imoveis/quadra/internal/shared"
)

// Repository persists favorites.
type Repository interface {
	Create(ctx context.Context, favorite *Favorite) error
	FindByID(ctx context.Context, id uuid.UUID) (*Favorite, error)
	Exists(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Favorite, error)
}

// PGRepository is the pgx-backed Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, favorite *Favorite) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO favorites (id, user_id, listing_id, created_at)
		VALUES ($1, $2, $3, NOW())`,
		favorite.ID, favorite.UserID, favorite.ListingID)
	if err != nil {
		return fmt.Errorf("favorites: insert: %w", err)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*Favorite, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, listing_id, created_at FROM favorites WHERE id = $1`, id)
	var f Favorite
	err := row.Scan(&f.ID, &f.UserID, &f.ListingID, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("favorites: scan: %w", err)
	}
	return &f, nil
}

func (r *PGRepository) Exists(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND listing_id = $2)`,
		userID, listingID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("favorites: exists: %w", err)
	}
	return exists, nil
}

func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM favorites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("favorites: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Favorite, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, listing_id, created_at FROM favorites WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("favorites: list: %w", err)
	}
	defer rows.Close()

	var out []Favorite
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.ListingID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("favorites: scan: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
