package visits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quadra-imoveis/quadra/internal/shared"
)

// Repository persists visits.
type Repository interface {
	Create(ctx context.Context, visit *Visit) error
	FindByID(ctx context.Context, id uuid.UUID) (*Visit, error)
	SetStatus(ctx context.Context, id uuid.UUID, from []string, to string) error
	ListByVisitor(ctx context.Context, visitorID uuid.UUID) ([]Visit, error)
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]Visit, error)
	HasConflict(ctx context.Context, listingID uuid.UUID, at time.Time) (bool, error)
}

// PGRepository is the pgx-backed Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const visitColumns = `id, listing_id, visitor_id, scheduled_at, status,
	COALESCE(notes, ''), created_at, updated_at`

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	err := row.Scan(&v.ID, &v.ListingID, &v.VisitorID, &v.ScheduledAt,
		&v.Status, &v.Notes, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("visits: scan: %w", err)
	}
	return &v, nil
}

func (r *PGRepository) Create(ctx context.Context, visit *Visit) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO visits (id, listing_id, visitor_id, scheduled_at, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NOW(), NOW())`,
		visit.ID, visit.ListingID, visit.VisitorID, visit.ScheduledAt,
		visit.Status, visit.Notes)
	if err != nil {
		return fmt.Errorf("visits: insert: %w", err)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return scanVisit(r.pool.QueryRow(ctx,
		`SELECT `+visitColumns+` FROM visits WHERE id = $1`, id))
}

// SetStatus moves a visit between states. The update only lands when the
// current status is in the allowed set, so stale transitions fail cleanly.
func (r *PGRepository) SetStatus(ctx context.Context, id uuid.UUID, from []string, to string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE visits SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = ANY($2)`,
		id, from, to)
	if err != nil {
		return fmt.Errorf("visits: set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrValidation
	}
	return nil
}

func (r *PGRepository) ListByVisitor(ctx context.Context, visitorID uuid.UUID) ([]Visit, error) {
	return r.queryMany(ctx, `
		SELECT `+visitColumns+` FROM visits
		WHERE visitor_id = $1 ORDER BY scheduled_at DESC`, visitorID)
}

func (r *PGRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]Visit, error) {
	return r.queryMany(ctx, `
		SELECT `+visitColumns+` FROM visits
		WHERE listing_id = $1 ORDER BY scheduled_at DESC`, listingID)
}

// HasConflict reports whether an active visit already occupies the slot.
func (r *PGRepository) HasConflict(ctx context.Context, listingID uuid.UUID, at time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM visits
			WHERE listing_id = $1 AND scheduled_at = $2 AND status IN ($3, $4)
		)`, listingID, at, StatusScheduled, StatusConfirmed).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("visits: conflict check: %w", err)
	}
	return exists, nil
}

func (r *PGRepository) queryMany(ctx context.Context, query string, args ...any) ([]Visit, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("visits: query: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		visit, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		visits = append(visits, *visit)
	}
	return visits, rows.Err()
}
