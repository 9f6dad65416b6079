package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quadra-imoveis/quadra/internal/finance"
	"github.com/quadra-imoveis/quadra/internal/listings"
)

// Repository aggregates counters across the schema for the dashboard.
type Repository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountListings(ctx context.Context) (int64, error)
	CountVisits(ctx context.Context) (int64, error)
	CountSalesSince(ctx context.Context, since time.Time) (int64, error)
	Totals(ctx context.Context) (revenue, expenses int64, err error)
}

// PGRepository is the pgx-backed Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("admin: count: %w", err)
	}
	return n, nil
}

func (r *PGRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE is_active`)
}

func (r *PGRepository) CountListings(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM listings WHERE status <> $1`, listings.StatusInactive)
}

func (r *PGRepository) CountVisits(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM visits`)
}

func (r *PGRepository) CountSalesSince(ctx context.Context, since time.Time) (int64, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM financial_records WHERE kind = $1 AND occurred_at >= $2`,
		finance.KindSale, since)
}

func (r *PGRepository) Totals(ctx context.Context) (int64, int64, error) {
	var revenue, expenses int64
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE kind <> $1), 0),
			COALESCE(SUM(amount) FILTER (WHERE kind = $1), 0)
		FROM financial_records`, finance.KindExpense).Scan(&revenue, &expenses)
	if err != nil {
		return 0, 0, fmt.Errorf("admin: totals: %w", err)
	}
	return revenue, expenses, nil
}
