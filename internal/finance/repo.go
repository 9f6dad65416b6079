package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists financial records.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	List(ctx context.Context, from, to time.Time) ([]Record, error)
	SummaryByKind(ctx context.Context, from, to time.Time) (map[string]int64, error)
}

// PGRepository is the pgx-backed Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, record *Record) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO financial_records (id, listing_id, broker_id, kind, description, amount, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
		record.ID, record.ListingID, record.BrokerID, record.Kind,
		record.Description, record.Amount, record.OccurredAt)
	if err != nil {
		return fmt.Errorf("finance: insert: %w", err)
	}
	return nil
}

func (r *PGRepository) List(ctx context.Context, from, to time.Time) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, listing_id, broker_id, kind, description, amount, occurred_at, created_at
		FROM financial_records
		WHERE occurred_at >= $1 AND occurred_at < $2
		ORDER BY occurred_at DESC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("finance: list: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		if err := rows.Scan(&record.ID, &record.ListingID, &record.BrokerID,
			&record.Kind, &record.Description, &record.Amount,
			&record.OccurredAt, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("finance: scan: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *PGRepository) SummaryByKind(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT kind, COALESCE(SUM(amount), 0)
		FROM financial_records
		WHERE occurred_at >= $1 AND occurred_at < $2
		GROUP BY kind`, from, to)
	if err != nil {
		return nil, fmt.Errorf("finance: summary: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var kind string
		var total int64
		if err := rows.Scan(&kind, &total); err != nil {
			return nil, fmt.Errorf("finance: scan summary: %w", err)
		}
		totals[kind] = total
	}
	return totals, rows.Err()
}
