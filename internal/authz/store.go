package authz

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store answers permission and usage questions from Postgres.
type Store interface {
	PermissionsFor(ctx context.Context, userID uuid.UUID) ([]string, error)
	// RecordUsage records one action for the user on the given day window and
	// reports whether the record fit under the limit. The check and the insert
	// are a single statement so concurrent requests cannot both slip under.
	RecordUsage(ctx context.Context, userID uuid.UUID, action string, since time.Time, limit int) (bool, error)
}

// PGStore is the pgx-backed Store.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore builds a PGStore.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) PermissionsFor(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name FROM permissions WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("authz: query permissions: %w", err)
	}
	defer rows.Close()

	var perms []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("authz: scan permission: %w", err)
		}
		perms = append(perms, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("authz: iterate permissions: %w", err)
	}
	return perms, nil
}

func (s *PGStore) RecordUsage(ctx context.Context, userID uuid.UUID, action string, since time.Time, limit int) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO user_actions (id, user_id, action, occurred_at)
		SELECT $1, $2, $3, NOW()
		WHERE (
			SELECT COUNT(*) FROM user_actions
			WHERE user_id = $2 AND action = $3 AND occurred_at >= $4
		) < $5`,
		uuid.New(), userID, action, since, limit)
	if err != nil {
		return false, fmt.Errorf("authz: record usage: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
