package shared

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SecurityLogEntry is an immutable record of request metadata kept for audit.
type SecurityLogEntry struct {
	At         time.Time
	IP         string
	Method     string
	Path       string
	UserAgent  string
	IdentityID uuid.NullUUID
}

// SecurityLogger appends records into security_logs.
type SecurityLogger struct {
	pool *pgxpool.Pool
}

// NewSecurityLogger returns a new SecurityLogger.
func NewSecurityLogger(pool *pgxpool.Pool) *SecurityLogger {
	return &SecurityLogger{pool: pool}
}

// Record persists the log entry. Entries are write-only from the application's
// perspective; nothing in the request path reads them back.
func (l *SecurityLogger) Record(ctx context.Context, entry SecurityLogEntry) error {
	if l == nil || l.pool == nil {
		return errors.New("security logger not initialised")
	}
	at := entry.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := l.pool.Exec(ctx,
		`INSERT INTO security_logs (occurred_at, ip, method, path, user_agent, user_id) VALUES ($1, $2, $3, $4, $5, $6)`,
		at, entry.IP, entry.Method, entry.Path, entry.UserAgent, entry.IdentityID)
	return err
}

// Trim removes entries older than the retention window.
func (l *SecurityLogger) Trim(ctx context.Context, retention time.Duration) (int64, error) {
	if l == nil || l.pool == nil {
		return 0, nil
	}
	cutoff := time.Now().Add(-retention)
	tag, err := l.pool.Exec(ctx, `DELETE FROM security_logs WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
