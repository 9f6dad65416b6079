package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quadra-imoveis/quadra/internal/platform/db"
	"github.com/quadra-imoveis/quadra/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*User, error)

	// ConsumeVerifyToken marks the owning user verified and clears the token in
	// a single statement, so a token can never be used twice.
	ConsumeVerifyToken(ctx context.Context, token string) (*User, error)
	SetVerifyToken(ctx context.Context, userID uuid.UUID, token string, expires time.Time) error
	SetResetToken(ctx context.Context, userID uuid.UUID, token string, expires time.Time) error
	// ConsumeResetToken swaps the password hash and clears the token atomically.
	ConsumeResetToken(ctx context.Context, token, newHash string) (*User, error)

	UpdateProfile(ctx context.Context, userID uuid.UUID, name, phone string) (*User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error
	LinkGoogle(ctx context.Context, userID uuid.UUID, googleID, avatarURL string) error

	CreateRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	FindValidRefreshToken(ctx context.Context, userID uuid.UUID, token string) (*RefreshToken, error)
	// RotateRefreshToken deletes the presented row and inserts the replacement
	// inside one transaction. A concurrent rotation of the same token loses and
	// reports shared.ErrRefreshInvalid.
	RotateRefreshToken(ctx context.Context, userID uuid.UUID, oldToken, newToken string, expiresAt time.Time) error
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteRefreshTokensForUser(ctx context.Context, userID uuid.UUID) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, email, name, COALESCE(phone, ''), password_hash, role, verified,
	COALESCE(google_id, ''), COALESCE(avatar_url, ''),
	COALESCE(verify_token, ''), COALESCE(verify_token_expires, 'epoch'::timestamptz),
	COALESCE(reset_token, ''), COALESCE(reset_token_expires, 'epoch'::timestamptz),
	is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var role string
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Phone, &u.PasswordHash, &role, &u.Verified,
		&u.GoogleID, &u.AvatarURL,
		&u.VerifyToken, &u.VerifyTokenExpires,
		&u.ResetToken, &u.ResetTokenExpires,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = shared.Role(role)
	return &u, nil
}

// CreateUser inserts a new account. A duplicate email surfaces as ErrEmailTaken.
func (r *PGRepository) CreateUser(ctx context.Context, user *User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, name, phone, password_hash, role, verified,
			google_id, avatar_url, verify_token, verify_token_expires, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7,
			NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, 'epoch'::timestamptz), $12, $13, $14)`,
		user.ID, user.Email, user.Name, user.Phone, user.PasswordHash, string(user.Role), user.Verified,
		user.GoogleID, user.AvatarURL, user.VerifyToken, user.VerifyTokenExpires.UTC(), user.IsActive, now, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrEmailTaken
		}
		return err
	}
	return nil
}

// FindUserByEmail fetches a user by email.
func (r *PGRepository) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	return user, err
}

// FindUserByID fetches a user by primary key.
func (r *PGRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	return user, err
}

// ConsumeVerifyToken flips the verified flag for an unexpired token. The WHERE
// clause and the mutation run in one statement, making the token single-use.
func (r *PGRepository) ConsumeVerifyToken(ctx context.Context, token string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET verified = TRUE, verify_token = NULL, verify_token_expires = NULL, updated_at = NOW()
		WHERE verify_token = $1 AND verify_token_expires > NOW()
		RETURNING `+userColumns, token)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrOneTimeTokenInvalid
	}
	return user, err
}

// SetVerifyToken stores a fresh verification token, used by resend.
func (r *PGRepository) SetVerifyToken(ctx context.Context, userID uuid.UUID, token string, expires time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET verify_token = $2, verify_token_expires = $3, updated_at = NOW()
		WHERE id = $1 AND verified = FALSE`, userID, token, expires.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetResetToken stores a password-reset token for the user.
func (r *PGRepository) SetResetToken(ctx context.Context, userID uuid.UUID, token string, expires time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET reset_token = $2, reset_token_expires = $3, updated_at = NOW()
		WHERE id = $1`, userID, token, expires.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ConsumeResetToken rewrites the password hash for an unexpired token and
// clears the token in the same statement.
func (r *PGRepository) ConsumeResetToken(ctx context.Context, token, newHash string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET password_hash = $2, reset_token = NULL, reset_token_expires = NULL, updated_at = NOW()
		WHERE reset_token = $1 AND reset_token_expires > NOW()
		RETURNING `+userColumns, token, newHash)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrOneTimeTokenInvalid
	}
	return user, err
}

// UpdateProfile changes mutable profile fields and returns the updated record.
func (r *PGRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, name, phone string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET name = $2, phone = NULLIF($3, ''), updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, userID, name, phone)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	return user, err
}

// UpdatePassword rewrites the password hash.
func (r *PGRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, userID, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// LinkGoogle attaches a federated identifier to an existing account.
func (r *PGRepository) LinkGoogle(ctx context.Context, userID uuid.UUID, googleID, avatarURL string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET google_id = $2, avatar_url = COALESCE(NULLIF($3, ''), avatar_url), updated_at = NOW()
		WHERE id = $1`, userID, googleID, avatarURL)
	return err
}

// CreateRefreshToken persists a new session credential.
func (r *PGRepository) CreateRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())`, userID, token, expiresAt.UTC())
	return err
}

// FindValidRefreshToken matches token string, owning user and expiry.
func (r *PGRepository) FindValidRefreshToken(ctx context.Context, userID uuid.UUID, token string) (*RefreshToken, error) {
	var rt RefreshToken
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, token, expires_at, created_at
		FROM refresh_tokens
		WHERE token = $1 AND user_id = $2 AND expires_at > NOW()`, token, userID).
		Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// RotateRefreshToken replaces the presented row with a fresh one.
func (r *PGRepository) RotateRefreshToken(ctx context.Context, userID uuid.UUID, oldToken, newToken string, expiresAt time.Time) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM refresh_tokens
			WHERE user_id = $1 AND token = $2 AND expires_at > NOW()`, userID, oldToken)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrRefreshInvalid
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO refresh_tokens (user_id, token, expires_at, created_at)
			VALUES ($1, $2, $3, NOW())`, userID, newToken, expiresAt.UTC())
		return err
	})
}

// DeleteRefreshToken removes a single session credential.
func (r *PGRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	return err
}

// DeleteRefreshTokensForUser removes every session credential owned by the user.
func (r *PGRepository) DeleteRefreshTokensForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}

var _ Repository = (*PGRepository)(nil)
