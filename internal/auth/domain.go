package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/quadra-imoveis/quadra/internal/shared"
)

// User is the persisted account record. The password hash and one-time token
// fields never leave this package; handlers only ever see shared.Identity.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	Role         shared.Role
	Verified     bool
	GoogleID     string
	AvatarURL    string

	VerifyToken        string
	VerifyTokenExpires time.Time
	ResetToken         string
	ResetTokenExpires  time.Time

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity strips credential material from the user record.
func (u *User) Identity() *shared.Identity {
	if u == nil {
		return nil
	}
	return &shared.Identity{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Role:      u.Role,
		Verified:  u.Verified,
		IsActive:  u.IsActive,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// RefreshToken is a persisted long-lived credential. Multiple rows per user
// mean multiple concurrent sessions.
type RefreshToken struct {
	ID        int64
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// TokenPair is the credential set returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}
