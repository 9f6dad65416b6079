package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/quadra-imoveis/quadra/internal/shared"
)

// AccessClaims is the signed payload of an access token.
type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims is the signed payload of a refresh token. It carries only the
// subject; validity additionally depends on the persisted row.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// TokenIssuer creates and verifies the two signed token families. Access and
// refresh tokens are signed with separate secrets so one cannot stand in for
// the other.
type TokenIssuer struct {
	issuer        string
	accessSecret  []byte
	refreshSecret []byte
}

// NewTokenIssuer constructs a TokenIssuer.
func NewTokenIssuer(issuer, accessSecret, refreshSecret string) *TokenIssuer {
	return &TokenIssuer{
		issuer:        issuer,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

// IssueAccess signs a short-lived access token embedding identity id and role.
func (t *TokenIssuer) IssueAccess(userID uuid.UUID, role shared.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.accessSecret)
	if err != nil {
		return "", fmt.Errorf("auth: sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefresh signs a long-lived refresh token for the identity.
func (t *TokenIssuer) IssueRefresh(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("auth: sign refresh token: %w", err)
	}
	return signed, nil
}

// VerifyAccess checks signature and expiry. Expired and malformed tokens map
// to distinct errors so the gate can report different denial reasons.
func (t *TokenIssuer) VerifyAccess(raw string) (uuid.UUID, shared.Role, error) {
	claims := &AccessClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return t.accessSecret, nil
	}, jwt.WithIssuer(t.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, "", shared.ErrTokenExpired
		}
		return uuid.Nil, "", shared.ErrTokenInvalid
	}
	if !tok.Valid {
		return uuid.Nil, "", shared.ErrTokenInvalid
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", shared.ErrTokenInvalid
	}
	return id, shared.Role(claims.Role), nil
}

// AccessExpiry returns the expiry of a token that already passed VerifyAccess.
// Used to bound the blacklist entry written on logout.
func (t *TokenIssuer) AccessExpiry(raw string) (time.Time, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return t.accessSecret, nil
	}, jwt.WithIssuer(t.issuer))
	if err != nil {
		return time.Time{}, shared.ErrTokenInvalid
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, shared.ErrTokenInvalid
	}
	return claims.ExpiresAt.Time, nil
}

// VerifyRefresh checks the refresh token signature and expiry.
func (t *TokenIssuer) VerifyRefresh(raw string) (uuid.UUID, error) {
	claims := &RefreshClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return t.refreshSecret, nil
	}, jwt.WithIssuer(t.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, shared.ErrRefreshExpired
		}
		return uuid.Nil, shared.ErrRefreshInvalid
	}
	if !tok.Valid {
		return uuid.Nil, shared.ErrRefreshInvalid
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, shared.ErrRefreshInvalid
	}
	return id, nil
}

const opaqueTokenBytes = 32

// NewOpaqueToken returns a cryptographically random hex string. Opaque tokens
// are single-use and revocable because validity lives in the store, not in the
// token itself.
func NewOpaqueToken() (string, error) {
	buf := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: opaque token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
