package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/quadra-imoveis/quadra/internal/platform/httpx"
	"github.com/quadra-imoveis/quadra/internal/shared"
)

// Gate resolves bearer tokens into request identities.
type Gate struct {
	issuer    *TokenIssuer
	repo      Repository
	blacklist *Blacklist
	logger    *slog.Logger
}

// NewGate constructs a Gate.
func NewGate(issuer *TokenIssuer, repo Repository, blacklist *Blacklist, logger *slog.Logger) *Gate {
	return &Gate{issuer: issuer, repo: repo, blacklist: blacklist, logger: logger}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// resolve turns a raw access token into an identity, or a domain error.
// Revocation is checked before the identity is attached anywhere.
func (g *Gate) resolve(r *http.Request, token string) (*shared.Identity, error) {
	userID, _, err := g.issuer.VerifyAccess(token)
	if err != nil {
		return nil, err
	}

	if g.blacklist != nil {
		revoked, err := g.blacklist.Contains(r.Context(), token)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, shared.ErrTokenInvalid
		}
	}

	user, err := g.repo.FindUserByID(r.Context(), userID)
	if err != nil {
		return nil, shared.ErrIdentityNotFound
	}
	if !user.Verified {
		return nil, shared.ErrEmailNotVerified
	}
	return user.Identity(), nil
}

// Require rejects requests without a valid, non-revoked, verified identity.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			httpx.RespondError(w, shared.ErrNotAuthenticated)
			return
		}
		identity, err := g.resolve(r, token)
		if err != nil {
			g.warn("auth gate", err)
			httpx.RespondError(w, err)
			return
		}
		ctx := shared.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional performs the same resolution but never rejects; downstream handlers
// branch on identity presence.
func (g *Gate) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		identity, err := g.resolve(r, token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := shared.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RefreshRequest is the body shape accepted by refresh-gated routes.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshGate verifies a refresh token against the persisted table and attaches
// both the identity and the raw token for rotation by the handler. The body is
// restored so handlers may read it again.
func (g *Gate) RefreshGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			httpx.RespondError(w, shared.ErrValidation)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var req RefreshRequest
		if err := json.Unmarshal(body, &req); err != nil || req.RefreshToken == "" {
			httpx.RespondError(w, shared.ErrRefreshMissing)
			return
		}

		userID, err := g.issuer.VerifyRefresh(req.RefreshToken)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		if _, err := g.repo.FindValidRefreshToken(r.Context(), userID, req.RefreshToken); err != nil {
			httpx.RespondError(w, err)
			return
		}
		user, err := g.repo.FindUserByID(r.Context(), userID)
		if err != nil {
			httpx.RespondError(w, shared.ErrIdentityNotFound)
			return
		}

		ctx := shared.ContextWithIdentity(r.Context(), user.Identity())
		ctx = shared.ContextWithRefreshToken(ctx, req.RefreshToken)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Gate) warn(msg string, err error) {
	if g.logger != nil {
		g.logger.Warn(msg, slog.Any("error", err))
	}
}
