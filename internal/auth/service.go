package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quadra-imoveis/quadra/internal/shared"
)

// Mailer dispatches transactional email. The concrete implementation enqueues
// background jobs; nothing in this package blocks on SMTP.
type Mailer interface {
	SendVerification(ctx context.Context, email, name, token string) error
	SendWelcome(ctx context.Context, email, name string) error
	SendPasswordReset(ctx context.Context, email, name, token string) error
}

// ServiceConfig carries the tunables for token lifecycles.
type ServiceConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	VerifyTTL  time.Duration
	ResetTTL   time.Duration
	// LogoutAll switches logout from single-session (by presented token) to
	// all-sessions (by owning identity).
	LogoutAll bool
}

func (c ServiceConfig) withDefaults() ServiceConfig {
	if c.AccessTTL <= 0 {
		c.AccessTTL = 24 * time.Hour
	}
	if c.RefreshTTL <= 0 {
		c.RefreshTTL = 7 * 24 * time.Hour
	}
	if c.VerifyTTL <= 0 {
		c.VerifyTTL = 24 * time.Hour
	}
	if c.ResetTTL <= 0 {
		c.ResetTTL = time.Hour
	}
	return c
}

// Service orchestrates the authentication flows.
type Service struct {
	repo      Repository
	hasher    *PasswordHasher
	issuer    *TokenIssuer
	blacklist *Blacklist
	google    GoogleVerifier
	mailer    Mailer
	logger    *slog.Logger
	cfg       ServiceConfig
}

// NewService constructs a new Service.
func NewService(repo Repository, hasher *PasswordHasher, issuer *TokenIssuer, blacklist *Blacklist, google GoogleVerifier, mailer Mailer, logger *slog.Logger, cfg ServiceConfig) *Service {
	return &Service{
		repo:      repo,
		hasher:    hasher,
		issuer:    issuer,
		blacklist: blacklist,
		google:    google,
		mailer:    mailer,
		logger:    logger,
		cfg:       cfg.withDefaults(),
	}
}

// LoginResult is the payload of a successful login or federated login.
type LoginResult struct {
	User         *shared.Identity `json:"user"`
	AccessToken  string           `json:"token"`
	RefreshToken string           `json:"refreshToken"`
}

// Register creates an unverified account and dispatches a verification email.
// No tokens are issued until the email is verified.
func (s *Service) Register(ctx context.Context, name, email, password, phone string) error {
	if _, err := s.repo.FindUserByEmail(ctx, email); err == nil {
		return shared.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	verifyToken, err := NewOpaqueToken()
	if err != nil {
		return err
	}

	user := &User{
		ID:                 uuid.New(),
		Email:              email,
		Name:               name,
		Phone:              phone,
		PasswordHash:       hash,
		Role:               shared.RoleCliente,
		Verified:           false,
		VerifyToken:        verifyToken,
		VerifyTokenExpires: time.Now().Add(s.cfg.VerifyTTL),
		IsActive:           true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return err
	}

	return s.mailer.SendVerification(ctx, user.Email, user.Name, verifyToken)
}

// VerifyEmail consumes a verification token. A consumed or expired token fails
// with the same outward error.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.repo.ConsumeVerifyToken(ctx, token)
	if err != nil {
		return err
	}
	if err := s.mailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
		// The account is already verified; a welcome email is best effort.
		s.logWarn("send welcome email", err)
	}
	return nil
}

// ResendVerification issues a fresh verification token for an unverified account.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.Verified {
		return shared.ErrValidation
	}
	token, err := NewOpaqueToken()
	if err != nil {
		return err
	}
	if err := s.repo.SetVerifyToken(ctx, user.ID, token, time.Now().Add(s.cfg.VerifyTTL)); err != nil {
		return err
	}
	return s.mailer.SendVerification(ctx, user.Email, user.Name, token)
}

// Login validates credentials and issues a token pair. Unknown email and wrong
// password produce the same error so accounts cannot be enumerated.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.Verified {
		return nil, shared.ErrEmailNotVerified
	}
	return s.issueSession(ctx, user)
}

// GoogleLogin verifies a Google ID token and finds or creates the local account.
func (s *Service) GoogleLogin(ctx context.Context, idToken string) (*LoginResult, error) {
	if s.google == nil {
		return nil, shared.ErrTokenInvalid
	}
	claims, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, shared.ErrTokenInvalid
	}

	user, err := s.repo.FindUserByEmail(ctx, claims.Email)
	switch {
	case err == nil:
		if user.GoogleID == "" {
			if err := s.repo.LinkGoogle(ctx, user.ID, claims.Subject, claims.Picture); err != nil {
				return nil, err
			}
			user.GoogleID = claims.Subject
		}
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	default:
		// First sight: local password is random and unusable, the account is
		// verified by the provider.
		random, err := NewOpaqueToken()
		if err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(random)
		if err != nil {
			return nil, err
		}
		user = &User{
			ID:           uuid.New(),
			Email:        claims.Email,
			Name:         claims.Name,
			PasswordHash: hash,
			Role:         shared.RoleCliente,
			Verified:     true,
			GoogleID:     claims.Subject,
			AvatarURL:    claims.Picture,
			IsActive:     true,
		}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return nil, err
		}
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user *User) (*LoginResult, error) {
	access, err := s.issuer.IssueAccess(user.ID, user.Role, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issuer.IssueRefresh(user.ID, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateRefreshToken(ctx, user.ID, refresh, time.Now().Add(s.cfg.RefreshTTL)); err != nil {
		return nil, err
	}
	return &LoginResult{User: user.Identity(), AccessToken: access, RefreshToken: refresh}, nil
}

// ForgotPassword stores a reset token and emails a reset link. Unknown emails
// surface as not-found.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	token, err := NewOpaqueToken()
	if err != nil {
		return err
	}
	if err := s.repo.SetResetToken(ctx, user.ID, token, time.Now().Add(s.cfg.ResetTTL)); err != nil {
		return err
	}
	return s.mailer.SendPasswordReset(ctx, user.Email, user.Name, token)
}

// ResetPassword consumes a reset token and installs the new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	_, err = s.repo.ConsumeResetToken(ctx, token, hash)
	return err
}

// Refresh rotates the presented refresh token and issues a new pair. The old
// token string is invalid the moment rotation commits; a concurrent refresh of
// the same token fails rather than minting a second session.
func (s *Service) Refresh(ctx context.Context, identity *shared.Identity, oldToken string) (*TokenPair, error) {
	access, err := s.issuer.IssueAccess(identity.ID, identity.Role, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issuer.IssueRefresh(identity.ID, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RotateRefreshToken(ctx, identity.ID, oldToken, refresh, time.Now().Add(s.cfg.RefreshTTL)); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Logout removes the session's refresh token and revokes the presented access
// token until its natural expiry. With LogoutAll set, every session of the
// identity is removed instead of only the presented one.
func (s *Service) Logout(ctx context.Context, identity *shared.Identity, refreshToken, accessToken string) error {
	if s.cfg.LogoutAll || refreshToken == "" {
		if err := s.repo.DeleteRefreshTokensForUser(ctx, identity.ID); err != nil {
			return err
		}
	} else {
		if err := s.repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
			return err
		}
	}

	if s.blacklist != nil && accessToken != "" {
		expiry, err := s.issuer.AccessExpiry(accessToken)
		if err == nil {
			if err := s.blacklist.Add(ctx, accessToken, expiry); err != nil {
				s.logWarn("blacklist access token", err)
			}
		}
	}
	return nil
}

// UpdateProfile changes name and phone and returns the fresh identity.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, name, phone string) (*shared.Identity, error) {
	user, err := s.repo.UpdateProfile(ctx, userID, name, phone)
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}

// ChangePassword verifies the current password before installing the new one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(current, user.PasswordHash) {
		return shared.ErrInvalidCredentials
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, hash)
}

func (s *Service) logWarn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, slog.Any("error", err))
	}
}
