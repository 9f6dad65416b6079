package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadra-imoveis/quadra/internal/shared"
)

type fakeRepo struct {
	users   map[uuid.UUID]*User
	refresh map[string]RefreshToken
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:   make(map[uuid.UUID]*User),
		refresh: make(map[string]RefreshToken),
	}
}

func (f *fakeRepo) CreateUser(_ context.Context, user *User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return shared.ErrEmailTaken
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeRepo) FindUserByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeRepo) FindUserByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeRepo) ConsumeVerifyToken(_ context.Context, token string) (*User, error) {
	for _, u := range f.users {
		if u.VerifyToken == token && u.VerifyTokenExpires.After(time.Now()) {
			u.Verified = true
			u.VerifyToken = ""
			u.VerifyTokenExpires = time.Time{}
			clone := *u
			return &clone, nil
		}
	}
	return nil, shared.ErrOneTimeTokenInvalid
}

func (f *fakeRepo) SetVerifyToken(_ context.Context, userID uuid.UUID, token string, expires time.Time) error {
	u, ok := f.users[userID]
	if !ok || u.Verified {
		return shared.ErrNotFound
	}
	u.VerifyToken = token
	u.VerifyTokenExpires = expires
	return nil
}

func (f *fakeRepo) SetResetToken(_ context.Context, userID uuid.UUID, token string, expires time.Time) error {
	u, ok := f.users[userID]
	if !ok {
		return shared.ErrNotFound
	}
	u.ResetToken = token
	u.ResetTokenExpires = expires
	return nil
}

func (f *fakeRepo) ConsumeResetToken(_ context.Context, token, newHash string) (*User, error) {
	for _, u := range f.users {
		if u.ResetToken == token && u.ResetTokenExpires.After(time.Now()) {
			u.PasswordHash = newHash
			u.ResetToken = ""
			u.ResetTokenExpires = time.Time{}
			clone := *u
			return &clone, nil
		}
	}
	return nil, shared.ErrOneTimeTokenInvalid
}

func (f *fakeRepo) UpdateProfile(_ context.Context, userID uuid.UUID, name, phone string) (*User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	u.Name = name
	u.Phone = phone
	clone := *u
	return &clone, nil
}

func (f *fakeRepo) UpdatePassword(_ context.Context, userID uuid.UUID, hash string) error {
	u, ok := f.users[userID]
	if !ok {
		return shared.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeRepo) LinkGoogle(_ context.Context, userID uuid.UUID, googleID, avatarURL string) error {
	u, ok := f.users[userID]
	if !ok {
		return shared.ErrNotFound
	}
	u.GoogleID = googleID
	if avatarURL != "" {
		u.AvatarURL = avatarURL
	}
	return nil
}

func (f *fakeRepo) CreateRefreshToken(_ context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	f.refresh[token] = RefreshToken{UserID: userID, Token: token, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeRepo) FindValidRefreshToken(_ context.Context, userID uuid.UUID, token string) (*RefreshToken, error) {
	rt, ok := f.refresh[token]
	if !ok || rt.UserID != userID || rt.ExpiresAt.Before(time.Now()) {
		return nil, shared.ErrRefreshInvalid
	}
	clone := rt
	return &clone, nil
}

func (f *fakeRepo) RotateRefreshToken(_ context.Context, userID uuid.UUID, oldToken, newToken string, expiresAt time.Time) error {
	rt, ok := f.refresh[oldToken]
	if !ok || rt.UserID != userID || rt.ExpiresAt.Before(time.Now()) {
		return shared.ErrRefreshInvalid
	}
	delete(f.refresh, oldToken)
	f.refresh[newToken] = RefreshToken{UserID: userID, Token: newToken, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeRepo) DeleteRefreshToken(_ context.Context, token string) error {
	delete(f.refresh, token)
	return nil
}

func (f *fakeRepo) DeleteRefreshTokensForUser(_ context.Context, userID uuid.UUID) error {
	for token, rt := range f.refresh {
		if rt.UserID == userID {
			delete(f.refresh, token)
		}
	}
	return nil
}

var _ Repository = (*fakeRepo)(nil)

type mailRecord struct {
	email string
	name  string
	token string
}

type fakeMailer struct {
	verifications []mailRecord
	welcomes      []mailRecord
	resets        []mailRecord
}

func (m *fakeMailer) SendVerification(_ context.Context, email, name, token string) error {
	m.verifications = append(m.verifications, mailRecord{email, name, token})
	return nil
}

func (m *fakeMailer) SendWelcome(_ context.Context, email, name string) error {
	m.welcomes = append(m.welcomes, mailRecord{email: email, name: name})
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, email, name, token string) error {
	m.resets = append(m.resets, mailRecord{email, name, token})
	return nil
}

type serviceFixture struct {
	service *Service
	repo    *fakeRepo
	mailer  *fakeMailer
	redis   *miniredis.Miniredis
}

func newServiceFixture(t *testing.T, cfg ServiceConfig) *serviceFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newFakeRepo()
	mailer := &fakeMailer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(repo, NewPasswordHasher(4), newTestIssuer(),
		NewBlacklist(client), nil, mailer, logger, cfg)
	return &serviceFixture{service: service, repo: repo, mailer: mailer, redis: mr}
}

func (f *serviceFixture) register(t *testing.T, email, password string) *User {
	t.Helper()
	require.NoError(t, f.service.Register(context.Background(), "Maria Teste", email, password, "41999990000"))
	user, err := f.repo.FindUserByEmail(context.Background(), email)
	require.NoError(t, err)
	return user
}

func (f *serviceFixture) registerVerified(t *testing.T, email, password string) *User {
	t.Helper()
	user := f.register(t, email, password)
	require.NoError(t, f.service.VerifyEmail(context.Background(), user.VerifyToken))
	user, err := f.repo.FindUserByEmail(context.Background(), email)
	require.NoError(t, err)
	return user
}

func TestRegisterCreatesUnverifiedAccount(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{})

	user := f.register(t, "maria@example.com", "senha123")

	assert.False(t, user.Verified)
	assert.Equal(t, shared.RoleCliente, user.Role)
	assert.NotEmpty(t, user.VerifyToken)
	assert.Empty(t, f.repo.refresh, "no session before email verification")

	require.Len(t, f.mailer.verifications, 1)
	assert.Equal(t, user.VerifyToken, f.mailer.verifications[0].token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{})
	f.register(t, "maria@example.com", "senha123")

	err := f.service.Register(context.Background(), "Outra", "maria@example.com", "outra123", "")
	assert.ErrorIs(t, err, shared.ErrEmailTaken)
}

func TestVerifyEmailTokenIsSingleUse(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{})
	user := f.register(t, "maria@example.com", "senha123")

	require.NoError(t, f.service.VerifyEmail(context.Background(), user.VerifyToken))
	assert.Len(t, f.mailer.welcomes, 1)

	err := f.service.VerifyEmail(context.Background(), user.VerifyToken)
	assert.ErrorIs(t, err, shared.ErrOneTimeTokenInvalid)
}

func TestLoginCredentialFailuresAreUniform(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{})
	f.registerVerified(t, "maria@example.com", "senha123")

	_, errUnknown := f.service.Login(context.Background(), "ninguem@example.com", "senha123")
	_, errWrongPass := f.service.Login(context.Background(), "maria@example.com", "errada")

	assert.ErrorIs(t, errUnknown, shared.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPass, shared.ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrongPass)
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{})
	f.register(t, "maria@example.com", "senha123")

	_, err := f.service.Login(context.Background(), "maria@example.com", "senha123")
	assert.ErrorIs(t, err, shared.ErrEmailNotVerified)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{})
	user := f.registerVerified(t, "maria@example.com", "senha123")
	f.repo.users[user.ID].IsActive = false

	_, err := f.service.Login(context.Background(), "maria@example.com", "senha123")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginIssuesSession(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{})
	user := f.registerVerified(t, "maria@example.com", "senha123")

	result, err := f.service.Login(context.Background(), "maria@example.com", "senha123")
	require.NoError(t, err)

	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	_, err = f.repo.FindValidRefreshToken(context.Background(), user.ID, result.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{})
	user := f.registerVerified(t, "maria@example.com", "senha123")
	result, err := f.service.Login(context.Background(), "maria@example.com", "senha123")
	require.NoError(t, err)

	pair, err := f.service.Refresh(context.Background(), user.Identity(), result.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, result.RefreshToken, pair.RefreshToken)

	_, err = f.repo.FindValidRefreshToken(context.Background(), user.ID, result.RefreshToken)
	assert.ErrorIs(t, err, shared.ErrRefreshInvalid, "rotated-out token must be dead")
	_, err = f.repo.FindValidRefreshToken(context.Background(), user.ID, pair.RefreshToken)
	assert.NoError(t, err)

	_, err = f.service.Refresh(context.Background(), user.Identity(), result.RefreshToken)
	assert.ErrorIs(t, err, shared.ErrRefreshInvalid, "replaying the old token must fail")
}

func TestLogoutRemovesOnlyPresentedSession(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{})
	user := f.registerVerified(t, "maria@example.com", "senha123")

	first, err := f.service.Login(context.Background(), "maria@example.com", "senha123")
	require.NoError(t, err)
	second, err := f.service.Login(context.Background(), "maria@example.com", "senha123")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), user.Identity(), first.RefreshToken, first.AccessToken))

	_, err = f.repo.FindValidRefreshToken(context.Background(), user.ID, first.RefreshToken)
	assert.ErrorIs(t, err, shared.ErrRefreshInvalid)
	_, err = f.repo.FindValidRefreshToken(context.Background(), user.ID, second.RefreshToken)
	assert.NoError(t, err, "other sessions survive a single-session logout")
}

func TestLogoutAllRemovesEverySession(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{LogoutAll: true})
	user := f.registerVerified(t, "maria@example.com", "senha123")

	first, err := f.service.Login(context.Background(), "maria@example.com", "senha123")
	require.NoError(t, err)
	second, err := f.service.Login(context.Background(), "maria@example.com", "senha123")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), user.Identity(), first.RefreshToken, first.AccessToken))
	assert.Empty(t, f.repo.refresh)
	_ = second
}

func TestLogoutBlacklistsAccessToken(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{})
	user := f.registerVerified(t, "maria@example.com", "senha123")
	result, err := f.service.Login(context.Background(), "maria@example.com", "senha123")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), user.Identity(), result.RefreshToken, result.AccessToken))

	mr := f.redis
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	revoked, err := NewBlacklist(client).Contains(context.Background(), result.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{})
	user := f.registerVerified(t, "maria@example.com", "senha123")

	require.NoError(t, f.service.ForgotPassword(context.Background(), "maria@example.com"))
	require.Len(t, f.mailer.resets, 1)
	token := f.mailer.resets[0].token

	require.NoError(t, f.service.ResetPassword(context.Background(), token, "nova-senha"))

	_, err := f.service.Login(context.Background(), "maria@example.com", "senha123")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	result, err := f.service.Login(context.Background(), "maria@example.com", "nova-senha")
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)

	err = f.service.ResetPassword(context.Background(), token, "outra-senha")
	assert.ErrorIs(t, err, shared.ErrOneTimeTokenInvalid, "reset token is single use")
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{})

	err := f.service.ForgotPassword(context.Background(), "ninguem@example.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, f.mailer.resets)
}

func TestResendVerificationOnVerifiedAccount(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{})
	f.registerVerified(t, "maria@example.com", "senha123")

	err := f.service.ResendVerification(context.Background(), "maria@example.com")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestResendVerificationRotatesToken(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{})
	user := f.register(t, "maria@example.com", "senha123")
	first := user.VerifyToken

	require.NoError(t, f.service.ResendVerification(context.Background(), "maria@example.com"))

	refreshed, err := f.repo.FindUserByEmail(context.Background(), "maria@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, first, refreshed.VerifyToken)
	require.Len(t, f.mailer.verifications, 2)
	assert.Equal(t, refreshed.VerifyToken, f.mailer.verifications[1].token)
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{})
	user := f.registerVerified(t, "maria@example.com", "senha123")

	err := f.service.ChangePassword(context.Background(), user.ID, "errada", "nova-senha")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	require.NoError(t, f.service.ChangePassword(context.Background(), user.ID, "senha123", "nova-senha"))
	_, err = f.service.Login(context.Background(), "maria@example.com", "nova-senha")
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{})
	user := f.registerVerified(t, "maria@example.com", "senha123")

	identity, err := f.service.UpdateProfile(context.Background(), user.ID, "Maria Atualizada", "41888880000")
	require.NoError(t, err)
	assert.Equal(t, "Maria Atualizada", identity.Name)
	assert.Equal(t, "41888880000", identity.Phone)
}
