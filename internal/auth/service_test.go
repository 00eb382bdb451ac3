package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgAuth "github.com/beatspace-ads/beatspace-backend/pkg/auth"
	"github.com/beatspace-ads/beatspace-backend/pkg/auth/session"
	"github.com/beatspace-ads/beatspace-backend/pkg/config"
	"github.com/beatspace-ads/beatspace-backend/pkg/db/models"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
	pkgerrors "github.com/beatspace-ads/beatspace-backend/pkg/errors"
	"github.com/beatspace-ads/beatspace-backend/pkg/security"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "beatspace-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 1440,
	}
}

type stubUserRepo struct {
	byEmail map[string]*models.User
	lastAt  *time.Time
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := r.byEmail[email]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID, at time.Time) error {
	r.lastAt = &at
	return nil
}

type stubSessions struct {
	generated map[string]string
	rotateErr error
	revoked   []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{generated: map[string]string{}}
}

func (s *stubSessions) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.generated[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	stored, ok := s.generated[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.generated, oldAccessID)
	newID := session.NewAccessID()
	newToken := "refresh-" + newID
	s.generated[newID] = newToken
	return newID, newToken, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	delete(s.generated, accessID)
	return nil
}

func seedUser(t *testing.T, status enums.UserStatus) *models.User {
	t.Helper()
	hash, err := security.HashPassword("correct-horse-battery", config.PasswordConfig{})
	require.NoError(t, err)
	return &models.User{
		ID:           uuid.New(),
		Email:        "buyer@acme.example",
		PasswordHash: hash,
		CompanyName:  "Acme Media",
		ContactName:  "Jordan Lee",
		Role:         enums.UserRoleBuyer,
		Status:       status,
	}
}

type authFixture struct {
	svc      Service
	users    *stubUserRepo
	sessions *stubSessions
}

func newAuthFixture(t *testing.T, users ...*models.User) *authFixture {
	t.Helper()
	repo := &stubUserRepo{byEmail: map[string]*models.User{}}
	for _, user := range users {
		repo.byEmail[user.Email] = user
	}
	sessions := newStubSessions()

	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	require.NoError(t, err)
	return &authFixture{svc: svc, users: repo, sessions: sessions}
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded, "expected a coded error, got %v", err)
	assert.Equal(t, want, coded.Code())
}

func TestLoginIssuesTokenPair(t *testing.T) {
	user := seedUser(t, enums.UserStatusApproved)
	fix := newAuthFixture(t, user)

	resp, err := fix.svc.Login(context.Background(), LoginRequest{
		Email:    "  Buyer@Acme.Example  ",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, enums.UserRoleBuyer, claims.Role)

	stored, ok := fix.sessions.generated[claims.ID]
	require.True(t, ok, "refresh session keyed by jti")
	assert.Equal(t, stored, resp.RefreshToken)

	assert.NotNil(t, fix.users.lastAt)
	assert.Equal(t, user.ID, resp.User.ID)
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	user := seedUser(t, enums.UserStatusApproved)
	fix := newAuthFixture(t, user)

	_, err := fix.svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "wrong",
	})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginUnknownEmailUnauthorized(t *testing.T) {
	fix := newAuthFixture(t)

	_, err := fix.svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@acme.example",
		Password: "whatever",
	})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginGatesOnAccountStatus(t *testing.T) {
	pending := seedUser(t, enums.UserStatusPending)
	fix := newAuthFixture(t, pending)

	_, err := fix.svc.Login(context.Background(), LoginRequest{
		Email:    pending.Email,
		Password: "correct-horse-battery",
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestRefreshRotatesSession(t *testing.T) {
	user := seedUser(t, enums.UserStatusApproved)
	fix := newAuthFixture(t, user)

	resp, err := fix.svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	pair, err := fix.svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, pair.RefreshToken)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// The old refresh token is consumed; replaying it is rejected.
	_, err = fix.svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestRefreshRejectsForgedAccessToken(t *testing.T) {
	fix := newAuthFixture(t)

	_, err := fix.svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  "not-a-jwt",
		RefreshToken: "whatever",
	})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestRefreshSessionStoreFailure(t *testing.T) {
	user := seedUser(t, enums.UserStatusApproved)
	fix := newAuthFixture(t, user)

	resp, err := fix.svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	fix.sessions.rotateErr = errors.New("redis down")
	_, err = fix.svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	})
	assertCode(t, err, pkgerrors.CodeInternal)
}

func TestLogoutRevokesSession(t *testing.T) {
	user := seedUser(t, enums.UserStatusApproved)
	fix := newAuthFixture(t, user)

	resp, err := fix.svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, fix.svc.Logout(context.Background(), claims.ID))
	assert.Contains(t, fix.sessions.revoked, claims.ID)

	err = fix.svc.Logout(context.Background(), "  ")
	assertCode(t, err, pkgerrors.CodeValidation)
}
