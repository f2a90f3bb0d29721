package service_test

import (
	"testing"
	"time"

	"klipz/config"
	"klipz/internal/auth"
	"klipz/internal/domain"
	"klipz/internal/repository"
	"klipz/internal/service"
	"klipz/internal/testutil"

	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:  "test-access-secret",
			RefreshSecret: "test-refresh-secret",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 24 * time.Hour,
			Issuer:        "klipz-test",
		},
	}
}

func newAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	db := testutil.NewTestDB(t)
	return service.NewAuthService(testConfig(), repository.NewUserRepository(db))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)

	u, access, refresh, err := svc.Register("a@example.com", "alice", "hunter22", domain.RoleClipper)
	require.NoError(t, err)
	require.NotZero(t, u.ID)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := auth.ParseAccessToken(&testConfig().JWT, access)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.UserID)
	require.Equal(t, domain.RoleClipper, claims.Role)

	_, _, _, err = svc.Login("a@example.com", "hunter22")
	require.NoError(t, err)

	_, _, _, err = svc.Login("a@example.com", "wrong")
	require.ErrorIs(t, err, service.ErrInvalidCreds)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := newAuthService(t)

	_, _, _, err := svc.Register("a@example.com", "alice", "hunter22", domain.RoleAdmin)
	require.ErrorIs(t, err, service.ErrInvalidRole)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)

	_, _, _, err := svc.Register("a@example.com", "alice", "hunter22", domain.RoleClipper)
	require.NoError(t, err)

	_, _, _, err = svc.Register("a@example.com", "bob", "hunter22", domain.RoleStreamer)
	require.ErrorIs(t, err, service.ErrEmailExists)

	_, _, _, err = svc.Register("b@example.com", "alice", "hunter22", domain.RoleStreamer)
	require.ErrorIs(t, err, service.ErrUsernameExists)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := newAuthService(t)

	u, _, refresh, err := svc.Register("a@example.com", "alice", "hunter22", domain.RoleStreamer)
	require.NoError(t, err)

	access, newRefresh, err := svc.RefreshToken(refresh)
	require.NoError(t, err)
	require.NotEmpty(t, newRefresh)

	claims, err := auth.ParseAccessToken(&testConfig().JWT, access)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.UserID)

	_, _, err = svc.RefreshToken("not-a-token")
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	svc := newAuthService(t)

	u, _, _, err := svc.Register("a@example.com", "alice", "hunter22", domain.RoleClipper)
	require.NoError(t, err)

	require.ErrorIs(t, svc.ChangePassword(u.ID, "wrong", "newpass99"), service.ErrInvalidCreds)
	require.NoError(t, svc.ChangePassword(u.ID, "hunter22", "newpass99"))

	_, _, _, err = svc.Login("a@example.com", "newpass99")
	require.NoError(t, err)
}
