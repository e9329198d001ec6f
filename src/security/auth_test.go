package security

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/username/partsviewer/backend/src/database"
	"github.com/username/partsviewer/backend/src/model"
)

const testSecret = "test-secret-that-is-at-least-32-bytes-long"

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()
	store, err := database.Open(filepath.Join(t.TempDir(), "parts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewAuthService(testSecret, time.Hour, store)
}

func TestTokenRoundTripCarriesRole(t *testing.T) {
	a := newTestAuth(t)
	token, err := a.GenerateToken("u-1", model.RoleAdmin)
	require.NoError(t, err)

	claims, err := a.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.Subject)
	require.Equal(t, model.RoleAdmin, claims.Role)

	other := NewAuthService("another-secret-that-is-also-32-bytes-long", time.Hour, nil)
	_, err = other.ValidateToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	a := newTestAuth(t)
	a.TokenExpiry = -time.Minute
	token, err := a.GenerateToken("u-1", model.RoleViewer)
	require.NoError(t, err)
	_, err = a.ValidateToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRegisterLoginLogout(t *testing.T) {
	a := newTestAuth(t)
	ctx := context.Background()

	_, err := a.Register(ctx, "kim", "", "123")
	require.ErrorIs(t, err, ErrWeakCredentials)

	u, err := a.Register(ctx, "kim", "kim@example.com", "secret-pass")
	require.NoError(t, err)
	require.Equal(t, model.RoleViewer, u.Role)

	_, err = a.Register(ctx, "kim", "", "secret-pass")
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, _, err = a.Login(ctx, "kim", "wrong-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = a.Login(ctx, "nobody", "secret-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	token, user, err := a.Login(ctx, "kim", "secret-pass")
	require.NoError(t, err)
	require.Equal(t, u.ID, user.ID)

	claims, err := a.Authenticate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, model.RoleViewer, claims.Role)

	require.NoError(t, a.Logout(ctx, token))
	_, err = a.Authenticate(ctx, token)
	require.ErrorIs(t, err, ErrInvalidToken, "revoked session")
}

func TestEnsureAdminOnlyOnEmptyStore(t *testing.T) {
	a := newTestAuth(t)
	ctx := context.Background()

	require.NoError(t, a.EnsureAdmin(ctx, "admin", ""))
	n, err := model.CountUsers(ctx, a.store.DB())
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, a.EnsureAdmin(ctx, "admin", "admin-pass"))
	_, u, err := a.Login(ctx, "admin", "admin-pass")
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, u.Role)

	require.NoError(t, a.EnsureAdmin(ctx, "second", "other-pass"))
	n, err = model.CountUsers(ctx, a.store.DB())
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
