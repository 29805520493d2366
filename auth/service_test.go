package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/store/memory"
	"github.com/warp/attendance-engine/tracker"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := NewService(store, "test-secret", time.Hour, "admin", "hunter2")
	return svc, store
}

func createTestUser(t *testing.T, store *memory.Store, password string) tracker.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), tracker.User{
		Name:          "Sara",
		Password:      password,
		AnnualBalance: 21,
		CasualBalance: 7,
	})
	require.NoError(t, err)
	return u
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := NewToken("secret", "usr-1", RoleUser, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", claims.Subject)
	assert.Equal(t, RoleUser, claims.Role)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewToken("secret", "usr-1", RoleUser, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	token, err := NewToken("secret", "usr-1", RoleUser, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	_, err := ParseToken("secret", "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLoginUser(t *testing.T) {
	svc, store := newTestService(t)
	u := createTestUser(t, store, "pass123")

	// GIVEN the right password
	identity, token, err := svc.LoginUser(context.Background(), u.ID, "pass123")
	require.NoError(t, err)
	assert.False(t, identity.IsAdmin())
	assert.Equal(t, u.ID, identity.UserID())
	assert.NotEmpty(t, token)

	// WHEN the password is wrong
	_, _, err = svc.LoginUser(context.Background(), u.ID, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// WHEN the user doesn't exist
	_, _, err = svc.LoginUser(context.Background(), "nope", "pass123")
	assert.ErrorIs(t, err, tracker.ErrUserNotFound)
}

func TestLoginUserEmptyStoredPassword(t *testing.T) {
	svc, store := newTestService(t)
	u := createTestUser(t, store, "")

	// An unprotected account admits any input.
	_, _, err := svc.LoginUser(context.Background(), u.ID, "anything")
	assert.NoError(t, err)
	_, _, err = svc.LoginUser(context.Background(), u.ID, "")
	assert.NoError(t, err)
}

func TestLoginAdmin(t *testing.T) {
	svc, _ := newTestService(t)

	identity, token, err := svc.LoginAdmin("admin", "hunter2")
	require.NoError(t, err)
	assert.True(t, identity.IsAdmin())
	assert.Empty(t, identity.UserID())
	assert.NotEmpty(t, token)

	_, _, err = svc.LoginAdmin("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.LoginAdmin("root", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIdentityFromTokenDeletedUser(t *testing.T) {
	svc, store := newTestService(t)
	u := createTestUser(t, store, "pass123")

	_, token, err := svc.LoginUser(context.Background(), u.ID, "pass123")
	require.NoError(t, err)

	// The token resolves while the user exists.
	identity, err := svc.IdentityFromToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, identity.UserID())

	// Deleting the user invalidates outstanding tokens.
	require.NoError(t, store.DeleteUser(context.Background(), u.ID))
	_, err = svc.IdentityFromToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIdentityFromTokenAdmin(t *testing.T) {
	svc, _ := newTestService(t)

	_, token, err := svc.LoginAdmin("admin", "hunter2")
	require.NoError(t, err)

	identity, err := svc.IdentityFromToken(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, identity.IsAdmin())
}

func TestMiddlewareChain(t *testing.T) {
	svc, store := newTestService(t)
	u := createTestUser(t, store, "pass123")

	_, userToken, err := svc.LoginUser(context.Background(), u.ID, "pass123")
	require.NoError(t, err)
	_, adminToken, err := svc.LoginAdmin("admin", "hunter2")
	require.NoError(t, err)

	var seen tracker.Identity
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	authed := svc.Authenticate(RequireIdentity(inner))
	adminOnly := svc.Authenticate(RequireAdmin(inner))

	// No token: 401.
	rec := httptest.NewRecorder()
	authed.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token: 401.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	authed.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// User token: identity reaches the handler.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	authed.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, u.ID, seen.UserID())

	// User token on an admin route: 403.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	adminOnly.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admin token on an admin route: 200.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	adminOnly.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, seen.IsAdmin())
}

func TestIdentityCanAccess(t *testing.T) {
	u := tracker.User{ID: "usr-1"}

	assert.True(t, tracker.UserIdentity(u).CanAccess("usr-1"))
	assert.False(t, tracker.UserIdentity(u).CanAccess("usr-2"))
	assert.True(t, tracker.AdminIdentity().CanAccess("usr-2"))
	assert.False(t, tracker.Identity{}.CanAccess("usr-1"))
}
