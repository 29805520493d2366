package auth

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/store/memory"
	"github.com/warp/attendance-engine/tracker"
)

func newTestBiometrics(t *testing.T) (*Biometrics, *memory.Store) {
	t.Helper()
	store := memory.New()
	bio, err := NewBiometrics(config.WebAuthn{
		RPDisplayName: "Test Tracker",
		RPID:          "localhost",
		RPOrigins:     []string{"http://localhost:8080"},
		SessionTTL:    time.Minute,
	}, store)
	require.NoError(t, err)
	return bio, store
}

func TestBeginRegistrationIssuesSession(t *testing.T) {
	bio, store := newTestBiometrics(t)
	u, err := store.CreateUser(context.Background(), tracker.User{Name: "Sara"})
	require.NoError(t, err)

	options, sessionID, err := bio.BeginRegistration(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)
	assert.Contains(t, string(options), `"challenge"`)
	assert.Contains(t, string(options), "localhost")
}

func TestBeginRegistrationUnknownUser(t *testing.T) {
	bio, _ := newTestBiometrics(t)

	_, _, err := bio.BeginRegistration(context.Background(), "nope")
	assert.ErrorIs(t, err, tracker.ErrUserNotFound)
}

func TestBeginLoginRequiresEnrollment(t *testing.T) {
	bio, store := newTestBiometrics(t)
	u, err := store.CreateUser(context.Background(), tracker.User{Name: "Sara"})
	require.NoError(t, err)

	_, _, err = bio.BeginLogin(context.Background(), u.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestBeginLoginWithEnrolledCredential(t *testing.T) {
	bio, store := newTestBiometrics(t)
	u, err := store.CreateUser(context.Background(), tracker.User{Name: "Sara"})
	require.NoError(t, err)

	credID := base64.RawURLEncoding.EncodeToString([]byte("cred-1"))
	require.NoError(t, store.UpdateUserBiometric(context.Background(), u.ID, credID))

	options, sessionID, err := bio.BeginLogin(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)
	// The enrolled credential shows up in the allow list.
	assert.Contains(t, string(options), credID)
}

func TestFinishWithUnknownSession(t *testing.T) {
	bio, _ := newTestBiometrics(t)

	_, err := bio.FinishRegistration(context.Background(), "nope", []byte(`{}`))
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = bio.FinishLogin(context.Background(), "nope", []byte(`{}`))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionsAreSingleUseAndKindScoped(t *testing.T) {
	bio, _ := newTestBiometrics(t)

	id, err := bio.saveSession("usr-1", sessionKindLogin, webauthn.SessionData{})
	require.NoError(t, err)

	// Wrong kind does not match.
	_, err = bio.takeSession(id, sessionKindRegistration)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Right kind consumes the session.
	session, err := bio.takeSession(id, sessionKindLogin)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", session.userID)

	_, err = bio.takeSession(id, sessionKindLogin)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionsExpire(t *testing.T) {
	bio, _ := newTestBiometrics(t)
	bio.ttl = -time.Second

	id, err := bio.saveSession("usr-1", sessionKindLogin, webauthn.SessionData{})
	require.NoError(t, err)

	_, err = bio.takeSession(id, sessionKindLogin)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDisableClearsCredential(t *testing.T) {
	bio, store := newTestBiometrics(t)
	u, err := store.CreateUser(context.Background(), tracker.User{Name: "Sara"})
	require.NoError(t, err)
	require.NoError(t, store.UpdateUserBiometric(context.Background(), u.ID, "Y3JlZC0x"))

	require.NoError(t, bio.Disable(context.Background(), u.ID))

	got, err := store.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.BiometricCredID)
}

func TestBioUserCredentials(t *testing.T) {
	raw := []byte("cred-1")
	u := bioUser{user: tracker.User{
		ID:              "usr-1",
		Name:            "Sara",
		BiometricCredID: base64.RawURLEncoding.EncodeToString(raw),
	}}

	assert.Equal(t, []byte("usr-1"), u.WebAuthnID())
	assert.Equal(t, "Sara", u.WebAuthnDisplayName())

	creds := u.WebAuthnCredentials()
	require.Len(t, creds, 1)
	assert.Equal(t, raw, creds[0].ID)

	// Not enrolled, or corrupt encoding: no credentials.
	assert.Nil(t, bioUser{user: tracker.User{ID: "usr-2"}}.WebAuthnCredentials())
	assert.Nil(t, bioUser{user: tracker.User{ID: "usr-3", BiometricCredID: "%%%"}}.WebAuthnCredentials())
}
