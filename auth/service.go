/*
service.go - Login flows and identity resolution

PURPOSE:
  Password login for regular users, credential login for the virtual
  admin, and token-to-identity resolution for the middleware.

SECURITY NOTE:
  Passwords are stored and compared as plaintext, and an empty stored
  password logs in with any input. This tracker targets a small office
  deployment where the password gate is a courtesy, not a defense; the
  comparison still uses constant-time equality so the weakness stays
  confined to storage. Do not reuse this package where real security is
  required.

SEE ALSO:
  - token.go: Session token format
  - middleware.go: Request-scoped identity
  - biometrics.go: WebAuthn login path
*/
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/warp/attendance-engine/tracker"
)

// ErrInvalidCredentials is returned when a login attempt fails.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service performs logins and resolves identities from tokens.
type Service struct {
	store         tracker.Store
	secret        string
	ttl           time.Duration
	adminUsername string
	adminPassword string
}

// NewService creates an auth service.
func NewService(store tracker.Store, secret string, ttl time.Duration, adminUsername, adminPassword string) *Service {
	return &Service{
		store:         store,
		secret:        secret,
		ttl:           ttl,
		adminUsername: adminUsername,
		adminPassword: adminPassword,
	}
}

// LoginUser authenticates a persisted user by password and issues a
// session token. An empty stored password admits any input.
func (s *Service) LoginUser(ctx context.Context, userID, password string) (tracker.Identity, string, error) {
	if s.store == nil {
		return tracker.Identity{}, "", tracker.ErrStoreNotConfigured
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return tracker.Identity{}, "", err
	}
	if user == nil {
		return tracker.Identity{}, "", tracker.ErrUserNotFound
	}

	if user.Password != "" && !equalConstantTime(user.Password, password) {
		return tracker.Identity{}, "", ErrInvalidCredentials
	}

	token, err := NewToken(s.secret, user.ID, RoleUser, s.ttl)
	if err != nil {
		return tracker.Identity{}, "", err
	}
	return tracker.UserIdentity(*user), token, nil
}

// LoginAdmin authenticates the virtual admin. The admin exists only in
// configuration; no user record is consulted or created.
func (s *Service) LoginAdmin(username, password string) (tracker.Identity, string, error) {
	if !equalConstantTime(s.adminUsername, username) || !equalConstantTime(s.adminPassword, password) {
		return tracker.Identity{}, "", ErrInvalidCredentials
	}

	token, err := NewToken(s.secret, s.adminUsername, RoleAdmin, s.ttl)
	if err != nil {
		return tracker.Identity{}, "", err
	}
	return tracker.AdminIdentity(), token, nil
}

// IssueUserToken issues a session token for an already-verified user.
// Used by the biometric login path after the assertion checks out.
func (s *Service) IssueUserToken(user tracker.User) (string, error) {
	return NewToken(s.secret, user.ID, RoleUser, s.ttl)
}

// IdentityFromToken resolves a raw token into an identity. Regular user
// tokens are re-checked against the store so a deleted user's token
// stops working immediately.
func (s *Service) IdentityFromToken(ctx context.Context, raw string) (tracker.Identity, error) {
	claims, err := ParseToken(s.secret, raw)
	if err != nil {
		return tracker.Identity{}, err
	}

	if claims.Role == RoleAdmin {
		return tracker.AdminIdentity(), nil
	}

	if s.store == nil {
		return tracker.Identity{}, tracker.ErrStoreNotConfigured
	}
	user, err := s.store.GetUser(ctx, claims.Subject)
	if err != nil {
		return tracker.Identity{}, err
	}
	if user == nil {
		return tracker.Identity{}, ErrInvalidToken
	}
	return tracker.UserIdentity(*user), nil
}

func equalConstantTime(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
