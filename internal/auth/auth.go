// Package auth manages admin authentication: a single bcrypt-verified
// password and opaque session tokens persisted in the catalog database so
// sessions survive daemon restarts.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"chara/internal/catalog"
	"chara/internal/config"
)

var (
	// ErrDisabled reports that no admin password is configured.
	ErrDisabled = errors.New("admin access disabled")

	// ErrInvalidCredentials reports a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidSession reports a missing or expired session token.
	ErrInvalidSession = errors.New("invalid session")
)

const tokenBytes = 32

// Authenticator validates the admin password and manages sessions.
type Authenticator struct {
	store        *catalog.Store
	passwordHash []byte
	sessionTTL   time.Duration
}

// New builds an Authenticator. The configured plaintext password is hashed
// immediately and never retained. An empty password disables admin access.
func New(cfg *config.Config, store *catalog.Store) (*Authenticator, error) {
	a := &Authenticator{
		store:      store,
		sessionTTL: time.Duration(cfg.Server.SessionTTLHours) * time.Hour,
	}
	if cfg.Server.AdminPassword == "" {
		return a, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Server.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	a.passwordHash = hash
	return a, nil
}

// Enabled reports whether admin access is configured at all.
func (a *Authenticator) Enabled() bool {
	return len(a.passwordHash) > 0
}

// Login verifies the password and mints a new session token.
func (a *Authenticator) Login(ctx context.Context, password string) (string, error) {
	if !a.Enabled() {
		return "", ErrDisabled
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	// Each successful login sweeps out expired sessions so the table does
	// not accumulate tokens that Verify never sees again.
	if _, err := a.store.PurgeExpiredSessions(ctx, time.Now().UTC()); err != nil {
		return "", err
	}

	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(raw)

	if err := a.store.CreateSession(ctx, token, time.Now().UTC().Add(a.sessionTTL)); err != nil {
		return "", err
	}
	return token, nil
}

// Verify checks that a session token exists and has not expired. Expired
// sessions are purged on sight.
func (a *Authenticator) Verify(ctx context.Context, token string) error {
	if !a.Enabled() {
		return ErrDisabled
	}
	if token == "" {
		return ErrInvalidSession
	}
	session, err := a.store.GetSession(ctx, token)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrInvalidSession
	}
	if time.Now().UTC().After(session.ExpiresAt) {
		_ = a.store.DeleteSession(ctx, token)
		return ErrInvalidSession
	}
	return nil
}

// Logout invalidates a session token.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	return a.store.DeleteSession(ctx, token)
}
