package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"chara/internal/auth"
	"chara/internal/testsupport"
)

func TestLoginAndVerify(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	authenticator, err := auth.New(cfg, store)
	if err != nil {
		t.Fatalf("auth.New: %v", err)
	}
	if !authenticator.Enabled() {
		t.Fatal("expected admin access enabled")
	}

	ctx := context.Background()
	token, err := authenticator.Login(ctx, "test-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if err := authenticator.Verify(ctx, token); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	second, err := authenticator.Login(ctx, "test-password")
	if err != nil {
		t.Fatalf("second Login failed: %v", err)
	}
	if second == token {
		t.Fatal("expected unique tokens per login")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	authenticator, err := auth.New(cfg, store)
	if err != nil {
		t.Fatalf("auth.New: %v", err)
	}

	if _, err := authenticator.Login(context.Background(), "nope"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyRejectsUnknownAndExpired(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	authenticator, err := auth.New(cfg, store)
	if err != nil {
		t.Fatalf("auth.New: %v", err)
	}

	ctx := context.Background()
	if err := authenticator.Verify(ctx, "unknown-token"); !errors.Is(err, auth.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if err := authenticator.Verify(ctx, ""); !errors.Is(err, auth.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for empty token, got %v", err)
	}

	if err := store.CreateSession(ctx, "stale", time.Now().UTC().Add(-time.Minute)); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := authenticator.Verify(ctx, "stale"); !errors.Is(err, auth.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for expired token, got %v", err)
	}
	stale, err := store.GetSession(ctx, "stale")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if stale != nil {
		t.Fatal("expected expired session purged on verify")
	}
}

func TestLoginSweepsExpiredSessions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	authenticator, err := auth.New(cfg, store)
	if err != nil {
		t.Fatalf("auth.New: %v", err)
	}

	ctx := context.Background()
	if err := store.CreateSession(ctx, "stale", time.Now().UTC().Add(-time.Minute)); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if _, err := authenticator.Login(ctx, "test-password"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	stale, err := store.GetSession(ctx, "stale")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if stale != nil {
		t.Fatal("expected login to purge expired sessions")
	}
}

func TestLogout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	authenticator, err := auth.New(cfg, store)
	if err != nil {
		t.Fatalf("auth.New: %v", err)
	}

	ctx := context.Background()
	token, err := authenticator.Login(ctx, "test-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := authenticator.Logout(ctx, token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if err := authenticator.Verify(ctx, token); !errors.Is(err, auth.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession after logout, got %v", err)
	}
}

func TestDisabledWhenNoPassword(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Server.AdminPassword = ""
	store := testsupport.MustOpenStore(t, cfg)
	authenticator, err := auth.New(cfg, store)
	if err != nil {
		t.Fatalf("auth.New: %v", err)
	}
	if authenticator.Enabled() {
		t.Fatal("expected admin access disabled")
	}
	if _, err := authenticator.Login(context.Background(), "anything"); !errors.Is(err, auth.ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}
