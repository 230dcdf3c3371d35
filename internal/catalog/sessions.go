package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateSession persists a new admin session token.
func (s *Store) CreateSession(ctx context.Context, token string, expiresAt time.Time) error {
	if token == "" {
		return errors.New("token is required")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO admin_sessions (token, created_at, expires_at) VALUES (?, ?, ?)`,
		token,
		time.Now().UTC().Format(time.RFC3339Nano),
		expiresAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession fetches a session by token. Unknown tokens return (nil, nil).
// Expiry is the caller's decision; the row is returned as stored.
func (s *Store) GetSession(ctx context.Context, token string) (*Session, error) {
	var (
		session    Session
		createdRaw string
		expiresRaw string
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT token, created_at, expires_at FROM admin_sessions WHERE token = ?`,
		token,
	).Scan(&session.Token, &createdRaw, &expiresRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		session.CreatedAt = created
	}
	if expires, err := parseTimeString(expiresRaw); err == nil {
		session.ExpiresAt = expires
	}
	return &session, nil
}

// DeleteSession removes a session token, for logout.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions deletes every session that expired before now.
func (s *Store) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM admin_sessions WHERE expires_at < ?`,
		now.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}
