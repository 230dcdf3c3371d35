package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"chara/internal/config"
)

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

const itemColumns = "id, subject, group_name, caption, fingerprint, storage_key, source_message_id, created_at"

// Insert persists a new item and returns the stored row. A collision on
// storage key or source message id returns an error wrapping ErrDuplicate.
func (s *Store) Insert(ctx context.Context, item *Item) (*Item, error) {
	if item == nil {
		return nil, errors.New("item is nil")
	}
	if item.Fingerprint == "" {
		return nil, errors.New("fingerprint is required")
	}
	if item.StorageKey == "" {
		return nil, errors.New("storage key is required")
	}
	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO items (
            subject, group_name, caption, fingerprint, storage_key,
            source_message_id, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.Subject,
		item.Group,
		item.Caption,
		item.Fingerprint,
		item.StorageKey,
		nullableInt64(item.SourceMessageID),
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return nil, fmt.Errorf("insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches an item by identifier. Missing items return (nil, nil).
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// FindBySourceMessageID returns the item ingested from a feed message, or
// (nil, nil) when that message was never accepted.
func (s *Store) FindBySourceMessageID(ctx context.Context, messageID int64) (*Item, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+itemColumns+` FROM items WHERE source_message_id = ?`,
		messageID,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by source message: %w", err)
	}
	return item, nil
}

// Fingerprints returns the similarity-scan projection of every item.
func (s *Store) Fingerprints(ctx context.Context) ([]FingerprintRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, fingerprint, created_at FROM items WHERE fingerprint != '' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query fingerprints: %w", err)
	}
	defer rows.Close()

	var records []FingerprintRecord
	for rows.Next() {
		var (
			record     FingerprintRecord
			createdRaw string
		)
		if err := rows.Scan(&record.ID, &record.Fingerprint, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		if created, err := parseTimeString(createdRaw); err == nil {
			record.CreatedAt = created
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fingerprints: %w", err)
	}
	return records, nil
}

// List returns items newest first, filtered and paged by opts.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Item, error) {
	var (
		conditions []string
		args       []any
	)
	if opts.Subject != "" {
		conditions = append(conditions, "subject = ?")
		args = append(args, opts.Subject)
	}
	if opts.Group != "" {
		conditions = append(conditions, "group_name = ?")
		args = append(args, opts.Group)
	}
	if opts.Search != "" {
		pattern := "%" + opts.Search + "%"
		conditions = append(conditions, "(subject LIKE ? OR group_name LIKE ?)")
		args = append(args, pattern, pattern)
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// Count returns the total number of cataloged items.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

// Delete removes an item row and reports whether a row existed.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id            int64
		subject       string
		group         string
		caption       sql.NullString
		fingerprint   string
		storageKey    string
		sourceMessage sql.NullInt64
		createdRaw    string
	)
	if err := scanner.Scan(
		&id,
		&subject,
		&group,
		&caption,
		&fingerprint,
		&storageKey,
		&sourceMessage,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:          id,
		Subject:     subject,
		Group:       group,
		Caption:     caption.String,
		Fingerprint: fingerprint,
		StorageKey:  storageKey,
	}
	if sourceMessage.Valid {
		value := sourceMessage.Int64
		item.SourceMessageID = &value
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	return item, nil
}

func nullableInt64(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
