package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"scenecraft/internal/services"
)

// Operation names the command that produced an archive.
type Operation string

const (
	OperationBuild    Operation = "build"
	OperationBatch    Operation = "batch"
	OperationAutofill Operation = "autofill"
)

// Entry is one ledger row.
type Entry struct {
	ID        int64
	RequestID string
	Operation Operation
	Output    string
	Scenes    int
	Warnings  int
	CreatedAt time.Time
}

// timeLayout keeps a fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the ledger database.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open creates or opens the ledger at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "history", "open", "database path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrResource, "history", "open", "create database directory", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends entry and returns it with ID and CreatedAt filled.
func (s *Store) Record(ctx context.Context, entry Entry) (Entry, error) {
	ctx = ensureContext(ctx)
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`INSERT INTO entries (request_id, operation, output, scenes, warnings, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			entry.RequestID, string(entry.Operation), entry.Output, entry.Scenes, entry.Warnings,
			entry.CreatedAt.Format(timeLayout),
		)
		return execErr
	})
	if err != nil {
		return Entry{}, fmt.Errorf("insert history entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("history entry id: %w", err)
	}
	entry.ID = id
	return entry, nil
}

// List returns up to limit entries, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	ctx = ensureContext(ctx)
	query := `SELECT id, request_id, operation, output, scenes, warnings, created_at
		FROM entries ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			operation string
			created   string
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &operation, &e.Output, &e.Scenes, &e.Warnings, &created); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Operation = Operation(operation)
		if ts, parseErr := time.Parse(timeLayout, created); parseErr == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// Clear removes every entry and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, "DELETE FROM entries")
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}
