package cardcache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const (
	storeLocalized = "localized"
	storeResults   = "results"
	metaTable      = "table_version"
)

// SQLiteBackend stores the snapshot in a SQLite database.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the cache database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
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
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &SQLiteBackend{db: db, path: path}, nil
}

// Describe implements Backend.
func (b *SQLiteBackend) Describe() string {
	return "sqlite:" + b.path
}

// Load implements Backend.
func (b *SQLiteBackend) Load(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{
		Localized: make(map[string]string),
		Results:   make(map[string]Result),
	}

	err := b.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", metaTable).Scan(&snap.TableVersion)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("read table version: %w", err)
	}

	rows, err := b.db.QueryContext(ctx, "SELECT store, key, payload FROM entries")
	if err != nil {
		return Snapshot{}, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var store, key, payload string
		if err := rows.Scan(&store, &key, &payload); err != nil {
			return Snapshot{}, fmt.Errorf("scan entry: %w", err)
		}
		switch store {
		case storeLocalized:
			snap.Localized[key] = payload
		case storeResults:
			var r Result
			if err := json.Unmarshal([]byte(payload), &r); err != nil {
				return Snapshot{}, fmt.Errorf("decode result %q: %w", key, err)
			}
			snap.Results[key] = r
		}
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate entries: %w", err)
	}
	return snap, nil
}

// Save implements Backend. The stored snapshot is replaced in one transaction.
func (b *SQLiteBackend) Save(ctx context.Context, snap Snapshot) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("reset entries: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO entries (store, key, payload) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for key, name := range snap.Localized {
		if _, err := stmt.ExecContext(ctx, storeLocalized, key, name); err != nil {
			return fmt.Errorf("insert localized %q: %w", key, err)
		}
	}
	for key, r := range snap.Results {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode result %q: %w", key, err)
		}
		if _, err := stmt.ExecContext(ctx, storeResults, key, string(payload)); err != nil {
			return fmt.Errorf("insert result %q: %w", key, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		metaTable, snap.TableVersion,
	); err != nil {
		return fmt.Errorf("write table version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cache tx: %w", err)
	}
	return nil
}

// Remove implements Backend by emptying both tables.
func (b *SQLiteBackend) Remove(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	if _, err := b.db.ExecContext(ctx, "DELETE FROM meta"); err != nil {
		return fmt.Errorf("clear meta: %w", err)
	}
	return nil
}

// Close implements Backend.
func (b *SQLiteBackend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}
