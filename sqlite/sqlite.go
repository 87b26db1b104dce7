// Package sqlite provides a SQLite-backed corpus cache.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db       *sql.DB
	path     string
	readOnly bool
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// NewReadOnlyDB creates a DB that opens an existing file without writing
// to it. The schema is not created.
func NewReadOnlyDB(path string) *DB {
	return &DB{path: path, readOnly: true}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	dsn := db.path
	if db.readOnly {
		dsn = (&url.URL{Scheme: "file", Path: db.path, RawQuery: "mode=ro"}).String()
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set busy timeout to wait 5 seconds before failing on lock contention.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	if db.readOnly {
		// Reading the schema fails fast on files that are not databases.
		var n int
		if err := conn.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&n); err != nil {
			conn.Close()
			return fmt.Errorf("failed to read schema: %w", err)
		}
		return nil
	}

	// The file is renamed into place once written, so it must not keep
	// -wal or -shm sidecars.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = DELETE"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to set journal mode: %w", err)
		}
	}

	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, opts)
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS qa_pairs (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			ordinal INTEGER NOT NULL,
			id TEXT NOT NULL,
			question TEXT NOT NULL DEFAULT '',
			answer TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (session_id, ordinal)
		);

		CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS questions (
			category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			text TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			session_id TEXT NOT NULL DEFAULT '',
			answer TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (category_id, position)
		);

		CREATE TABLE IF NOT EXISTS sections (
			key TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS pages (
			section_key TEXT NOT NULL REFERENCES sections(key) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			url TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (section_key, position)
		);

		CREATE TABLE IF NOT EXISTS content_items (
			section_key TEXT NOT NULL,
			page_position INTEGER NOT NULL,
			position INTEGER NOT NULL,
			kind INTEGER NOT NULL,
			text TEXT NOT NULL DEFAULT '',
			tag TEXT NOT NULL DEFAULT '',
			link_text TEXT NOT NULL DEFAULT '',
			link_url TEXT NOT NULL DEFAULT '',
			link_preview TEXT NOT NULL DEFAULT '',
			link_pdf INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (section_key, page_position, position),
			FOREIGN KEY (section_key, page_position) REFERENCES pages(section_key, position) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_questions_session_id ON questions(session_id);
	`

	_, err := db.db.Exec(schema)
	return err
}
