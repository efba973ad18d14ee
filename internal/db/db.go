// Package db provides the SQLite-backed catalog store.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection holding the game catalog.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens or creates a SQLite database at the given path. The driver
// is wrapped with OpenTelemetry instrumentation so store queries show up
// as spans.
func Open(ctx context.Context, path string) (*DB, error) {
	driverName, err := otelsql.Register("sqlite",
		otelsql.WithAttributes(semconv.DBSystemSqlite),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register driver: %w", err)
	}

	conn, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// migrate runs database migrations up to the current schema version.
func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var version int
	err := db.conn.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	if version < 1 {
		if err := db.migrateV1(ctx); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := db.migrateV2(ctx); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the core catalog schema: games, regions, tags and
// per-region price records.
func (db *DB) migrateV1(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY,  -- storefront app id, used verbatim
			title TEXT NOT NULL,
			edition TEXT,
			is_free INTEGER NOT NULL DEFAULT 0,
			required_age INTEGER,
			release_date TEXT,
			languages TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_games_title ON games(title);

		CREATE TABLE IF NOT EXISTS regions (
			code TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			currency TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tags (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_tags_name ON tags(name);

		CREATE TABLE IF NOT EXISTS game_tags (
			game_id INTEGER NOT NULL,
			tag_id INTEGER NOT NULL,
			relevance INTEGER,
			PRIMARY KEY (game_id, tag_id),
			FOREIGN KEY(game_id) REFERENCES games(id) ON DELETE CASCADE,
			FOREIGN KEY(tag_id) REFERENCES tags(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS price_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id INTEGER NOT NULL,
			region_code TEXT NOT NULL,
			original_price REAL,
			final_price REAL,
			discount_percent INTEGER,
			recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(game_id) REFERENCES games(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_price_records_game_id ON price_records(game_id);
		CREATE INDEX IF NOT EXISTS idx_price_records_region ON price_records(region_code);

		INSERT INTO schema_version (version) VALUES (1);
	`

	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute v1 migration: %w", err)
	}

	return nil
}

// migrateV2 adds developer and publisher tracking.
func (db *DB) migrateV2(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS developers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL
		);

		CREATE TABLE IF NOT EXISTS publishers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL
		);

		CREATE TABLE IF NOT EXISTS game_developers (
			developer_id INTEGER NOT NULL,
			game_id INTEGER NOT NULL,
			PRIMARY KEY (developer_id, game_id),
			FOREIGN KEY(developer_id) REFERENCES developers(id) ON DELETE CASCADE,
			FOREIGN KEY(game_id) REFERENCES games(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS game_publishers (
			publisher_id INTEGER NOT NULL,
			game_id INTEGER NOT NULL,
			PRIMARY KEY (publisher_id, game_id),
			FOREIGN KEY(publisher_id) REFERENCES publishers(id) ON DELETE CASCADE,
			FOREIGN KEY(game_id) REFERENCES games(id) ON DELETE CASCADE
		);

		INSERT INTO schema_version (version) VALUES (2);
	`

	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute v2 migration: %w", err)
	}

	return nil
}
