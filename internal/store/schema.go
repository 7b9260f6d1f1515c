// Package store provides the SQL persistence for notes and users. SQLite is
// the default engine; MySQL is supported for shared deployments.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS notes (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title       TEXT NOT NULL,
	content     TEXT NOT NULL DEFAULT '',
	is_public   BOOLEAN NOT NULL DEFAULT 0,
	modified_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_modified ON notes(modified_at DESC);
CREATE INDEX IF NOT EXISTS idx_notes_user ON notes(user_id);
`

// MySQL does not accept several statements per Exec by default.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            VARCHAR(36) PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at    DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS notes (
		id          VARCHAR(36) PRIMARY KEY,
		user_id     VARCHAR(36) NOT NULL,
		title       TEXT NOT NULL,
		content     MEDIUMTEXT NOT NULL,
		is_public   BOOLEAN NOT NULL DEFAULT FALSE,
		modified_at DATETIME(6) NOT NULL,
		INDEX idx_notes_modified (modified_at),
		INDEX idx_notes_user (user_id),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
}

// Store wraps a sql.DB with note and user operations.
type Store struct {
	conn   *sql.DB
	driver string
}

// Open opens (or creates) the database and applies the schema.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if !strings.Contains(dsn, "?") {
			dsn += "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
		}
	case DriverMySQL:
		// clientFoundRows makes an unchanged row count as affected, which
		// ownership checks rely on.
		if !strings.Contains(dsn, "parseTime=") {
			dsn += sep(dsn) + "parseTime=true"
		}
		if !strings.Contains(dsn, "clientFoundRows=") {
			dsn += sep(dsn) + "clientFoundRows=true"
		}
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if driver == DriverMySQL {
		conn.SetConnMaxLifetime(3 * time.Minute)
	}

	s := &Store{conn: conn, driver: driver}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	if s.driver == DriverSQLite {
		if _, err := s.conn.Exec(sqliteSchemaSQL); err != nil {
			return fmt.Errorf("store: apply schema: %w", err)
		}
		return nil
	}
	for _, stmt := range mysqlSchema {
		if _, err := s.conn.Exec(stmt); err != nil {
			return fmt.Errorf("store: apply schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping() error {
	return s.conn.Ping()
}

func sep(dsn string) string {
	if strings.Contains(dsn, "?") {
		return "&"
	}
	return "?"
}
