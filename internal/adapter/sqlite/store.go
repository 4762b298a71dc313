package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/vertextoedge/showcase-storage/internal/domain"
	"github.com/vertextoedge/showcase-storage/internal/port"
)

// Store implements port.TargetStore using SQLite
type Store struct {
	db *sql.DB
}

// Ensure Store implements port.TargetStore
var _ port.TargetStore = (*Store)(nil)

// Open opens a connection to the SQLite database
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}

	// Open database with WAL mode and busy timeout
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks database connectivity
func (s *Store) Ping() error {
	return s.db.Ping()
}

// migrate creates or updates the database schema
func (s *Store) migrate() error {
	migrations := []string{
		// position keeps the registry order the administrator created
		`CREATE TABLE IF NOT EXISTS storage_targets (
			position INTEGER NOT NULL,
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			max_gb REAL NOT NULL DEFAULT 0,
			priority INTEGER NOT NULL DEFAULT 0,
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_storage_targets_position ON storage_targets(position)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, migration)
		}
	}

	return nil
}

// Load returns all targets in registry order
func (s *Store) Load() ([]domain.StorageTarget, error) {
	rows, err := s.db.Query(`SELECT id, path, max_gb, priority, enabled FROM storage_targets ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query storage targets: %w", err)
	}
	defer rows.Close()

	targets := []domain.StorageTarget{}
	for rows.Next() {
		var t domain.StorageTarget
		if err := rows.Scan(&t.ID, &t.Path, &t.MaxGB, &t.Priority, &t.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan storage target: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// Save replaces the whole registry in one transaction
func (s *Store) Save(targets []domain.StorageTarget) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM storage_targets`); err != nil {
		return fmt.Errorf("failed to clear storage targets: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO storage_targets (position, id, path, max_gb, priority, enabled) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range targets {
		if _, err := stmt.Exec(i, t.ID, t.Path, t.MaxGB, t.Priority, t.Enabled); err != nil {
			return fmt.Errorf("failed to insert storage target %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}
