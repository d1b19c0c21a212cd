// Package store provides SQLite persistence for world saves.
package store

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite connection that holds encoded world saves.
type Store struct {
	conn *sql.DB
}

// Record is one persisted save: its id, the seed/dimensions it was
// generated with (kept alongside the blob for listing without a full
// decode), and the raw encoded buffer.
type Record struct {
	ID        string
	Seed      uint32
	Width     int
	Height    int
	Blob      []byte
	CreatedAt string
}

// New opens (creating if necessary) the SQLite database at dbPath and
// runs any pending migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		applied, err := s.isMigrationApplied(m.id)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := s.runMigration(m); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.id, m.name, err)
		}
	}

	return nil
}

func (s *Store) isMigrationApplied(id int) (bool, error) {
	var count int
	err := s.conn.QueryRow("SELECT COUNT(*) FROM migrations WHERE id = ?", id).Scan(&count)
	return count > 0, err
}

func (s *Store) runMigration(m migration) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.sql); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO migrations (id, name) VALUES (?, ?)", m.id, m.name); err != nil {
		return err
	}
	return tx.Commit()
}

// Save persists an encoded buffer under a fresh id and returns it. The
// caller supplies seed/width/height purely for the listing columns;
// they are not re-derived from blob.
func (s *Store) Save(seed uint32, width, height int, blob []byte) (string, error) {
	id := uuid.NewString()

	_, err := s.conn.Exec(
		"INSERT INTO world_saves (id, seed, width, height, record_blob) VALUES (?, ?, ?, ?, ?)",
		id, seed, width, height, blob,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save world: %w", err)
	}

	log.Printf("store: saved world %s (%s)", id, humanize.Bytes(uint64(len(blob))))
	return id, nil
}

// Get loads a save by id.
func (s *Store) Get(id string) (*Record, error) {
	row := s.conn.QueryRow(
		"SELECT id, seed, width, height, record_blob, created_at FROM world_saves WHERE id = ?",
		id,
	)
	return scanRecord(row)
}

// Latest loads the most recently created save. Ordering by rowid
// rather than created_at avoids ties when two saves land in the same
// CURRENT_TIMESTAMP second.
func (s *Store) Latest() (*Record, error) {
	row := s.conn.QueryRow(
		"SELECT id, seed, width, height, record_blob, created_at FROM world_saves ORDER BY rowid DESC LIMIT 1",
	)
	return scanRecord(row)
}

func scanRecord(row *sql.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.Seed, &rec.Width, &rec.Height, &rec.Blob, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("world save not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load world save: %w", err)
	}
	return &rec, nil
}
