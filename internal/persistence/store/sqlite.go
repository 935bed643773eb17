package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps one ledger blob per save slot. It backs the market's
// PersistentStore contract; everything above it treats the blob as opaque.
type SQLiteStore struct {
	db *sql.DB
}

func Open(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS saves (
			slot TEXT PRIMARY KEY,
			blob BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Get(slot string) ([]byte, bool, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT blob FROM saves WHERE slot = ?`, slot).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob, true, nil
}

func (s *SQLiteStore) Put(slot string, blob []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO saves (slot, blob, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`,
		slot, blob, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
