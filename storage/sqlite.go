package storage

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// SQLiteConfig configures an on-disk or in-memory SQLite artifact cache.
type SQLiteConfig struct {
	// OnDisk, if true, persists to a file under Directory. Otherwise an
	// ephemeral in-memory database is used.
	OnDisk bool

	// Directory holding the sqlite file, when OnDisk is set.
	Directory string
}

// SQLiteStore is a Store backed by a single SQLite table, keyed on
// (namespace, key).
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(config SQLiteConfig) (*SQLiteStore, error) {
	dsn := "file::memory:?cache=shared"
	if config.OnDisk {
		if err := os.MkdirAll(config.Directory, 0755); err != nil {
			return nil, errors.Wrap(err, "creating storage directory")
		}
		dsn = filepath.Join(config.Directory, "rove_cache.db")
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite database")
	}

	if !config.OnDisk {
		db.SetMaxOpenConns(1)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS artifacts (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			value BLOB NOT NULL,
			PRIMARY KEY (namespace, key)
		)
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating artifacts table")
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(namespace, key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO artifacts (namespace, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value`,
		namespace, key, value,
	)
	if err != nil {
		return errors.Wrapf(err, "writing artifact %s/%s", namespace, key)
	}
	return nil
}

func (s *SQLiteStore) Get(namespace, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(
		`SELECT value FROM artifacts WHERE namespace = ? AND key = ?`,
		namespace, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading artifact %s/%s", namespace, key)
	}
	return value, nil
}

func (s *SQLiteStore) Delete(namespace, key string) error {
	_, err := s.db.Exec(
		`DELETE FROM artifacts WHERE namespace = ? AND key = ?`,
		namespace, key,
	)
	if err != nil {
		return errors.Wrapf(err, "deleting artifact %s/%s", namespace, key)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
