package storage

import (
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// PostgresStore is a Store backed by a single Postgres table, keyed on
// (namespace, key). Intended for deployments that run many pipeline
// invocations against a shared cache (e.g. multiple agencies on one
// scheduler) where a local SQLite file would need its own replication.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "opening postgres connection")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pinging postgres")
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS rove_artifacts (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			value BYTEA NOT NULL,
			PRIMARY KEY (namespace, key)
		)
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating rove_artifacts table")
	}

	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Put(namespace, key string, value []byte) error {
	_, err := p.db.Exec(
		`INSERT INTO rove_artifacts (namespace, key, value) VALUES ($1, $2, $3)
		 ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value`,
		namespace, key, value,
	)
	if err != nil {
		return errors.Wrapf(err, "writing artifact %s/%s", namespace, key)
	}
	return nil
}

func (p *PostgresStore) Get(namespace, key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(
		`SELECT value FROM rove_artifacts WHERE namespace = $1 AND key = $2`,
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

func (p *PostgresStore) Delete(namespace, key string) error {
	_, err := p.db.Exec(
		`DELETE FROM rove_artifacts WHERE namespace = $1 AND key = $2`,
		namespace, key,
	)
	if err != nil {
		return errors.Wrapf(err, "deleting artifact %s/%s", namespace, key)
	}
	return nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}
