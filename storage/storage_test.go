package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camsys-rove/rove/storage"
)

func stores(t *testing.T) map[string]storage.Store {
	sqliteStore, err := storage.NewSQLiteStore(storage.SQLiteConfig{})
	require.NoError(t, err)

	return map[string]storage.Store{
		"memory": storage.NewMemoryStore(),
		"sqlite": sqliteStore,
	}
}

func TestPutGet(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			err := s.Put("gtfs", "cta/2026-01", []byte("payload"))
			require.NoError(t, err)

			got, err := s.Get("gtfs", "cta/2026-01")
			require.NoError(t, err)
			assert.Equal(t, []byte("payload"), got)
		})
	}
}

func TestGetMissing(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			_, err := s.Get("gtfs", "does-not-exist")
			assert.ErrorIs(t, err, storage.ErrNotFound)
		})
	}
}

func TestPutOverwrites(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			require.NoError(t, s.Put("avl", "k", []byte("first")))
			require.NoError(t, s.Put("avl", "k", []byte("second")))

			got, err := s.Get("avl", "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("second"), got)
		})
	}
}

func TestDelete(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			require.NoError(t, s.Put("avl", "k", []byte("v")))
			require.NoError(t, s.Delete("avl", "k"))

			_, err := s.Get("avl", "k")
			assert.ErrorIs(t, err, storage.ErrNotFound)

			// Deleting an absent key is not an error.
			assert.NoError(t, s.Delete("avl", "k"))
		})
	}
}

func TestNamespacesAreIsolated(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			require.NoError(t, s.Put("gtfs", "k", []byte("gtfs-value")))
			require.NoError(t, s.Put("avl", "k", []byte("avl-value")))

			got, err := s.Get("gtfs", "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("gtfs-value"), got)

			got, err = s.Get("avl", "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("avl-value"), got)
		})
	}
}
