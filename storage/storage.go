// Package storage provides a small artifact cache used between pipeline
// stages: parsed GTFS tables, normalized AVL batches, and the final
// aggregated result can all be stashed under a namespace/key pair and
// retrieved on a later run without re-parsing or re-fetching.
//
// This is deliberately not a queryable relational store. ROVE's pipeline
// runs front-to-back in a single pass; nothing downstream issues ad-hoc
// queries against stored GTFS tables, so there is no reader interface to
// match one.
package storage

import "errors"

// ErrNotFound is returned by Get when no value exists for a key.
var ErrNotFound = errors.New("storage: key not found")

// Store is a namespaced blob cache. Namespaces group related keys (e.g.
// "gtfs", "avl", "result") so backends can apply per-namespace retention
// or expiry without the caller needing to encode that into the key.
type Store interface {
	// Put writes value under (namespace, key), replacing any prior value.
	Put(namespace, key string, value []byte) error

	// Get returns the value stored under (namespace, key). Returns
	// ErrNotFound if absent.
	Get(namespace, key string) ([]byte, error)

	// Delete removes (namespace, key) if present. Deleting an absent key
	// is not an error.
	Delete(namespace, key string) error

	// Close releases any resources (open files, connection pools) held
	// by the backend.
	Close() error
}
