// Package storage
package storage

import (
	"context"
)

// Kind names a family of records. Ids are unique within a kind.
type Kind string

const (
	// KindUser holds one JSON document per user profile.
	KindUser Kind = "user"

	// KindSession holds one JSON document per conversation session.
	KindSession Kind = "session"
)

// Driver defines the interface for persisting and retrieving whole JSON
// records in a storage backend. Every write replaces the full record, so a
// backend only needs per-record atomicity.
type Driver interface {
	// Get returns the record body. Returns NotFoundError if the record does
	// not exist.
	Get(ctx context.Context, kind Kind, id string) ([]byte, error)

	// Put creates or overwrites a record.
	Put(ctx context.Context, kind Kind, id string, body []byte) error

	// Delete removes a record. Deleting an absent record is not an error.
	Delete(ctx context.Context, kind Kind, id string) error

	// List returns the ids of every record of the given kind.
	List(ctx context.Context, kind Kind) ([]string, error)

	// Close closes the store and releases any resources.
	Close() error
}
