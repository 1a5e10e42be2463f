// Package store is the document store the migrated catalog lives in.
// Documents are keyed by the legacy numeric id (string form) inside a
// named collection; writes are accumulated into batches and flushed
// synchronously.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by GetByID when no document has the id.
var ErrNotFound = errors.New("store: document not found")

// BatchGetChunk is the documented per-call id limit of the batch read
// endpoint; BatchGet implementations chunk transparently.
const BatchGetChunk = 10

// Doc is a stored document with its id.
type Doc struct {
	ID   string
	Data json.RawMessage
}

// Store gives access to logical collections ("products", "courses",
// "tips").
type Store interface {
	Collection(name string) Collection
	Close() error
}

// Collection is id-keyed CRUD over one logical collection.
type Collection interface {
	// GetByID returns the document or ErrNotFound.
	GetByID(ctx context.Context, id string) (json.RawMessage, error)

	// BatchGet returns the found subset of ids; missing ids are simply
	// absent from the result, never an error.
	BatchGet(ctx context.Context, ids []string) (map[string]json.RawMessage, error)

	// Query returns documents whose top-level field equals value, in a
	// deterministic (id) order.
	Query(ctx context.Context, field string, value string) ([]Doc, error)

	// Batch starts an empty write batch for this collection.
	Batch() WriteBatch
}

// WriteBatch accumulates create-or-update writes. Flush commits them
// synchronously; a non-nil error means none of the still-queued writes
// committed (earlier flushes stay committed).
type WriteBatch interface {
	Set(id string, doc any) error
	Len() int
	Flush(ctx context.Context) error
}

// Open opens a store by driver name: "sqlite" (dsn = file path) or
// "postgres" (dsn = connection string).
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite":
		return OpenSQLite(dsn)
	case "postgres":
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", driver)
	}
}

// chunkIDs splits ids into slices of at most BatchGetChunk.
func chunkIDs(ids []string) [][]string {
	var out [][]string
	for len(ids) > BatchGetChunk {
		out = append(out, ids[:BatchGetChunk])
		ids = ids[BatchGetChunk:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

// marshalDoc serializes a document for storage.
func marshalDoc(doc any) (json.RawMessage, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("store: marshal document: %w", err)
	}
	return b, nil
}
