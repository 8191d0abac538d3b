// Package store persists transit lines.
//
// Every backend stores the [snapshot.Line] form of a line, so a line read
// back from any backend is rebuilt and validated by [snapshot.Line.ToLine].
// Backends:
//   - [MemoryStore]: process-local, for tests and ephemeral servers
//   - [FileStore]: one JSON file per line, for the CLI
//   - [SQLiteStore]: embedded SQL database
//   - [PostgresStore]: shared SQL database for API deployments
//   - [RedisStore]: key-value storage with a set index
//   - [MongoStore]: one document per line
//
// Use [Open] to pick a backend from a URL.
package store

import (
	"context"
	"errors"

	"github.com/matzehuels/subway/pkg/line"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a line does not exist.
	ErrNotFound = errors.New("line not found")

	// ErrUnsupportedURL is returned by Open for an unknown URL scheme.
	ErrUnsupportedURL = errors.New("unsupported store url")
)

// Store is the interface for line storage backends.
//
// Implementations are safe for concurrent use. They do not serialize
// read-modify-write cycles across calls; callers that mutate lines hold
// their own per-line lock (see pkg/service).
type Store interface {
	// Get loads a line. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id line.LineID) (*line.Line, error)

	// Put creates or replaces a line.
	Put(ctx context.Context, l *line.Line) error

	// Delete removes a line. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id line.LineID) error

	// List returns all lines ordered by ID.
	List(ctx context.Context) ([]*line.Line, error)

	// Close releases backend resources.
	Close() error
}
