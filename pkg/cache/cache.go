// Package cache provides byte caches for rendered line diagrams.
//
// Rendering a line through Graphviz is the most expensive operation in the
// application, and its output depends only on the line snapshot and the
// render options. Callers derive a key with a [Keyer] and store the rendered
// bytes in a [Cache]:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.DiagramKey(cache.Hash(snapshotJSON), cache.DiagramKeyOpts{Format: "svg"})
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    return data
//	}
//
// Implementations:
//   - [NullCache]: never stores anything
//   - [FileCache]: one file per entry, for the CLI
//   - [RedisCache]: shared cache for API servers
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// Get reports a miss with ok == false and a nil error. A ttl of zero means
// the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// DiagramKeyOpts are the render options that change a diagram's bytes.
type DiagramKeyOpts struct {
	Format    string `json:"format"`
	Direction string `json:"direction,omitempty"`
	Distances bool   `json:"distances,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// DiagramKey returns the key of a rendered diagram of the line snapshot
	// whose content hash is lineHash.
	DiagramKey(lineHash string, opts DiagramKeyOpts) string
}

// DefaultKeyer produces keys of the form "diagram:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DiagramKey hashes the line hash together with the render options.
func (DefaultKeyer) DiagramKey(lineHash string, opts DiagramKeyOpts) string {
	return diagramKey("diagram", lineHash, opts)
}
