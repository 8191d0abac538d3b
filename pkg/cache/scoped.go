package cache

// ScopedKeyer wraps a Keyer with a prefix. Servers sharing one Redis
// instance use it to keep the diagrams of different stores apart.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "subway:prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// DiagramKey generates a prefixed key for diagram caching.
func (k *ScopedKeyer) DiagramKey(lineHash string, opts DiagramKeyOpts) string {
	return k.prefix + k.inner.DiagramKey(lineHash, opts)
}
