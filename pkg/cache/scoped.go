package cache

// ScopedKeyer wraps a Keyer with a prefix so that several workspaces can
// share one cache backend without seeing each other's entries.
//
// Example usage:
//
//	// Per-topology keys on a shared Redis
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "topology:backbone:")
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

// RouteKey generates a prefixed route key.
func (k *ScopedKeyer) RouteKey(matrixHash, algorithm string, source int) string {
	return k.prefix + k.inner.RouteKey(matrixHash, algorithm, source)
}
