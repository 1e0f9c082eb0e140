package cache

// Keyer builds cache keys.
type Keyer interface {
	// RouteKey is the key of the shortest paths computed by algorithm from
	// source over the matrix with the given fingerprint.
	RouteKey(matrixHash, algorithm string, source int) string
}

// DefaultKeyer produces unscoped keys of the form "route:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RouteKey implements Keyer.
func (DefaultKeyer) RouteKey(matrixHash, algorithm string, source int) string {
	return hashKey("route", matrixHash, algorithm, source)
}
