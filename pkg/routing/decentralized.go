package routing

import "github.com/matzehuels/routesim/pkg/network"

// Decentralized computes shortest paths from source with the Bellman-Ford
// relaxation used by distance-vector routing.
//
// It runs exactly n-1 passes. Each pass visits every directed link (u, v)
// with m[u][v] != 0, rows first then columns, and keeps a route only when it
// is strictly shorter. Routers that are still unreachable never relax their
// neighbors. Weights are non-negative, so there is no negative-cycle pass.
//
// Errors are the same as for Centralized.
func Decentralized(m network.Matrix, source network.NodeID) (*ShortestPaths, error) {
	sp, err := newShortestPaths(m, source)
	if err != nil {
		return nil, err
	}

	n := m.Size()
	for pass := 0; pass < n-1; pass++ {
		for u := range n {
			if sp.Distances[u] == Infinity {
				continue
			}
			for v := range n {
				if m[u][v] == 0 {
					continue
				}
				sp.relax(network.NodeID(u), network.NodeID(v), m[u][v])
			}
		}
	}
	return sp, nil
}
