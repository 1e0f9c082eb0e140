package routing

import "github.com/matzehuels/routesim/pkg/network"

// Centralized computes shortest paths from source with Dijkstra's algorithm.
//
// The minimum-selection step breaks ties by the lowest index: the scan runs
// left to right and only a strictly smaller distance replaces the current
// candidate. Once every remaining router is unreachable the remaining rounds
// do nothing.
//
// Returns OUT_OF_RANGE if source is outside the matrix and INVALID_INPUT if
// the matrix is not square or holds a negative weight.
func Centralized(m network.Matrix, source network.NodeID) (*ShortestPaths, error) {
	sp, err := newShortestPaths(m, source)
	if err != nil {
		return nil, err
	}

	n := m.Size()
	visited := make([]bool, n)
	for round := 0; round < n-1; round++ {
		u, ok := closestUnvisited(sp.Distances, visited)
		if !ok {
			break
		}
		visited[u] = true

		for v := range n {
			if visited[v] || m[u][v] == 0 {
				continue
			}
			sp.relax(network.NodeID(u), network.NodeID(v), m[u][v])
		}
	}
	return sp, nil
}

// closestUnvisited returns the unvisited index with the smallest finite
// distance, preferring the lowest index among equals.
func closestUnvisited(dist []int, visited []bool) (int, bool) {
	best, bestDist := -1, Infinity
	for i, d := range dist {
		if !visited[i] && d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}
