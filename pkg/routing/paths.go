package routing

import (
	"math"
	"slices"

	apperr "github.com/matzehuels/routesim/pkg/errors"
	"github.com/matzehuels/routesim/pkg/network"
)

// Infinity is the distance of a router that cannot be reached.
const Infinity = math.MaxInt

// ShortestPaths is the raw output of a solver, indexed by NodeID.
// Distances[v] is Infinity and Paths[v] is nil exactly when v is unreachable.
type ShortestPaths struct {
	Source    network.NodeID     `json:"source"`
	Distances []int              `json:"distances"`
	Paths     [][]network.NodeID `json:"paths"`
}

// Reachable reports whether v has a path from the source.
func (sp *ShortestPaths) Reachable(v network.NodeID) bool {
	return int(v) >= 0 && int(v) < len(sp.Paths) && sp.Paths[v] != nil
}

// newShortestPaths validates the inputs shared by both solvers and returns
// the initial state: distance 0 and path [source] at the source, Infinity
// and no path everywhere else.
func newShortestPaths(m network.Matrix, source network.NodeID) (*ShortestPaths, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	n := m.Size()
	if source < 0 || int(source) >= n {
		return nil, apperr.New(apperr.ErrCodeOutOfRange, "source %d outside [0, %d)", source, n)
	}

	sp := &ShortestPaths{
		Source:    source,
		Distances: make([]int, n),
		Paths:     make([][]network.NodeID, n),
	}
	for i := range sp.Distances {
		sp.Distances[i] = Infinity
	}
	sp.Distances[source] = 0
	sp.Paths[source] = []network.NodeID{source}
	return sp, nil
}

// relax records the route to v through u if it is strictly shorter.
// u must be reachable. A sum that would reach Infinity is never shorter.
func (sp *ShortestPaths) relax(u, v network.NodeID, weight int) {
	if weight >= Infinity-sp.Distances[u] {
		return
	}
	d := sp.Distances[u] + weight
	if d >= sp.Distances[v] {
		return
	}
	sp.Distances[v] = d
	sp.Paths[v] = append(slices.Clone(sp.Paths[u]), v)
}
