package network

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"

	apperr "github.com/matzehuels/routesim/pkg/errors"
)

// DefaultCapacity is the maximum router count used when none is configured.
// It is also the dimension of the adjacency matrix.
const DefaultCapacity = 15

// MaxWeight is the largest accepted link cost. A path over any matrix an int
// can index still sums to far less than math.MaxInt.
const MaxWeight = math.MaxInt32

// ValidateWeight returns INVALID_EDGE unless 0 < w <= MaxWeight.
func ValidateWeight(w int) error {
	if w <= 0 {
		return apperr.New(apperr.ErrCodeInvalidEdge, "link weight must be positive, got %d", w)
	}
	if w > MaxWeight {
		return apperr.New(apperr.ErrCodeInvalidEdge, "link weight %d exceeds %d", w, MaxWeight)
	}
	return nil
}

// NodeID identifies a router. Identifiers are dense-packed from 0.
type NodeID int

// Node is a router in the topology.
type Node struct {
	ID    NodeID
	Label string // Display label, "Router <id>" unless imported otherwise
}

// Edge is an undirected link between two routers with a positive cost.
// Networks report edges with Source < Target unless stated otherwise.
type Edge struct {
	Source NodeID
	Target NodeID
	Weight int
}

// DefaultLabel returns the display label assigned to a new router.
func DefaultLabel(id NodeID) string {
	return fmt.Sprintf("Router %d", id)
}

// pair is the canonical key of an undirected edge (a < b).
type pair struct{ a, b NodeID }

func newPair(a, b NodeID) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

// Network is the Graph Store: the router set, the link set and the
// adjacency matrix derived from it.
//
// The zero value is not usable - use New to create a Network.
type Network struct {
	mu       sync.RWMutex
	capacity int
	labels   map[NodeID]string // present routers
	edges    map[pair]int      // link weights keyed by unordered pair
	matrix   Matrix
}

// New creates an empty network that can hold up to capacity routers.
// A capacity of zero or less selects DefaultCapacity.
func New(capacity int) *Network {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Network{
		capacity: capacity,
		labels:   make(map[NodeID]string),
		edges:    make(map[pair]int),
		matrix:   NewMatrix(capacity),
	}
}

// Capacity returns the maximum router count (the matrix dimension).
func (n *Network) Capacity() int { return n.capacity }

// NodeCount returns the number of routers.
func (n *Network) NodeCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.labels)
}

// EdgeCount returns the number of undirected links.
func (n *Network) EdgeCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.edges)
}

// HasNode reports whether id is a current router.
func (n *Network) HasNode(id NodeID) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.labels[id]
	return ok
}

// AddNode adds a router with the smallest identifier not currently in use.
// Returns a CAPACITY_EXCEEDED error when the network is full. No links are
// created.
func (n *Network) AddNode() (NodeID, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.addNodeLocked()
}

// AddNodeWithID adds a router with an explicit identifier and label, as the
// importer does. An empty label selects DefaultLabel.
func (n *Network) AddNodeWithID(id NodeID, label string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !inRange(id, n.capacity) {
		return apperr.New(apperr.ErrCodeOutOfRange, "router %d outside capacity %d", id, n.capacity)
	}
	if _, exists := n.labels[id]; exists {
		return apperr.New(apperr.ErrCodeInvalidInput, "router %d already exists", id)
	}
	if len(n.labels) >= n.capacity {
		return apperr.New(apperr.ErrCodeCapacityExceeded, "network is full (%d routers)", n.capacity)
	}
	if label == "" {
		label = DefaultLabel(id)
	}
	n.labels[id] = label
	return nil
}

// AddLinkedNode adds a router and links it to peer in one step.
// If the link cannot be created the router is not added either.
func (n *Network) AddLinkedNode(peer NodeID, weight int) (NodeID, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.labels[peer]; !ok {
		return 0, apperr.New(apperr.ErrCodeNotFound, "router %d does not exist", peer)
	}
	if err := ValidateWeight(weight); err != nil {
		return 0, err
	}
	id, err := n.addNodeLocked()
	if err != nil {
		return 0, err
	}
	n.setEdgeLocked(id, peer, weight)
	return id, nil
}

func (n *Network) addNodeLocked() (NodeID, error) {
	if len(n.labels) >= n.capacity {
		return 0, apperr.New(apperr.ErrCodeCapacityExceeded, "network is full (%d routers)", n.capacity)
	}
	id := NodeID(0)
	for {
		if _, used := n.labels[id]; !used {
			break
		}
		id++
	}
	n.labels[id] = DefaultLabel(id)
	return id, nil
}

// RemoveNode removes the router and every link incident to it, zeroing its
// row and column of the matrix. Returns NOT_FOUND if id is not a router.
func (n *Network) RemoveNode(id NodeID) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.labels[id]; !ok {
		return apperr.New(apperr.ErrCodeNotFound, "router %d does not exist", id)
	}
	for p := range n.edges {
		if p.a == id || p.b == id {
			delete(n.edges, p)
		}
	}
	for i := 0; i < n.capacity; i++ {
		n.matrix[id][i] = 0
		n.matrix[i][id] = 0
	}
	delete(n.labels, id)
	return nil
}

// UpsertEdge creates the link a–b or replaces its weight.
// Returns INVALID_EDGE for a self-loop or a weight outside (0, MaxWeight] and NOT_FOUND
// if either endpoint is not a router. Both matrix cells change together.
func (n *Network) UpsertEdge(a, b NodeID, weight int) error {
	if a == b {
		return apperr.New(apperr.ErrCodeInvalidEdge, "cannot link router %d to itself", a)
	}
	if err := ValidateWeight(weight); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	for _, id := range []NodeID{a, b} {
		if _, ok := n.labels[id]; !ok {
			return apperr.New(apperr.ErrCodeNotFound, "router %d does not exist", id)
		}
	}
	n.setEdgeLocked(a, b, weight)
	return nil
}

func (n *Network) setEdgeLocked(a, b NodeID, weight int) {
	n.edges[newPair(a, b)] = weight
	n.matrix[a][b] = weight
	n.matrix[b][a] = weight
}

// RemoveEdge deletes the link a–b in both directions and reports whether one
// existed. Removing a missing link is a no-op.
func (n *Network) RemoveEdge(a, b NodeID) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	p := newPair(a, b)
	if _, ok := n.edges[p]; !ok {
		return false
	}
	delete(n.edges, p)
	n.matrix[a][b] = 0
	n.matrix[b][a] = 0
	return true
}

// Edge returns the weight of the link a–b, if any.
func (n *Network) Edge(a, b NodeID) (int, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	w, ok := n.edges[newPair(a, b)]
	return w, ok
}

// Snapshot returns a copy of the adjacency matrix for solver consumption.
func (n *Network) Snapshot() Matrix {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.matrix.Clone()
}

// Nodes returns all routers ordered by identifier.
func (n *Network) Nodes() []Node {
	n.mu.RLock()
	defer n.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(n.labels))
	nodes := make([]Node, len(ids))
	for i, id := range ids {
		nodes[i] = Node{ID: id, Label: n.labels[id]}
	}
	return nodes
}

// Edges returns every link once, with Source < Target, ordered by
// (Source, Target).
func (n *Network) Edges() []Edge {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.edgesLocked()
}

func (n *Network) edgesLocked() []Edge {
	edges := make([]Edge, 0, len(n.edges))
	for p, w := range n.edges {
		edges = append(edges, Edge{Source: p.a, Target: p.b, Weight: w})
	}
	slices.SortFunc(edges, compareEdges)
	return edges
}

// DirectedEdges returns both directed records of every link, ordered by
// (Source, Target). This is the interchange view of the edge set.
func (n *Network) DirectedEdges() []Edge {
	edges := n.Edges()
	out := make([]Edge, 0, 2*len(edges))
	for _, e := range edges {
		out = append(out, e, Edge{Source: e.Target, Target: e.Source, Weight: e.Weight})
	}
	slices.SortFunc(out, compareEdges)
	return out
}

// Neighbors returns the routers linked to id in ascending order.
func (n *Network) Neighbors(id NodeID) []NodeID {
	n.mu.RLock()
	defer n.mu.RUnlock()

	var out []NodeID
	for p := range n.edges {
		switch id {
		case p.a:
			out = append(out, p.b)
		case p.b:
			out = append(out, p.a)
		}
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy of the network.
func (n *Network) Clone() *Network {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return &Network{
		capacity: n.capacity,
		labels:   maps.Clone(n.labels),
		edges:    maps.Clone(n.edges),
		matrix:   n.matrix.Clone(),
	}
}

// Verify checks the symmetry and consistency invariants: the stored matrix
// must equal the matrix derived from the edge set, and every link must join
// two current routers. Returns an INCONSISTENT error naming the first
// violation.
func (n *Network) Verify() error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if !n.matrix.Symmetric() {
		return apperr.New(apperr.ErrCodeInconsistent, "adjacency matrix is not symmetric")
	}
	for p := range n.edges {
		for _, id := range []NodeID{p.a, p.b} {
			if _, ok := n.labels[id]; !ok {
				return apperr.New(apperr.ErrCodeInconsistent, "link %d-%d references missing router %d", p.a, p.b, id)
			}
		}
	}
	want := MatrixFromEdges(n.capacity, n.edgesLocked())
	for i := range want {
		for j := range want[i] {
			if want[i][j] != n.matrix[i][j] {
				return apperr.New(apperr.ErrCodeInconsistent,
					"matrix[%d][%d] = %d but the link set says %d", i, j, n.matrix[i][j], want[i][j])
			}
		}
	}
	return nil
}

func compareEdges(x, y Edge) int {
	if x.Source != y.Source {
		return int(x.Source - y.Source)
	}
	return int(x.Target - y.Target)
}
