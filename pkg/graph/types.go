package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	apperr "github.com/matzehuels/routesim/pkg/errors"
	"github.com/matzehuels/routesim/pkg/network"
)

// =============================================================================
// Document - Topology Interchange Format
// =============================================================================

// Document is the interchange format for router topologies.
// Used for topology files, API import/export and the topology store.
//
// All three parts describe the same graph. Edges carry both directions of
// every link, and Matrix is the full square adjacency matrix whose dimension
// is the network capacity.
type Document struct {
	Nodes  []Node  `json:"nodes" bson:"nodes"`
	Edges  []Edge  `json:"edges" bson:"edges"`
	Matrix [][]int `json:"matrix,omitempty" bson:"matrix,omitempty"`
}

// Node is a router record.
type Node struct {
	ID    network.NodeID `json:"id" bson:"id"`
	Label string         `json:"label,omitempty" bson:"label,omitempty"`
}

// Edge is one direction of a link.
type Edge struct {
	ID     string         `json:"id,omitempty" bson:"id,omitempty"` // "source->target"
	Source network.NodeID `json:"source" bson:"source"`
	Target network.NodeID `json:"target" bson:"target"`
	Weight int            `json:"weight" bson:"weight"`
}

// EdgeID returns the identifier of the directed edge a->b.
func EdgeID(a, b network.NodeID) string {
	return fmt.Sprintf("%d->%d", a, b)
}

// =============================================================================
// Legacy Decoding
// =============================================================================

// UnmarshalJSON accepts numeric or string ids. Files saved by the browser
// simulator store ids as strings and carry presentation fields (fill, icon)
// that are ignored.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    flexInt `json:"id"`
		Label string  `json:"label"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Node{ID: network.NodeID(raw.ID), Label: raw.Label}
	return nil
}

// UnmarshalJSON accepts numeric or string endpoints. When weight is absent
// the cost is read from label, where the browser simulator stored it.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     string   `json:"id"`
		Source flexInt  `json:"source"`
		Target flexInt  `json:"target"`
		Weight *flexInt `json:"weight"`
		Label  *flexInt `json:"label"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Edge{
		ID:     raw.ID,
		Source: network.NodeID(raw.Source),
		Target: network.NodeID(raw.Target),
	}
	switch {
	case raw.Weight != nil:
		e.Weight = int(*raw.Weight)
	case raw.Label != nil:
		e.Weight = int(*raw.Label)
	default:
		return fmt.Errorf("edge %q has no weight", raw.ID)
	}
	return nil
}

// flexInt decodes a JSON number or a string holding an integer.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("not an integer: %q", s)
		}
		*f = flexInt(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexInt(v)
	return nil
}

// =============================================================================
// Network ↔ Document Conversion
// =============================================================================

// ImportOptions controls how a Document becomes a Network.
type ImportOptions struct {
	// Capacity is used when the document has no matrix.
	// Zero selects network.DefaultCapacity.
	Capacity int

	// IgnoreMatrix skips the matrix comparison and rebuilds it from the edges.
	// The matrix dimension still sets the capacity.
	IgnoreMatrix bool
}

// FromNetwork converts a network to its interchange form.
// Nodes are ordered by id; edges appear in both directions ordered by
// (source, target).
func FromNetwork(n *network.Network) Document {
	nodes := n.Nodes()
	edges := n.DirectedEdges()

	doc := Document{
		Nodes:  make([]Node, len(nodes)),
		Edges:  make([]Edge, len(edges)),
		Matrix: n.Snapshot(),
	}
	for i, node := range nodes {
		doc.Nodes[i] = Node{ID: node.ID, Label: node.Label}
	}
	for i, e := range edges {
		doc.Edges[i] = Edge{
			ID:     EdgeID(e.Source, e.Target),
			Source: e.Source,
			Target: e.Target,
			Weight: e.Weight,
		}
	}
	return doc
}

// ToNetwork builds a network from a document.
//
// The edge list is authoritative and the matrix is rebuilt from it. A present
// matrix must agree with the edges unless opts.IgnoreMatrix is set. Errors:
//   - INVALID_FORMAT: the matrix is not square or has negative entries
//   - INVALID_EDGE: a self-loop or a weight outside (0, network.MaxWeight]
//   - INCONSISTENT: the two directions of a link disagree, an edge names a
//     missing router, or the matrix differs from the edges
//   - OUT_OF_RANGE / INVALID_INPUT: a router id outside the capacity or
//     listed twice
func ToNetwork(doc Document, opts ImportOptions) (*network.Network, error) {
	capacity := opts.Capacity
	if len(doc.Matrix) > 0 {
		if err := network.Matrix(doc.Matrix).Validate(); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "invalid matrix")
		}
		capacity = len(doc.Matrix)
	}

	n := network.New(capacity)
	for _, node := range doc.Nodes {
		if err := n.AddNodeWithID(node.ID, node.Label); err != nil {
			return nil, err
		}
	}

	weights, err := linkWeights(doc.Edges)
	if err != nil {
		return nil, err
	}
	for _, e := range weights {
		if err := n.UpsertEdge(e.Source, e.Target, e.Weight); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInconsistent, err, "edge %s", EdgeID(e.Source, e.Target))
		}
	}

	if len(doc.Matrix) > 0 && !opts.IgnoreMatrix {
		if err := compareMatrix(network.Matrix(doc.Matrix), n.Snapshot()); err != nil {
			return nil, err
		}
	}
	if err := n.Verify(); err != nil {
		return nil, err
	}
	return n, nil
}

// linkWeights folds directed edge records into one record per link, in
// first-seen order.
func linkWeights(edges []Edge) ([]network.Edge, error) {
	type key struct{ a, b network.NodeID }
	index := make(map[key]int)
	var out []network.Edge

	for _, e := range edges {
		if e.Source == e.Target {
			return nil, apperr.New(apperr.ErrCodeInvalidEdge, "edge %s is a self-loop", EdgeID(e.Source, e.Target))
		}
		if err := network.ValidateWeight(e.Weight); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidEdge, err, "edge %s", EdgeID(e.Source, e.Target))
		}
		k := key{min(e.Source, e.Target), max(e.Source, e.Target)}
		if i, ok := index[k]; ok {
			if out[i].Weight != e.Weight {
				return nil, apperr.New(apperr.ErrCodeInconsistent,
					"link %d-%d has weights %d and %d", k.a, k.b, out[i].Weight, e.Weight)
			}
			continue
		}
		index[k] = len(out)
		out = append(out, network.Edge{Source: k.a, Target: k.b, Weight: e.Weight})
	}
	return out, nil
}

func compareMatrix(stored, derived network.Matrix) error {
	for i := range derived {
		for j := range derived[i] {
			if stored[i][j] != derived[i][j] {
				return apperr.New(apperr.ErrCodeInconsistent,
					"matrix[%d][%d] = %d but the edges say %d", i, j, stored[i][j], derived[i][j])
			}
		}
	}
	return nil
}
