// Package network holds the canonical router topology: the node set, the
// undirected weighted edge set and the dense adjacency matrix the solvers
// consume.
//
// # Consistency
//
// The edge set is the single source of truth. Every mutating method updates
// the matrix under the same lock as the edge set, so the two always encode the
// same graph:
//
//	m[i][j] == m[j][i]                       // symmetry
//	n.Snapshot() equals MatrixFromEdges(...) // consistency
//
// [Network.Verify] checks both and is used by the importer and by tests.
//
// # Identifiers
//
// Router identifiers are dense-packed non-negative integers. [Network.AddNode]
// assigns the smallest identifier not in use, so removing router 2 from
// {0,1,2,3} makes the next AddNode return 2 again. The capacity (maximum node
// count, 15 by default) is also the matrix dimension and is fixed at
// construction.
//
// # Errors
//
// Failing edits leave the network unchanged and return coded errors from
// pkg/errors: NOT_FOUND, INVALID_EDGE, CAPACITY_EXCEEDED, OUT_OF_RANGE and
// INVALID_INPUT. RemoveEdge on a missing edge is a no-op, not an error.
//
// # Concurrency
//
// A Network is safe for concurrent use. Readers receive copies, so a
// [Matrix] returned by Snapshot stays stable while the network keeps changing.
package network
