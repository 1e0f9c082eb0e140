// Package routing computes shortest-path routing information over a router
// adjacency matrix.
//
// # Solvers
//
// Two single-source solvers share one result shape, [ShortestPaths]:
//
//   - [Centralized] is the link-state computation (Dijkstra). Every round
//     selects the unvisited router with the smallest distance; ties go to the
//     lowest index.
//   - [Decentralized] is the distance-vector computation (Bellman-Ford). It
//     runs exactly n-1 relaxation passes over every directed link.
//
// Both are pure functions of a matrix snapshot and a source. They never
// mutate the matrix and hold no state between calls. For any graph and
// source they produce the same distances; paths may differ only between
// equal-cost alternatives.
//
// # Projection
//
// [Table] turns a ShortestPaths into a routing table with unreachable routers
// removed. [Lookup] picks one destination and reports the "no path" state
// separately from errors. [Links] derives the directed link pairs a path
// uses, for highlighting.
//
// [Compute] chains a solver and a projection and is the entry point used by
// the pipeline, the CLI and the HTTP API:
//
//	dest := network.NodeID(4)
//	res, err := routing.Compute(routing.CentralizedAlgorithm, n.Snapshot(), 1, &dest)
//	if err != nil {
//	    return err
//	}
//	if res.NoPath {
//	    fmt.Println("no path exists")
//	}
//
// Unreachable is a result state, not an error. Errors are reserved for bad
// input: OUT_OF_RANGE for a source or destination outside the matrix and
// INVALID_INPUT for a malformed matrix.
package routing
