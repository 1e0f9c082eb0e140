// Package pkg holds the routesim libraries.
//
// # Overview
//
// routesim models a small network of routers joined by weighted,
// undirected links and computes shortest routes over it. The pkg directory
// is organized by concern:
//
//  1. [network] - Graph store: routers, links and the adjacency matrix
//  2. [routing] - Centralized (Dijkstra) and decentralized (Bellman-Ford)
//     solvers plus the result projector
//  3. [graph] - JSON interchange format for topology files and the API
//  4. [pipeline] - One compute action: snapshot, cache lookup, solve, project
//  5. [cache], [storage] - Result cache (file, Redis) and topology store
//     (file, bolt, MongoDB)
//  6. [api] - chi HTTP interface over a shared workspace
//  7. [config], [errors], [observability], [buildinfo] - Ambient support
//
// # Data Flow
//
//	topology file / API edits
//	         ↓
//	    [network] (edge set, matrix kept in lockstep)
//	         ↓  Snapshot
//	    [pipeline] → [cache] (keyed by matrix hash, algorithm, source)
//	         ↓  miss
//	    [routing] solver → ShortestPaths
//	         ↓
//	    [routing] Project → routing table or single route
//
// # Quick Start
//
//	n := network.Sample()
//	res, err := routing.Compute(routing.CentralizedAlgorithm, n.Snapshot(), 1, nil)
//	if err != nil {
//	    return err
//	}
//	for _, r := range res.Routes {
//	    fmt.Println(r.Destination, r.Cost, r.Path)
//	}
package pkg
