// Package graph provides the interchange format for router topologies.
//
// This package defines the wire format used for topology files, HTTP
// import/export and the topology store. It sits at the serialization boundary
// between pkg/network and external formats; use [FromNetwork]/[ToNetwork] to
// convert between them.
//
// # Format
//
// A [Document] carries the router list, both directions of every link and
// the full adjacency matrix:
//
//	{
//	  "nodes": [{"id": 0, "label": "Router 0"}, {"id": 1, "label": "Router 1"}],
//	  "edges": [
//	    {"id": "0->1", "source": 0, "target": 1, "weight": 4},
//	    {"id": "1->0", "source": 1, "target": 0, "weight": 4}
//	  ],
//	  "matrix": [[0, 4], [4, 0]]
//	}
//
// Files saved by the browser simulator use string ids and keep the weight in
// the edge "label". Both are accepted on read; output always uses the form
// above.
//
// # Import Checks
//
// The edge list is the source of truth. [ToNetwork] rebuilds the matrix from
// it and rejects documents whose matrix disagrees (INCONSISTENT) unless
// [ImportOptions].IgnoreMatrix is set. The matrix dimension, when present,
// becomes the network capacity.
//
// Common operations:
//
//	n, _ := graph.ReadNetworkFile("net.json", graph.ImportOptions{})  // File → Network
//	graph.WriteNetworkFile(n, "out.json")                              // Network → File
//	data, _ := graph.MarshalNetwork(n)                                 // Network → []byte
//	doc, _ := graph.UnmarshalDocument(data)                            // []byte → Document
//
// # Concurrency
//
// All functions are safe for concurrent use. A Document is a plain value and
// is not synchronized.
package graph
