package routing

import (
	"slices"

	"github.com/matzehuels/routesim/pkg/network"
)

// Result is the outcome of one compute action.
//
// With a nil Destination it is a full routing table. Otherwise Routes holds
// at most one entry, and NoPath is set when the destination is unreachable.
type Result struct {
	Algorithm   Algorithm       `json:"algorithm"`
	Source      network.NodeID  `json:"source"`
	Destination *network.NodeID `json:"destination,omitempty"`
	Routes      []Route         `json:"routes"`
	NoPath      bool            `json:"no_path"`
	Links       []Link          `json:"links"`

	// Nodes lists the routers on the route of a destination result, in path
	// order. It is empty for tables and for NoPath results.
	Nodes []network.NodeID `json:"nodes,omitempty"`
}

// Compute runs the solver for alg on m from source and projects the output.
// A nil dest yields the full table.
func Compute(alg Algorithm, m network.Matrix, source network.NodeID, dest *network.NodeID) (*Result, error) {
	solve, err := alg.Solver()
	if err != nil {
		return nil, err
	}
	sp, err := solve(m, source)
	if err != nil {
		return nil, err
	}
	return Project(alg, sp, dest)
}

// Project shapes solver output into a Result without solving again. The
// pipeline uses it on cached ShortestPaths.
func Project(alg Algorithm, sp *ShortestPaths, dest *network.NodeID) (*Result, error) {
	res := &Result{
		Algorithm: alg,
		Source:    sp.Source,
		Routes:    []Route{},
	}

	if dest == nil {
		res.Routes = Table(sp)
	} else {
		d := *dest
		res.Destination = &d
		route, ok, err := Lookup(sp, d)
		if err != nil {
			return nil, err
		}
		if ok {
			res.Routes = append(res.Routes, route)
			res.Nodes = slices.Clone(route.Path)
		} else {
			res.NoPath = true
		}
	}

	paths := make([][]network.NodeID, len(res.Routes))
	for i, r := range res.Routes {
		paths[i] = r.Path
	}
	res.Links = Links(paths...)
	if res.Links == nil {
		res.Links = []Link{}
	}
	return res, nil
}

// Route returns the single route of a destination result.
func (r *Result) Route() (Route, bool) {
	if r.Destination == nil || r.NoPath || len(r.Routes) == 0 {
		return Route{}, false
	}
	return r.Routes[0], true
}
