package routing

import (
	"fmt"
	"slices"

	apperr "github.com/matzehuels/routesim/pkg/errors"
	"github.com/matzehuels/routesim/pkg/network"
)

// Route is one row of a routing table.
type Route struct {
	Destination network.NodeID   `json:"destination"`
	Cost        int              `json:"cost"`
	Path        []network.NodeID `json:"path"`
}

// Table returns the routing table of sp: one Route per reachable router in
// node-index order, including the source itself at cost 0.
func Table(sp *ShortestPaths) []Route {
	routes := make([]Route, 0, len(sp.Paths))
	for v, path := range sp.Paths {
		if path == nil {
			continue
		}
		routes = append(routes, Route{
			Destination: network.NodeID(v),
			Cost:        sp.Distances[v],
			Path:        slices.Clone(path),
		})
	}
	return routes
}

// Lookup returns the route from the source of sp to dest. The boolean is
// false when dest is unreachable, which is a result and not an error; a
// lookup of the source itself succeeds with cost 0 and path [source].
// Returns OUT_OF_RANGE if dest is outside the matrix.
func Lookup(sp *ShortestPaths, dest network.NodeID) (Route, bool, error) {
	if dest < 0 || int(dest) >= len(sp.Paths) {
		return Route{}, false, apperr.New(apperr.ErrCodeOutOfRange,
			"destination %d outside [0, %d)", dest, len(sp.Paths))
	}
	if sp.Paths[dest] == nil {
		return Route{}, false, nil
	}
	return Route{
		Destination: dest,
		Cost:        sp.Distances[dest],
		Path:        slices.Clone(sp.Paths[dest]),
	}, true, nil
}

// Link is a directed pair of adjacent routers on a path.
type Link struct {
	From network.NodeID
	To   network.NodeID
}

// String renders the link as "from->to".
func (l Link) String() string {
	return fmt.Sprintf("%d->%d", l.From, l.To)
}

// MarshalText encodes the link in its String form.
func (l Link) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses the "from->to" form.
func (l *Link) UnmarshalText(text []byte) error {
	var from, to int
	if _, err := fmt.Sscanf(string(text), "%d->%d", &from, &to); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "parse link %q", text)
	}
	*l = Link{From: network.NodeID(from), To: network.NodeID(to)}
	return nil
}

// Links returns the directed links used by the given paths. Every hop
// contributes both directions, duplicates are dropped and first-seen order
// is kept.
func Links(paths ...[]network.NodeID) []Link {
	seen := make(map[Link]bool)
	var out []Link
	add := func(l Link) {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	for _, path := range paths {
		for i := 1; i < len(path); i++ {
			add(Link{From: path[i-1], To: path[i]})
			add(Link{From: path[i], To: path[i-1]})
		}
	}
	return out
}
