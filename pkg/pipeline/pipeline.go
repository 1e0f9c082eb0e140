// Package pipeline runs route computations for the CLI and the HTTP API.
//
// One compute action takes a snapshot of the network, looks the solver
// output up in the cache, solves on a miss and projects the result for the
// caller. Centralizing this keeps the CLI and the API consistent.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, hit, err := runner.Route(ctx, n, pipeline.Options{
//	    Algorithm: routing.DecentralizedAlgorithm,
//	    Source:    1,
//	})
//
// # Caching
//
// Cache keys combine the SHA-256 of the matrix snapshot with the algorithm
// and the source. Only raw shortest paths are cached; the table or single
// route is projected on every call, so one cache entry serves every
// destination. Cache failures are logged and never fail a computation.
package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	apperr "github.com/matzehuels/routesim/pkg/errors"
	"github.com/matzehuels/routesim/pkg/network"
	"github.com/matzehuels/routesim/pkg/routing"
)

// DefaultTTL is how long computed shortest paths stay cached. Entries are
// keyed by topology content, so a long TTL never serves stale routes.
const DefaultTTL = 7 * 24 * time.Hour

// keyTypeRoute labels route entries in cache hooks.
const keyTypeRoute = "route"

// =============================================================================
// Options - Computation Configuration
// =============================================================================

// Options describes one compute action.
// This struct supports JSON serialization for API requests.
type Options struct {
	Algorithm   routing.Algorithm `json:"algorithm,omitempty"`
	Source      network.NodeID    `json:"source"`
	Destination *network.NodeID   `json:"destination,omitempty"` // nil for the full table
	Refresh     bool              `json:"refresh,omitempty"`     // bypass cache lookup

	// Logger overrides the runner's logger for this computation.
	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults fills in the default algorithm and rejects
// unknown algorithms with INVALID_INPUT.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Algorithm == "" {
		o.Algorithm = routing.DefaultAlgorithm
	}
	if _, err := o.Algorithm.Solver(); err != nil {
		return err
	}
	return nil
}

// validateRouters checks that source and destination name current routers.
// Indices outside the matrix are left to the solver, which reports them as
// OUT_OF_RANGE.
func (o *Options) validateRouters(n *network.Network) error {
	check := func(role string, id network.NodeID) error {
		if id < 0 || int(id) >= n.Capacity() || n.HasNode(id) {
			return nil
		}
		return apperr.New(apperr.ErrCodeNotFound, "%s router %d does not exist", role, id)
	}
	if err := check("source", o.Source); err != nil {
		return err
	}
	if o.Destination != nil {
		return check("destination", *o.Destination)
	}
	return nil
}

// String summarizes the options for log output.
func (o Options) String() string {
	if o.Destination == nil {
		return fmt.Sprintf("%s from %d", o.Algorithm, o.Source)
	}
	return fmt.Sprintf("%s from %d to %d", o.Algorithm, o.Source, *o.Destination)
}
