// Package storage keeps named, saved router topologies.
//
// A [Record] wraps an interchange [graph.Document] with a stable id and
// timestamps. Three backends implement [Store]:
//   - file: one JSON file per topology, for the CLI (default)
//   - bolt: a single embedded bbolt database through bolthold
//   - mongo: a MongoDB collection, for servers sharing topologies
//
// Use [Open] to pick a backend from configuration:
//
//	store, err := storage.Open(ctx, storage.Options{Backend: "bolt", Dir: dir})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	rec, err := store.Save(ctx, "campus", graph.FromNetwork(n))
//
// Names are validated with errors.ValidateName, so they are safe as file
// names and keys. Loading or deleting a missing name returns NOT_FOUND.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperr "github.com/matzehuels/routesim/pkg/errors"
	"github.com/matzehuels/routesim/pkg/graph"
)

// Record is a saved topology.
type Record struct {
	Name      string         `json:"name" bson:"_id" boltholdKey:"Name"`
	ID        string         `json:"id" bson:"id"`
	Document  graph.Document `json:"document" bson:"document"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at"`
}

// NodeCount returns the number of routers in the saved topology.
func (r *Record) NodeCount() int { return len(r.Document.Nodes) }

// LinkCount returns the number of undirected links in the saved topology.
func (r *Record) LinkCount() int {
	seen := make(map[[2]int]bool)
	for _, e := range r.Document.Edges {
		a, b := int(e.Source), int(e.Target)
		seen[[2]int{min(a, b), max(a, b)}] = true
	}
	return len(seen)
}

// Store is the interface for topology storage backends.
type Store interface {
	// Save creates or replaces the topology called name. Replacing keeps
	// the record id and creation time.
	Save(ctx context.Context, name string, doc graph.Document) (*Record, error)

	// Load returns the topology called name, or NOT_FOUND.
	Load(ctx context.Context, name string) (*Record, error)

	// List returns all saved topologies ordered by name.
	List(ctx context.Context) ([]Record, error)

	// Delete removes the topology called name, or returns NOT_FOUND.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources.
	Close() error
}

// stamp builds the record written by Save. existing is nil for a new name.
// Times are truncated to milliseconds, the precision MongoDB keeps.
func stamp(existing *Record, name string, doc graph.Document) Record {
	now := time.Now().UTC().Truncate(time.Millisecond)
	rec := Record{
		Name:      name,
		ID:        uuid.NewString(),
		Document:  doc,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing != nil {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	}
	return rec
}

func notFound(name string) error {
	return apperr.New(apperr.ErrCodeNotFound, "topology %q not found", name)
}
