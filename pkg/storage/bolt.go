package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"

	apperr "github.com/matzehuels/routesim/pkg/errors"
	"github.com/matzehuels/routesim/pkg/graph"
)

// BoltFileName is the database file created inside the store directory.
const BoltFileName = "topologies.db"

// BoltStore keeps topologies in an embedded bbolt database, keyed by name.
type BoltStore struct {
	db *bolthold.Store
}

// NewBoltStore opens (or creates) the database in dir.
// bbolt takes an exclusive file lock, so only one process may open it.
func NewBoltStore(dir string) (*BoltStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("bolt store requires a directory")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := bolthold.Open(filepath.Join(dir, BoltFileName), 0o644, &bolthold.Options{
		Encoder: json.Marshal,
		Decoder: json.Unmarshal,
		Options: &bbolt.Options{
			Timeout:      5 * time.Second,
			NoGrowSync:   bbolt.DefaultOptions.NoGrowSync,
			FreelistType: bbolt.DefaultOptions.FreelistType,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open bolt store: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Save(ctx context.Context, name string, doc graph.Document) (*Record, error) {
	if err := apperr.ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec Record
	var existing *Record
	if err := s.db.Get(name, &rec); err == nil {
		existing = &rec
	} else if !errors.Is(err, bolthold.ErrNotFound) {
		return nil, fmt.Errorf("get %q: %w", name, err)
	}

	out := stamp(existing, name, doc)
	if err := s.db.Upsert(name, &out); err != nil {
		return nil, fmt.Errorf("upsert %q: %w", name, err)
	}
	return &out, nil
}

func (s *BoltStore) Load(ctx context.Context, name string) (*Record, error) {
	if err := apperr.ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec Record
	if err := s.db.Get(name, &rec); err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return nil, notFound(name)
		}
		return nil, fmt.Errorf("get %q: %w", name, err)
	}
	return &rec, nil
}

func (s *BoltStore) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var records []Record
	if err := s.db.Find(&records, nil); err != nil {
		return nil, fmt.Errorf("list topologies: %w", err)
	}
	slices.SortFunc(records, func(a, b Record) int { return strings.Compare(a.Name, b.Name) })
	return records, nil
}

func (s *BoltStore) Delete(ctx context.Context, name string) error {
	if err := apperr.ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Delete(name, Record{}); err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return notFound(name)
		}
		return fmt.Errorf("delete %q: %w", name, err)
	}
	return nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

var _ Store = (*BoltStore)(nil)
