package storage

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	apperr "github.com/matzehuels/routesim/pkg/errors"
	"github.com/matzehuels/routesim/pkg/graph"
	"github.com/matzehuels/routesim/pkg/network"
)

// backends returns one fresh store per available backend.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	stores := make(map[string]Store)

	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	stores[BackendFile] = fs

	bs, err := NewBoltStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	stores[BackendBolt] = bs

	if uri := os.Getenv("ROUTESIM_TEST_MONGO_URI"); uri != "" {
		ctx := context.Background()
		ms, err := NewMongoStore(ctx, MongoOptions{URI: uri, Database: "routesim_test", Collection: "t_" + uuid.NewString()[:8]})
		if err != nil {
			t.Fatalf("NewMongoStore: %v", err)
		}
		t.Cleanup(func() { _ = ms.Drop(context.Background()) })
		stores[BackendMongo] = ms
	}

	for _, s := range stores {
		t.Cleanup(func() { _ = s.Close() })
	}
	return stores
}

func TestStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	doc := graph.FromNetwork(network.Sample())

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec, err := s.Save(ctx, "campus", doc)
			if err != nil {
				t.Fatalf("Save: %v", err)
			}
			if _, err := uuid.Parse(rec.ID); err != nil {
				t.Errorf("record id %q is not a uuid", rec.ID)
			}

			got, err := s.Load(ctx, "campus")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.ID != rec.ID || got.Name != "campus" {
				t.Errorf("Load = %s/%s, want %s/campus", got.ID, got.Name, rec.ID)
			}
			if got.NodeCount() != 5 || got.LinkCount() != 7 {
				t.Errorf("counts = %d/%d, want 5/7", got.NodeCount(), got.LinkCount())
			}

			n, err := graph.ToNetwork(got.Document, graph.ImportOptions{})
			if err != nil {
				t.Fatalf("ToNetwork: %v", err)
			}
			if !n.Snapshot().Equal(network.Sample().Snapshot()) {
				t.Error("stored matrix differs from the saved one")
			}
		})
	}
}

func TestStoreSaveReplaces(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			first, err := s.Save(ctx, "lab", graph.FromNetwork(network.Sample()))
			if err != nil {
				t.Fatal(err)
			}
			time.Sleep(5 * time.Millisecond)

			smaller := network.Sample()
			_ = smaller.RemoveNode(4)
			second, err := s.Save(ctx, "lab", graph.FromNetwork(smaller))
			if err != nil {
				t.Fatal(err)
			}
			if second.ID != first.ID {
				t.Error("replacing a topology changed its id")
			}
			if !second.CreatedAt.Equal(first.CreatedAt) {
				t.Error("replacing a topology changed its creation time")
			}
			if !second.UpdatedAt.After(first.UpdatedAt) {
				t.Error("UpdatedAt not advanced")
			}

			got, _ := s.Load(ctx, "lab")
			if got.NodeCount() != 4 {
				t.Errorf("NodeCount = %d, want 4", got.NodeCount())
			}
		})
	}
}

func TestStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	doc := graph.FromNetwork(network.Sample())

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, n := range []string{"west", "east", "core"} {
				if _, err := s.Save(ctx, n, doc); err != nil {
					t.Fatal(err)
				}
			}

			records, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			var names []string
			for _, r := range records {
				names = append(names, r.Name)
			}
			if !slices.Equal(names, []string{"core", "east", "west"}) {
				t.Errorf("List names = %v", names)
			}

			if err := s.Delete(ctx, "east"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := s.Delete(ctx, "east"); !apperr.Is(err, apperr.ErrCodeNotFound) {
				t.Errorf("second Delete error = %v, want NOT_FOUND", err)
			}
			if _, err := s.Load(ctx, "east"); !apperr.Is(err, apperr.ErrCodeNotFound) {
				t.Errorf("Load deleted error = %v, want NOT_FOUND", err)
			}
		})
	}
}

func TestStoreRejectsBadNames(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, bad := range []string{"", "../etc/passwd", "a/b", ".hidden"} {
				if _, err := s.Save(ctx, bad, graph.Document{}); !apperr.Is(err, apperr.ErrCodeInvalidName) {
					t.Errorf("Save(%q) error = %v, want INVALID_NAME", bad, err)
				}
				if _, err := s.Load(ctx, bad); !apperr.Is(err, apperr.ErrCodeInvalidName) {
					t.Errorf("Load(%q) error = %v, want INVALID_NAME", bad, err)
				}
			}
		})
	}
}

func TestFileStoreSkipsForeignFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	_, _ = s.Save(ctx, "ok", graph.Document{})
	_ = os.WriteFile(filepath.Join(dir, "junk.json"), []byte("not json"), 0644)
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644)

	records, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Name != "ok" {
		t.Errorf("List = %v", records)
	}
	if _, err := s.Load(ctx, "junk"); !apperr.Is(err, apperr.ErrCodeInvalidFormat) {
		t.Errorf("Load(junk) error = %v, want INVALID_FORMAT", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		backend string
		want    string
		wantErr bool
	}{
		{"", "*storage.FileStore", false},
		{BackendFile, "*storage.FileStore", false},
		{BackendBolt, "*storage.BoltStore", false},
		{BackendMongo, "", true}, // no URI
		{"sqlite", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, err := Open(ctx, Options{Backend: tt.backend, Dir: t.TempDir()})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer s.Close()
			if got := typeName(s); got != tt.want {
				t.Errorf("Open type = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(s Store) string {
	switch s.(type) {
	case *FileStore:
		return "*storage.FileStore"
	case *BoltStore:
		return "*storage.BoltStore"
	case *MongoStore:
		return "*storage.MongoStore"
	}
	return "unknown"
}
