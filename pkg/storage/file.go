package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	apperr "github.com/matzehuels/routesim/pkg/errors"
	"github.com/matzehuels/routesim/pkg/graph"
)

// FileStore keeps each topology as a JSON file in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store rooted at baseDir.
// The directory is created if it doesn't exist.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("file store requires a directory")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) recordPath(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

func (s *FileStore) Save(ctx context.Context, name string, doc graph.Document) (*Record, error) {
	if err := apperr.ValidateName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read(name)
	if err != nil && !apperr.Is(err, apperr.ErrCodeNotFound) {
		return nil, err
	}
	rec := stamp(existing, name, doc)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	if err := os.WriteFile(s.recordPath(name), data, 0644); err != nil {
		return nil, fmt.Errorf("write record file: %w", err)
	}
	return &rec, nil
}

func (s *FileStore) Load(ctx context.Context, name string) (*Record, error) {
	if err := apperr.ValidateName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(name)
}

func (s *FileStore) read(name string) (*Record, error) {
	data, err := os.ReadFile(s.recordPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(name)
		}
		return nil, fmt.Errorf("read record file: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "parse record %q", name)
	}
	return &rec, nil
}

func (s *FileStore) List(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		rec, err := s.read(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue // skip foreign or damaged files
		}
		records = append(records, *rec)
	}
	slices.SortFunc(records, func(a, b Record) int { return strings.Compare(a.Name, b.Name) })
	return records, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := apperr.ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.recordPath(name)); err != nil {
		if os.IsNotExist(err) {
			return notFound(name)
		}
		return fmt.Errorf("remove record file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for record files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
