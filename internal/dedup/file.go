package dedup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore mirrors the seen-set to a JSON file so identity survives
// process restarts. Every mark rewrites the file; the set is small (one
// entry per ever-accepted deal) and cycles run minutes apart.
type FileStore struct {
	path string
	mu   sync.Mutex
	data fileData
}

type fileData struct {
	SeenIDs []string `json:"seen_ids"`
	index   map[string]bool
}

func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		data: fileData{index: make(map[string]bool)},
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create seen-store dir: %w", err)
	}
	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load seen-store %s: %w", path, err)
	}
	return s, nil
}

var _ Store = (*FileStore)(nil)

func (s *FileStore) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return err
	}
	s.data.index = make(map[string]bool, len(s.data.SeenIDs))
	for _, id := range s.data.SeenIDs {
		s.data.index[id] = true
	}
	return nil
}

func (s *FileStore) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o644)
}

func (s *FileStore) Seen(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.index[id], nil
}

func (s *FileStore) MarkSeen(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.index[id] {
		return nil
	}
	return s.mark(id)
}

func (s *FileStore) MarkIfUnseen(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.index[id] {
		return ErrAlreadySeen
	}
	return s.mark(id)
}

// mark records id and persists. The in-memory mark is rolled back when the
// write fails, so an id is never held as seen without having reached disk.
// Callers hold s.mu.
func (s *FileStore) mark(id string) error {
	s.data.index[id] = true
	s.data.SeenIDs = append(s.data.SeenIDs, id)
	if err := s.save(); err != nil {
		delete(s.data.index, id)
		s.data.SeenIDs = s.data.SeenIDs[:len(s.data.SeenIDs)-1]
		return err
	}
	return nil
}

func (s *FileStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.index), nil
}

func (s *FileStore) Close() error { return nil }
