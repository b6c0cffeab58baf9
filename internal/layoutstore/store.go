package layoutstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// DefaultName is the layout saved on daemon shutdown and loaded on start.
const DefaultName = "last"

// ErrNotFound is returned when a named layout does not exist.
var ErrNotFound = errors.New("layout not found")

// Store persists named layouts.
type Store interface {
	Save(ctx context.Context, name string, l *Layout) error
	Load(ctx context.Context, name string) (*Layout, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

// Open returns the store for backend rooted at path. For json, path is a
// directory of <name>.json files; for sqlite, it is the database file.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendJSON:
		return NewFileStore(path), nil
	case BackendSQLite:
		return NewSQLiteStore(path), nil
	default:
		return nil, fmt.Errorf("unknown layout store backend %q", backend)
	}
}

// ValidateName rejects names that are empty or could escape the store.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("layout name is required")
	}
	if strings.Contains(name, string(os.PathSeparator)) || name != filepath.Base(name) {
		return fmt.Errorf("invalid layout name %q", name)
	}
	if name == "." || name == ".." || strings.Contains(name, "..") {
		return fmt.Errorf("invalid layout name %q", name)
	}
	return nil
}

// FileStore keeps each layout in <dir>/<name>.json.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store under dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name+".json"), nil
}

func (s *FileStore) Save(_ context.Context, name string, l *Layout) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	data, err := Encode(l)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create layout directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write layout %q: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write layout %q: %w", name, err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, name string) (*Layout, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("layout %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read layout %q: %w", name, err)
	}
	l, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("layout %q: %w", name, err)
	}
	return l, nil
}

func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		out = append(out, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(out)
	return out, nil
}

func (s *FileStore) Delete(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("layout %q: %w", name, ErrNotFound)
		}
		return fmt.Errorf("failed to delete layout %q: %w", name, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
