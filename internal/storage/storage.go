package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nikbrunner/bmgr/internal/config"
	"github.com/nikbrunner/bmgr/internal/exporter"
	"github.com/nikbrunner/bmgr/internal/importer"
	"github.com/nikbrunner/bmgr/internal/model"
)

// Local storage keys.
const (
	KeyFolderOpenState = "folderOpenState"
	KeySidebarWidth    = "sidebarWidth"
)

// Storage defines the interface for persisting the bookmark tree.
type Storage interface {
	// Load returns the full tree, rooted at the synthetic root.
	Load() (*model.TreeNode, error)
	Save(tree *model.TreeNode) error
}

// LocalStore persists small UI values between sessions.
type LocalStore interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
}

// JSONStorage implements Storage using a Chromium-format Bookmarks file.
type JSONStorage struct {
	path string
}

// NewJSONStorage creates a new JSONStorage with the given file path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the storage file path.
func (s *JSONStorage) Path() string {
	return s.path
}

// Load reads the tree from the JSON file.
// Returns the empty tree if the file doesn't exist.
func (s *JSONStorage) Load() (*model.TreeNode, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.NewEmptyTree(), nil
		}
		return nil, err
	}
	return importer.ParseChromiumBookmarks(bytes.NewReader(data))
}

// Save writes the tree to the JSON file.
// Creates the directory if it doesn't exist.
func (s *JSONStorage) Save(tree *model.TreeNode) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := exporter.ExportChromium(tree)
	if err != nil {
		return err
	}

	// Write to a sibling and rename so a crash never leaves half a file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Backend bundles the tree storage with the local store of one backend.
type Backend struct {
	Storage
	LocalStore
	close func() error
}

// Close releases the backend.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open opens the configured storage backend. The JSON backend keeps its
// local store in a sibling file.
func Open(cfg config.StorageConfig) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite, "":
		s, err := NewSQLiteStorage(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return &Backend{Storage: s, LocalStore: s, close: s.Close}, nil
	case config.BackendJSON:
		local := NewFileLocalStore(cfg.Path + ".local.json")
		return &Backend{Storage: NewJSONStorage(cfg.Path), LocalStore: local}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
