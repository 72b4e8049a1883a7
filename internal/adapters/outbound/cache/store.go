package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openkraft/codegate/internal/domain"
)

// Store is a file-based implementation of domain.ResultCache.
type Store struct{}

// New creates a new file-based cache store.
func New() *Store {
	return &Store{}
}

// Load reads a project cache from disk. Returns (nil, nil) if no cache exists.
func (s *Store) Load(projectPath string) (*domain.FileCache, error) {
	data, err := os.ReadFile(cachePath(projectPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // no cache is not an error
		}
		return nil, err
	}

	var cache domain.FileCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", cachePath(projectPath), err)
	}
	return &cache, nil
}

// Save writes a project cache to disk, creating directories as needed.
// The file is replaced atomically so a concurrent Load never sees a
// partial write.
func (s *Store) Save(projectPath string, cache *domain.FileCache) error {
	if err := os.MkdirAll(cacheDir(projectPath), 0755); err != nil {
		return err
	}

	data, err := json.Marshal(cache)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(cacheDir(projectPath), "files-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), cachePath(projectPath))
}

// Invalidate removes the cache file for the given project path.
func (s *Store) Invalidate(projectPath string) error {
	if err := os.Remove(cachePath(projectPath)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func cacheDir(projectPath string) string {
	return filepath.Join(projectPath, ".codegate", "cache")
}

func cachePath(projectPath string) string {
	return filepath.Join(cacheDir(projectPath), "files.json")
}
