// Package filestore persists the key-value state in a single JSON file.
// It is the default backend for the CLI, playing the role browser storage plays
// for the web client.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	dirPerm  fs.FileMode = 0o700
	filePerm fs.FileMode = 0o600
)

// Store is a file-backed ports.KVStore.
// Every call re-reads the file so separate processes observe each other's writes.
// Writes go through a temp file and rename, so readers never see a torn file.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store at path. The file and its directory are created lazily on first write.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("filestore path is required")
	}
	return &Store{path: filepath.Clean(path)}, nil
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, errors.New("key cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	return s.mutate(ctx, func(values map[string]string) bool {
		if cur, ok := values[key]; ok && cur == value {
			return false
		}
		values[key] = value
		return true
	})
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	return s.mutate(ctx, func(values map[string]string) bool {
		if _, ok := values[key]; !ok {
			return false
		}
		delete(values, key)
		return true
	})
}

func (s *Store) mutate(ctx context.Context, fn func(map[string]string) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	if !fn(values) {
		return nil
	}
	return s.save(values)
}

func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if len(data) == 0 {
		return make(map[string]string), nil
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode state file %s: %w", s.path, err)
	}
	return values, nil
}

func (s *Store) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		return cleanupTemp(tmp, tmpName, fmt.Errorf("write temp state file: %w", err))
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return cleanupTemp(tmp, tmpName, fmt.Errorf("chmod temp state file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return cleanupTemp(nil, tmpName, fmt.Errorf("close temp state file: %w", err))
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return cleanupTemp(nil, tmpName, fmt.Errorf("replace state file: %w", err))
	}
	return nil
}

func cleanupTemp(f *os.File, name string, cause error) error {
	errs := []error{cause}
	if f != nil {
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close temp state file: %w", err))
		}
	}
	if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, fmt.Errorf("remove temp state file: %w", err))
	}
	return errors.Join(errs...)
}
