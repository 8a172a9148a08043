package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"spacetime-service/internal/ports"
	"strings"
)

const fileExt = ".json"

// FileStore keeps one JSON file per key in a directory.
// The directory is created on first write.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) path(key string) (string, error) {
	// Any name Scan can produce is a valid key; only path escapes are refused.
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("file store: invalid key %q", key)
	}
	return filepath.Join(s.Dir, key+fileExt), nil
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read %q: %w", p, err)
	}
	return b, nil
}

// Put writes through a temporary file and renames it into place so readers
// never observe a partial entry.
func (s *FileStore) Put(ctx context.Context, key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("file store: create dir %q: %w", s.Dir, err)
	}

	tmp, err := os.CreateTemp(s.Dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("file store: create temp: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("file store: write %q: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file store: close %q: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("file store: rename into %q: %w", p, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file store: remove %q: %w", p, err)
	}
	return nil
}

func (s *FileStore) Scan(ctx context.Context, fn func(key string, size int64) error) error {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("file store: list %q: %w", s.Dir, err)
	}

	for _, de := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}

		info, err := de.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("file store: stat %q: %w", name, err)
		}

		if err := fn(strings.TrimSuffix(name, fileExt), info.Size()); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) Describe() string { return "file:" + s.Dir }
