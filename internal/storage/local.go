package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNotRegular = errors.New("not a regular file")

// LocalStorage reads template and definition files below a base directory.
// Every call goes back to disk; nothing is cached between calls.
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{basePath: basePath}
}

// BasePath returns the directory all relative paths are resolved against.
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// Path joins elem onto the base directory.
func (s *LocalStorage) Path(elem ...string) string {
	return filepath.Join(append([]string{s.basePath}, elem...)...)
}

// ReadRegular returns the contents of a regular, readable file. Symlinks are
// followed; directories and devices return ErrNotRegular.
func (s *LocalStorage) ReadRegular(_ context.Context, elem ...string) ([]byte, error) {
	path := s.Path(elem...)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotRegular)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// DirExists reports whether subdir is an existing directory.
func (s *LocalStorage) DirExists(_ context.Context, subdir string) (bool, error) {
	info, err := os.Stat(s.Path(subdir))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat dir: %w", err)
	}
	return info.IsDir(), nil
}

// List returns the names of regular files in subdir ending in suffix, sorted.
// The listing is not recursive.
func (s *LocalStorage) List(_ context.Context, subdir, suffix string) ([]string, error) {
	dir := s.Path(subdir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
