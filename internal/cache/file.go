package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/nguyentantai21042004/narration-flow/pkg/fsutil"
)

type fileStore struct {
	dir string
}

// NewFileStore returns a Store keeping artifacts as files under dir.
func NewFileStore(dir string) Store {
	return &fileStore{dir: dir}
}

func (s *fileStore) Path(key Key) string {
	return filepath.Join(s.dir, key.Name())
}

func (s *fileStore) Has(_ context.Context, key Key) (bool, error) {
	ok, err := fsutil.Exists(s.Path(key))
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", key.Name(), err)
	}
	return ok, nil
}

func (s *fileStore) Get(_ context.Context, key Key) ([]byte, bool, error) {
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key.Name(), err)
	}
	return data, true, nil
}

func (s *fileStore) Put(_ context.Context, key Key, data []byte) error {
	if err := fsutil.WriteFileAtomic(s.Path(key), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key.Name(), err)
	}
	return nil
}

// List returns the stage's artifacts ordered by frame index.
func (s *fileStore) List(_ context.Context, stage Stage) ([]Key, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}

	var keys []Key
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if k, ok := ParseName(e.Name(), stage); ok {
			keys = append(keys, k)
		}
	}
	sortKeys(keys)
	return keys, nil
}

func sortKeys(keys []Key) {
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].Index != keys[j].Index {
			return keys[i].Index < keys[j].Index
		}
		return keys[i].Slug < keys[j].Slug
	})
}
