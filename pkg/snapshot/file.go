package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/reactor/internal/errors"
)

// FileStore writes snapshots into a directory.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store rooted at dir. The directory is created on
// the first Put.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Put implements Store. The file is written to a temporary name and
// renamed into place.
func (s *FileStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.New(errors.CodeSnapshotFailed).WithDetailf("create %s", filepath.Dir(path)).Wrap(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return "", errors.New(errors.CodeSnapshotFailed).WithDetailf("write %s", path).Wrap(err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errors.New(errors.CodeSnapshotFailed).WithDetailf("write %s", path).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", errors.New(errors.CodeSnapshotFailed).WithDetailf("write %s", path).Wrap(err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", errors.New(errors.CodeSnapshotFailed).WithDetailf("rename to %s", path).Wrap(err)
	}
	return path, nil
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeSnapshotFailed).WithDetailf("read %s", path).Wrap(err)
	}
	return data, nil
}

// path resolves name inside the store directory. Names that escape it
// are rejected.
func (s *FileStore) path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if name == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.New(errors.CodeSnapshotFailed).WithDetailf("invalid snapshot name %q", name)
	}
	return filepath.Join(s.dir, clean), nil
}
