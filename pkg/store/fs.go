package store

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/agentstation/designlib/pkg/constants"
	"github.com/agentstation/designlib/pkg/errors"
)

// FS keeps each key as one file in a flat directory of an afero filesystem.
// In-flight writes live in a hidden sibling directory so every name in dir
// is a key.
type FS struct {
	fs     afero.Fs
	dir    string
	tmpDir string
}

var (
	_ Store = (*FS)(nil)
	_ Sizer = (*FS)(nil)
)

// NewFS stores files in dir on fsys, creating dir when missing. Temporary
// files go to ".<base>.tmp" next to dir, so dir cannot be a filesystem root.
func NewFS(fsys afero.Fs, dir string) (*FS, error) {
	dir = path.Clean(filepath.ToSlash(dir))
	parent := path.Dir(dir)
	if parent == dir {
		return nil, errors.NewValidationError("dir", dir, "store directory needs a parent for temporary files")
	}
	tmpDir := path.Join(parent, "."+path.Base(dir)+".tmp")
	for _, d := range []string{dir, tmpDir} {
		if err := fsys.MkdirAll(d, constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create", d, err)
		}
	}
	return &FS{fs: fsys, dir: dir, tmpDir: tmpDir}, nil
}

// NewLocal stores files in a directory of the host filesystem.
func NewLocal(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.WrapIO("resolve", dir, err)
	}
	if err := os.MkdirAll(abs, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", abs, err)
	}
	return NewFS(afero.NewBasePathFs(afero.NewOsFs(), filepath.Dir(abs)), "/"+filepath.Base(abs))
}

// NewMemory returns an in-memory store.
func NewMemory() *FS {
	s, _ := NewFS(afero.NewMemMapFs(), "/files")
	return s
}

// Fs exposes the underlying filesystem.
func (s *FS) Fs() afero.Fs { return s.fs }

func (s *FS) path(key string) string {
	return path.Join(s.dir, key)
}

// Put writes to a temporary sibling and renames it over key.
func (s *FS) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp := path.Join(s.tmpDir, uuid.NewString())
	if err := afero.WriteFile(s.fs, tmp, data, constants.FilePermissions); err != nil {
		_ = s.fs.Remove(tmp)
		return errors.WrapIO("write", key, err)
	}
	if err := s.fs.Rename(tmp, s.path(key)); err != nil {
		_ = s.fs.Remove(tmp)
		return errors.WrapIO("rename", key, err)
	}
	return nil
}

// Get reads key.
func (s *FS) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("file", key)
		}
		return nil, errors.WrapIO("read", key, err)
	}
	return data, nil
}

// Remove deletes key; a missing key is ignored.
func (s *FS) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.WrapIO("delete", key, err)
	}
	return nil
}

// List returns the regular files in the store directory.
func (s *FS) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.WrapIO("list", s.dir, err)
	}
	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		keys = append(keys, info.Name())
	}
	sort.Strings(keys)
	return keys, nil
}

// Size returns the byte length of key.
func (s *FS) Size(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	info, err := s.fs.Stat(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errors.NewNotFoundError("file", key)
		}
		return 0, errors.WrapIO("stat", key, err)
	}
	return info.Size(), nil
}
