package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/spf13/afero"
)

// LocalStore keeps blobs on a filesystem, usually an afero.BasePathFs rooted
// at the media directory.
type LocalStore struct {
	fs      afero.Fs
	baseURL string
}

// NewLocalStore roots a store at dir on the OS filesystem.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob root %s: %w", dir, err)
	}
	return NewLocalStoreFs(afero.NewBasePathFs(osFs, dir), baseURL), nil
}

// NewLocalStoreFs wraps an existing afero filesystem.
func NewLocalStoreFs(fsys afero.Fs, baseURL string) *LocalStore {
	return &LocalStore{fs: fsys, baseURL: baseURL}
}

// Fs exposes the underlying filesystem, used to serve media over HTTP.
func (s *LocalStore) Fs() afero.Fs {
	return s.fs
}

func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) error {
	name, err := CleanKey(key)
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(path.Dir(name), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}

	f, err := s.fs.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create blob %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		s.fs.Remove(name)
		return fmt.Errorf("failed to write blob %s: %w", name, err)
	}
	return f.Close()
}

func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	name, err := CleanKey(key)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotExist)
	}
	return data, err
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	name, err := CleanKey(key)
	if err != nil {
		return err
	}

	if err := s.fs.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete blob %s: %w", name, err)
	}
	return nil
}

func (s *LocalStore) Exists(ctx context.Context, key string) (bool, error) {
	name, err := CleanKey(key)
	if err != nil {
		return false, err
	}
	return afero.Exists(s.fs, name)
}

func (s *LocalStore) URL(key string) string {
	name, err := CleanKey(key)
	if err != nil {
		return ""
	}
	return joinURL(s.baseURL, name)
}
