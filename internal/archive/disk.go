package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DirStore keeps document files in a single directory on disk.
type DirStore struct {
	dir string
}

func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	return &DirStore{dir: dir}, nil
}

func (d *DirStore) Write(name string, data []byte) error {
	return os.WriteFile(filepath.Join(d.dir, filepath.Base(name)), data, 0o644)
}

func (d *DirStore) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(d.dir, filepath.Base(name)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return f, nil
}
