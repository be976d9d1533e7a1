//go:build !unix

package fs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Locker = (*Locker)(nil)

// Locker guards a path with an exclusively created lock file.
type Locker struct{}

// NewLocker creates a new Locker.
func NewLocker() *Locker {
	return &Locker{}
}

// Lock creates path exclusively. It fails with domain.ErrLocked when the file
// already exists.
func (l *Locker) Lock(path string) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create lock directory"), "path", path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm) //nolint:gosec // lock path is derived from the output root
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrLocked, "package root is locked by another process"), "path", path)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to create lock file"), "path", path)
	}
	_ = f.Close()

	return func() error {
		return os.Remove(path)
	}, nil
}
