//go:build unix

package fs

import (
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"
)

var _ ports.Locker = (*Locker)(nil)

// Locker takes advisory, non-blocking exclusive locks on lock files.
type Locker struct{}

// NewLocker creates a new Locker.
func NewLocker() *Locker {
	return &Locker{}
}

// Lock acquires an exclusive flock on path, creating the file if needed.
// It fails with domain.ErrLocked when another process holds the lock.
func (l *Locker) Lock(path string) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create lock directory"), "path", path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, filePerm) //nolint:gosec // lock path is derived from the output root
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open lock file"), "path", path)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, zerr.With(zerr.Wrap(domain.ErrLocked, "package root is locked by another process"), "path", path)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to lock"), "path", path)
	}

	return func() error {
		defer f.Close() //nolint:errcheck // the lock is released by LOCK_UN
		return unix.Flock(int(f.Fd()), unix.LOCK_UN)
	}, nil
}
