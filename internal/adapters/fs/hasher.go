package fs

import (
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"lukechampine.com/blake3"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes content checksums of package trees.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash returns the hex encoded 256-bit BLAKE3 digest of a file.
func (h *Hasher) ComputeFileHash(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := blake3.New(32, nil)
	if _, err := io.Copy(hasher, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Checksums hashes every regular file below root, keyed by its slash-separated
// path relative to root.
func (h *Hasher) Checksums(root string) (map[string]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to stat package root"), "path", root)
	}

	sums := make(map[string]string)
	for path, err := range h.walker.WalkFiles(root) {
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to walk package root"), "path", root)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to relativize path"), "path", path)
		}
		sum, err := h.ComputeFileHash(path)
		if err != nil {
			return nil, err
		}
		sums[filepath.ToSlash(rel)] = sum
	}
	return sums, nil
}
