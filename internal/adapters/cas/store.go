// Package cas implements the package record store.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PackageStore = (*Store)(nil)

// Store implements ports.PackageStore using a file-per-fingerprint strategy
// below <root>/.kiln/packages.
type Store struct{}

// NewStore creates a new PackageStore.
func NewStore() *Store {
	return &Store{}
}

// Get retrieves the record for a fingerprint.
func (s *Store) Get(root, fingerprint string) (*domain.PackageRecord, error) {
	filename := s.getFilename(root, fingerprint)
	//nolint:gosec // Path is constructed from the output root and a hex fingerprint
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read package record"), "path", filename)
	}

	record, err := decode(filename, data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Put stores the record, replacing any record with the same fingerprint.
func (s *Store) Put(root string, record domain.PackageRecord) error {
	if record.Fingerprint == "" {
		return zerr.New("package record has no fingerprint")
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal package record")
	}

	filename := s.getFilename(root, record.Fingerprint)
	if err := os.MkdirAll(filepath.Dir(filename), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create package store"), "path", filepath.Dir(filename))
	}

	// Write through a temporary file so readers never see a torn record.
	tmp := filename + ".tmp"
	//nolint:gosec // Path is constructed from the output root and a hex fingerprint
	if err := os.WriteFile(tmp, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write package record"), "path", tmp)
	}
	if err := os.Rename(tmp, filename); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write package record"), "path", filename)
	}
	return nil
}

// List returns every stored record, sorted by platform then fingerprint.
func (s *Store) List(root string) ([]domain.PackageRecord, error) {
	dir := filepath.Join(root, domain.DefaultStorePath())
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read package store"), "path", dir)
	}

	var records []domain.PackageRecord
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		filename := filepath.Join(dir, e.Name())
		//nolint:gosec // Path comes from listing the store directory
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to read package record"), "path", filename)
		}
		record, err := decode(filename, data)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	slices.SortFunc(records, func(a, b domain.PackageRecord) int {
		if c := strings.Compare(a.Platform, b.Platform); c != 0 {
			return c
		}
		return strings.Compare(a.Fingerprint, b.Fingerprint)
	})
	return records, nil
}

func (s *Store) getFilename(root, fingerprint string) string {
	return filepath.Join(root, domain.DefaultStorePath(), filepath.Base(fingerprint)+".json")
}

func decode(filename string, data []byte) (domain.PackageRecord, error) {
	var record domain.PackageRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.PackageRecord{}, zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreCorrupted, err), "failed to unmarshal package record"), "path", filename)
	}
	return record, nil
}
