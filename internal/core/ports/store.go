package ports

import "go.trai.ch/kiln/internal/core/domain"

// PackageStore defines the interface for storing and retrieving package records.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type PackageStore interface {
	// Get retrieves the record for a fingerprint below the output root.
	// Returns nil, nil if not found.
	Get(root, fingerprint string) (*domain.PackageRecord, error)

	// Put stores the record below the output root.
	Put(root string, record domain.PackageRecord) error

	// List returns every record below the output root, sorted by platform.
	List(root string) ([]domain.PackageRecord, error)
}
