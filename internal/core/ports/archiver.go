package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// Archiver packs a package tree into a single compressed file.
//
//go:generate go run go.uber.org/mock/mockgen -source=archiver.go -destination=mocks/mock_archiver.go -package=mocks
type Archiver interface {
	// Archive writes root as a tarball next to it and returns the archive path.
	Archive(ctx context.Context, root string, format domain.ArchiveFormat) (string, error)
}
