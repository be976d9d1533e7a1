package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// Assembler realizes a layout plan on disk.
//
//go:generate go run go.uber.org/mock/mockgen -source=assembler.go -destination=mocks/mock_assembler.go -package=mocks
type Assembler interface {
	// Assemble creates the package tree described by plan from the build output.
	Assemble(ctx context.Context, plan domain.LayoutPlan, out domain.BuildOutput) (domain.PackageLayout, error)

	// Remove deletes a package tree.
	Remove(root string) error
}
