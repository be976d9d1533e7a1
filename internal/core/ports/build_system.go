package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// BuildSystem drives the external native build system.
//
//go:generate go run go.uber.org/mock/mockgen -source=build_system.go -destination=mocks/mock_build_system.go -package=mocks
type BuildSystem interface {
	// Build runs configure then build and returns the produced tree.
	// A failing tool yields an error matching domain.ErrBuildFailed.
	Build(ctx context.Context, req domain.BuildRequest) (domain.BuildOutput, error)
}
