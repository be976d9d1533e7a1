package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// Executor defines the interface for running external commands.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the command to completion.
	//
	// It returns an error if the command cannot be started or exits with a
	// non-zero status.
	Execute(ctx context.Context, cmd domain.Command) error
}
