// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/kiln/internal/core/domain"

// EnvironmentReader captures the process environment values the pipeline depends on.
//
// It is called once at the entry of a packaging run so that everything
// downstream works from explicit values.
//
//go:generate go run go.uber.org/mock/mockgen -source=environment.go -destination=mocks/mock_environment.go -package=mocks
type EnvironmentReader interface {
	Read() domain.Environment
}
