package ports

import "go.trai.ch/kiln/internal/core/domain"

// ConfigLoader defines the interface for loading a package recipe.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the recipe at path. Relative paths inside the recipe are
	// resolved against the recipe's directory.
	Load(path string) (*domain.Recipe, error)
}
