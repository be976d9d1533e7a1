package wiring_test

import (
	"context"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/app"
	_ "go.trai.ch/kiln/internal/wiring"
)

// graft.AssertDepsValid infers dependency IDs from the package of the type
// passed to Dep[T], which does not fit nodes sharing the ports package.
// Resolving the graph from the root instead catches missing registrations
// and undeclared dependencies at test time.
func TestGraftDependencies(t *testing.T) {
	components, _, err := graft.ExecuteFor[*app.Components](context.Background())
	require.NoError(t, err)
	require.NotNil(t, components.App)
	require.NotNil(t, components.Logger)
}
