package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

func TestNoOp_Record(t *testing.T) {
	t.Parallel()

	tel := telemetry.NewNoOp()
	ctx, vertex := tel.Record(context.Background(), "build", ports.WithGroup("iOS-arm64"))
	require.NotNil(t, vertex)

	fromCtx, ok := ports.VertexFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, vertex, fromCtx)

	n, err := vertex.Stdout().Write([]byte("-- Configuring done\n"))
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	vertex.Log(domain.LogLevelInfo, "msg")
	vertex.Cached()
	vertex.Complete(errors.New("boom"))
	assert.NoError(t, tel.Close())
}
