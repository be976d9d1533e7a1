package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestToolchainBuilder_KeepsOrder(t *testing.T) {
	b := domain.NewToolchainBuilder()
	require.NoError(t, b.Set("B", domain.StringValue("1")))
	require.NoError(t, b.Set("A", domain.BoolValue(true)))
	require.NoError(t, b.Set("C", domain.ListValue("x", "y")))

	cfg := b.Build()
	assert.Equal(t, []string{"B", "A", "C"}, cfg.Names())

	v, ok := cfg.Get("C")
	require.True(t, ok)
	assert.Equal(t, "x;y", v.String())
}

func TestToolchainBuilder_RejectsConflicts(t *testing.T) {
	b := domain.NewToolchainBuilder()
	require.NoError(t, b.Set("X", domain.BoolValue(true)))
	require.NoError(t, b.Set("X", domain.BoolValue(true)))

	err := b.Set("X", domain.BoolValue(false))
	require.ErrorIs(t, err, domain.ErrToolchainConflict)
	assert.Equal(t, 1, b.Build().Len())
}

func TestToolchainConfig_IsSnapshot(t *testing.T) {
	b := domain.NewToolchainBuilder()
	require.NoError(t, b.Set("A", domain.StringValue("1")))
	first := b.Build()
	require.NoError(t, b.Set("B", domain.StringValue("2")))

	assert.Equal(t, 1, first.Len())
	assert.False(t, first.Equal(b.Build()))
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "ON", domain.BoolValue(true).String())
	assert.Equal(t, "OFF", domain.BoolValue(false).String())
	assert.Equal(t, "armv7;arm64", domain.ListValue("armv7", "arm64").String())
	assert.Equal(t, "clang", domain.StringValue("clang").String())
}

func TestValue_ListIsCopied(t *testing.T) {
	items := []string{"a"}
	v := domain.ListValue(items...)
	items[0] = "b"
	got := v.List()
	got[0] = "c"
	assert.Equal(t, []string{"a"}, v.List())
}
