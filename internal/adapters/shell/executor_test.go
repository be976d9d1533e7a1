package shell_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/shell"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func TestExecutor_Execute_MultiLineOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	gomock.InOrder(
		mockLogger.EXPECT().Info("line1").Times(1),
		mockLogger.EXPECT().Info("line2").Times(1),
	)

	executor := shell.NewExecutor(mockLogger)
	err := executor.Execute(context.Background(), domain.Command{
		Name: "sh",
		Args: []string{"-c", "echo line1; echo line2"},
		Dir:  t.TempDir(),
	})
	require.NoError(t, err)
}

func TestExecutor_Execute_FragmentedOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info("part1part2").Times(1)

	executor := shell.NewExecutor(mockLogger)
	err := executor.Execute(context.Background(), domain.Command{
		Name: "sh",
		Args: []string{"-c", "printf part1; sleep 0.1; echo part2"},
		Dir:  t.TempDir(),
	})
	require.NoError(t, err)
}

func TestExecutor_Execute_TrailingPartialLine(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info("no newline").Times(1)

	executor := shell.NewExecutor(mockLogger)
	err := executor.Execute(context.Background(), domain.Command{
		Name: "sh",
		Args: []string{"-c", "printf 'no newline'"},
	})
	require.NoError(t, err)
}

func TestExecutor_Execute_EnvironmentVariables(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info("test-value-123").Times(1)

	executor := shell.NewExecutor(mockLogger)
	err := executor.Execute(context.Background(), domain.Command{
		Name: "sh",
		Args: []string{"-c", "echo $MY_TEST_VAR"},
		Env:  map[string]string{"MY_TEST_VAR": "test-value-123"},
	})
	require.NoError(t, err)
}

func TestExecutor_Execute_WorkingDirectory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	var out bytes.Buffer

	executor := shell.NewExecutor(mocks.NewMockLogger(ctrl))
	err := executor.Execute(context.Background(), domain.Command{
		Name:   "sh",
		Args:   []string{"-c", "pwd -P"},
		Dir:    dir,
		Stdout: &out,
	})
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, want, strings.TrimSpace(out.String()))
}

func TestExecutor_Execute_CustomWriters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// The logger must not be used when writers are supplied.
	mockLogger := mocks.NewMockLogger(ctrl)
	var stdout, stderr bytes.Buffer

	executor := shell.NewExecutor(mockLogger)
	err := executor.Execute(context.Background(), domain.Command{
		Name:   "sh",
		Args:   []string{"-c", "echo out; echo err >&2"},
		Stdout: &stdout,
		Stderr: &stderr,
	})
	require.NoError(t, err)
	assert.Equal(t, "out\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())
}

func TestExecutor_Execute_InvalidCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()

	executor := shell.NewExecutor(mockLogger)
	err := executor.Execute(context.Background(), domain.Command{Name: "nonexistent-command-xyz123"})
	require.Error(t, err)
}

func TestExecutor_Execute_CommandFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()

	executor := shell.NewExecutor(mockLogger)
	err := executor.Execute(context.Background(), domain.Command{
		Name: "sh",
		Args: []string{"-c", "exit 42"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command failed")

	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	assert.Equal(t, 42, zErr.Metadata()["exit_code"])
	assert.Equal(t, "sh -c exit 42", zErr.Metadata()["command"])
}

func TestExecutor_Execute_EmptyCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	executor := shell.NewExecutor(mocks.NewMockLogger(ctrl))
	require.NoError(t, executor.Execute(context.Background(), domain.Command{}))
}

func TestExecutor_Execute_AbsolutePath(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info("test").Times(1)

	executor := shell.NewExecutor(mockLogger)
	err := executor.Execute(context.Background(), domain.Command{
		Name: "/bin/sh",
		Args: []string{"-c", "echo test"},
	})
	require.NoError(t, err)
}

func TestExecutor_Execute_Cancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	executor := shell.NewExecutor(mocks.NewMockLogger(ctrl))
	err := executor.Execute(ctx, domain.Command{Name: "sh", Args: []string{"-c", "sleep 5"}})
	require.Error(t, err)
}
