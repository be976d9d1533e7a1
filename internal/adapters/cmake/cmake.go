// Package cmake drives the CMake configure and build workflow.
package cmake

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultBinary is the CMake executable looked up on PATH.
const DefaultBinary = "cmake"

var _ ports.BuildSystem = (*CMake)(nil)

// CMake implements ports.BuildSystem on top of a process executor.
type CMake struct {
	executor ports.Executor
	logger   ports.Logger
	binary   string
}

// Option configures a CMake driver.
type Option func(*CMake)

// WithBinary overrides the CMake executable.
func WithBinary(path string) Option {
	return func(c *CMake) {
		c.binary = path
	}
}

// New creates a CMake driver.
func New(executor ports.Executor, logger ports.Logger, opts ...Option) *CMake {
	c := &CMake{
		executor: executor,
		logger:   logger,
		binary:   DefaultBinary,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Build runs "cmake -S <source> -B <build>" followed by "cmake --build <build>".
func (c *CMake) Build(ctx context.Context, req domain.BuildRequest) (domain.BuildOutput, error) {
	if err := os.MkdirAll(req.BuildDir, 0o750); err != nil {
		return domain.BuildOutput{}, zerr.With(zerr.Wrap(err, "failed to create build directory"), "path", req.BuildDir)
	}

	c.logger.Info("configuring " + req.SourceDir)
	if err := c.run(ctx, "configure", req, ConfigureArgs(req)); err != nil {
		return domain.BuildOutput{}, err
	}

	c.logger.Info("building " + req.BuildDir)
	if err := c.run(ctx, "build", req, BuildArgs(req)); err != nil {
		return domain.BuildOutput{}, err
	}

	return domain.BuildOutput{Dir: req.BuildDir}, nil
}

// ConfigureArgs renders the configure step arguments. Toolchain variables keep
// their resolved order.
func ConfigureArgs(req domain.BuildRequest) []string {
	args := []string{"-S", req.SourceDir, "-B", req.BuildDir}
	if req.Generator != "" {
		args = append(args, "-G", req.Generator)
	}
	if req.BuildType != "" {
		args = append(args, Define("CMAKE_BUILD_TYPE", domain.StringValue(req.BuildType)))
	}
	for v := range req.Toolchain.Variables() {
		args = append(args, Define(v.Name, v.Value))
	}
	return args
}

// BuildArgs renders the build step arguments.
func BuildArgs(req domain.BuildRequest) []string {
	args := []string{"--build", req.BuildDir}
	if req.BuildType != "" {
		args = append(args, "--config", req.BuildType)
	}
	return args
}

// Define renders a typed cache definition, e.g. -DKEY:BOOL=ON.
func Define(name string, v domain.Value) string {
	typeName := "STRING"
	if v.Kind() == domain.KindBool {
		typeName = "BOOL"
	}
	return "-D" + name + ":" + typeName + "=" + v.String()
}

func (c *CMake) run(ctx context.Context, step string, req domain.BuildRequest, args []string) error {
	// The diagnostic is kept whole so it can be reported verbatim.
	var captured syncBuffer
	var out io.Writer = &captured
	if req.Output != nil {
		out = io.MultiWriter(&captured, req.Output)
	}

	err := c.executor.Execute(ctx, domain.Command{
		Name:   c.binary,
		Args:   args,
		Dir:    req.SourceDir,
		Stdout: out,
		Stderr: out,
	})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return zerr.Wrap(err, "cmake "+step+" interrupted")
	}

	exitCode := -1
	var zErr *zerr.Error
	if errors.As(err, &zErr) {
		if code, ok := zErr.Metadata()["exit_code"].(int); ok {
			exitCode = code
		}
	}

	failed := zerr.Wrap(errors.Join(domain.ErrBuildFailed, err), "cmake "+step+" failed")
	failed = zerr.With(failed, "step", step)
	failed = zerr.With(failed, "exit_code", exitCode)
	return zerr.With(failed, "output", captured.String())
}

// syncBuffer is a bytes.Buffer safe for the concurrent stdout and stderr copies.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
