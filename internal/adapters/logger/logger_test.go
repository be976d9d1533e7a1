package logger_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(*logger.Logger)
		level string
		msg   string
	}{
		{"info", func(l *logger.Logger) { l.Info("reusing /out/Linux-x86_64-0123abcd") }, "level=INFO", "reusing /out/Linux-x86_64-0123abcd"},
		{"warn", func(l *logger.Logger) { l.Warn("recipe kiln.yaml declares no targets") }, "level=WARN", "recipe kiln.yaml declares no targets"},
		{"error", func(l *logger.Logger) { l.Error(os.ErrPermission) }, "level=ERROR", "permission denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(logger.NewWithWriter(&buf))

			assert.Contains(t, buf.String(), tt.level)
			assert.Contains(t, buf.String(), tt.msg)
		})
	}
}

func TestLogger_ErrorMetadata(t *testing.T) {
	var buf bytes.Buffer
	lg := logger.NewWithWriter(&buf)

	err := zerr.With(zerr.Wrap(errors.Join(domain.ErrCopyFailed, os.ErrNotExist), "failed to copy header"), "path", "support-lib/a.hpp")
	lg.Error(zerr.With(err, "kind", domain.ErrorKind(err)))

	out := buf.String()
	assert.Contains(t, out, "failed to copy header")
	assert.Contains(t, out, "path=support-lib/a.hpp")
	assert.Contains(t, out, "kind=CopyFailed")
}

func TestLogger_ErrorNil(t *testing.T) {
	var buf bytes.Buffer
	logger.NewWithWriter(&buf).Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_SetOutput(t *testing.T) {
	var first, second bytes.Buffer
	lg := logger.NewWithWriter(&first)

	lg.Info("before")
	lg.SetOutput(&second)
	lg.Info("after")

	assert.Contains(t, first.String(), "before")
	assert.NotContains(t, first.String(), "after")
	assert.Contains(t, second.String(), "after")
}

func TestLogger_ConcurrentSetOutput(t *testing.T) {
	lg := logger.NewWithWriter(io.Discard)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			lg.Info("building")
		}()
		go func() {
			defer wg.Done()
			lg.SetOutput(io.Discard)
		}()
	}
	wg.Wait()
}

func TestNew_WritesToStderr(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stderr
	os.Stderr = w
	t.Cleanup(func() { os.Stderr = orig })

	logger.New().Info("test initialization")
	require.NoError(t, w.Close())

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Contains(t, string(out), "test initialization")
}
