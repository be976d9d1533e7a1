// Package environment captures the process environment for the pipeline.
package environment

import (
	"os"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

// AndroidNDKVar names the variable holding the Android NDK root.
const AndroidNDKVar = "ANDROID_NDK_PATH"

var _ ports.EnvironmentReader = (*Reader)(nil)

// Reader implements ports.EnvironmentReader over a lookup function.
type Reader struct {
	lookup func(string) (string, bool)
}

// NewReader creates a Reader backed by the process environment.
func NewReader() *Reader {
	return &Reader{lookup: os.LookupEnv}
}

// NewReaderFromMap creates a Reader backed by a fixed set of values.
func NewReaderFromMap(values map[string]string) *Reader {
	return &Reader{lookup: func(k string) (string, bool) {
		v, ok := values[k]
		return v, ok
	}}
}

// Read captures the values the pipeline depends on. Blank values count as unset.
func (r *Reader) Read() domain.Environment {
	ndk, _ := r.lookup(AndroidNDKVar)
	return domain.Environment{
		AndroidNDKRoot: strings.TrimSpace(ndk),
	}
}
