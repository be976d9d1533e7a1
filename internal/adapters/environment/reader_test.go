package environment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/adapters/environment"
)

func TestReader_Read(t *testing.T) {
	r := environment.NewReaderFromMap(map[string]string{environment.AndroidNDKVar: " /opt/ndk "})
	assert.Equal(t, "/opt/ndk", r.Read().AndroidNDKRoot)
}

func TestReader_ReadUnset(t *testing.T) {
	r := environment.NewReaderFromMap(nil)
	assert.Empty(t, r.Read().AndroidNDKRoot)
}

func TestReader_ProcessEnvironment(t *testing.T) {
	t.Setenv(environment.AndroidNDKVar, "/sdk/ndk/26.1")
	assert.Equal(t, "/sdk/ndk/26.1", environment.NewReader().Read().AndroidNDKRoot)
}
