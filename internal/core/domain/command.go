package domain

import (
	"io"
	"strings"
)

// Command is an external process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env overrides entries of the inherited process environment.
	Env map[string]string
	// Stdout and Stderr receive the process output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// Line renders the command for diagnostics.
func (c Command) Line() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}
