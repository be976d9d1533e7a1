package domain

import (
	"iter"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// ValueKind identifies the shape of a toolchain variable value.
type ValueKind int

const (
	// KindString is a plain string value.
	KindString ValueKind = iota
	// KindBool is a boolean flag.
	KindBool
	// KindList is a list of strings.
	KindList
)

// Value is a toolchain variable value: a string, a bool, or a list of strings.
type Value struct {
	kind ValueKind
	str  string
	flag bool
	list []string
}

// StringValue constructs a string value.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// BoolValue constructs a boolean value.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, flag: b}
}

// ListValue constructs a list value.
func ListValue(items ...string) Value {
	return Value{kind: KindList, list: slices.Clone(items)}
}

// Kind returns the value's shape.
func (v Value) Kind() ValueKind { return v.kind }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.flag }

// List returns a copy of the list payload.
func (v Value) List() []string { return slices.Clone(v.list) }

// String renders the value the way CMake expects it on the command line.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		if v.flag {
			return "ON"
		}
		return "OFF"
	case KindList:
		return strings.Join(v.list, ";")
	default:
		return v.str
	}
}

// Equal reports whether two values are identical.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.str == o.str && v.flag == o.flag && slices.Equal(v.list, o.list)
}

// GoString keeps test failure output readable.
func (v Value) GoString() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindList:
		return "[" + strings.Join(v.list, " ") + "]"
	default:
		return strconv.Quote(v.str)
	}
}

// Variable is a named toolchain value.
type Variable struct {
	Name  string
	Value Value
}

// ToolchainConfig is the ordered set of toolchain variables for one build.
// It cannot be modified once built.
type ToolchainConfig struct {
	vars []Variable
}

// Len returns the number of variables.
func (c ToolchainConfig) Len() int { return len(c.vars) }

// Get looks up a variable by name.
func (c ToolchainConfig) Get(name string) (Value, bool) {
	for _, v := range c.vars {
		if v.Name == name {
			return v.Value, true
		}
	}
	return Value{}, false
}

// Variables yields the variables in insertion order.
func (c ToolchainConfig) Variables() iter.Seq[Variable] {
	return func(yield func(Variable) bool) {
		for _, v := range c.vars {
			if !yield(v) {
				return
			}
		}
	}
}

// Names returns the variable names in insertion order.
func (c ToolchainConfig) Names() []string {
	names := make([]string, len(c.vars))
	for i, v := range c.vars {
		names[i] = v.Name
	}
	return names
}

// Equal reports whether both configs hold the same variables in the same order.
func (c ToolchainConfig) Equal(o ToolchainConfig) bool {
	return slices.EqualFunc(c.vars, o.vars, func(a, b Variable) bool {
		return a.Name == b.Name && a.Value.Equal(b.Value)
	})
}

// ToolchainBuilder accumulates variables for a ToolchainConfig.
// Assigning a name twice with different values is an error.
type ToolchainBuilder struct {
	vars  []Variable
	index map[string]int
}

// NewToolchainBuilder creates an empty builder.
func NewToolchainBuilder() *ToolchainBuilder {
	return &ToolchainBuilder{index: make(map[string]int)}
}

// Set records a variable. Re-assigning an identical value is a no-op.
func (b *ToolchainBuilder) Set(name string, value Value) error {
	if i, ok := b.index[name]; ok {
		if b.vars[i].Value.Equal(value) {
			return nil
		}
		return zerr.With(zerr.Wrap(ErrToolchainConflict, "variable assigned twice"), "variable", name)
	}
	b.index[name] = len(b.vars)
	b.vars = append(b.vars, Variable{Name: name, Value: value})
	return nil
}

// Build returns the immutable config.
func (b *ToolchainBuilder) Build() ToolchainConfig {
	return ToolchainConfig{vars: slices.Clone(b.vars)}
}
