package domain

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// Recognized option names.
const (
	OptionShared         = "shared"
	OptionAndroidNDK     = "android_ndk"
	OptionAndroidSTLType = "android_stl_type"
)

// STLType is the C++ runtime flavor linked into Android builds.
type STLType string

const (
	// STLStatic links the C++ runtime statically.
	STLStatic STLType = "c++_static"
	// STLShared links the C++ runtime as a shared library.
	STLShared STLType = "c++_shared"
)

// androidOnly lists the options that exist only for Android targets.
var androidOnly = []string{OptionAndroidNDK, OptionAndroidSTLType}

// OptionSet maps option names to their textual values.
// A present key with an empty value is declared but unset.
type OptionSet map[string]string

// DefaultOptions returns the declared options with their defaults.
func DefaultOptions() OptionSet {
	return OptionSet{
		OptionShared:         "false",
		OptionAndroidNDK:     "",
		OptionAndroidSTLType: string(STLStatic),
	}
}

// Clone returns an independent copy of the set.
func (o OptionSet) Clone() OptionSet {
	if o == nil {
		return OptionSet{}
	}
	return maps.Clone(o)
}

// Merge returns a copy of o overlaid with the values of other.
func (o OptionSet) Merge(other OptionSet) OptionSet {
	res := o.Clone()
	maps.Copy(res, other)
	return res
}

// Has reports whether the option is present in the set.
func (o OptionSet) Has(name string) bool {
	_, ok := o[name]
	return ok
}

// Names returns the option names in sorted order.
func (o OptionSet) Names() []string {
	return slices.Sorted(maps.Keys(o))
}

// Shared reports whether a shared library build was requested.
func (o OptionSet) Shared() bool {
	v, err := strconv.ParseBool(o[OptionShared])
	return err == nil && v
}

// AndroidNDK returns the NDK root option, if set to a non-empty value.
func (o OptionSet) AndroidNDK() (string, bool) {
	v := o[OptionAndroidNDK]
	return v, v != ""
}

// STL returns the requested Android C++ runtime, if present.
func (o OptionSet) STL() (STLType, bool) {
	v, ok := o[OptionAndroidSTLType]
	if !ok || v == "" {
		return "", false
	}
	return STLType(v), true
}

// Validate checks that every option is recognized and carries an acceptable value.
func (o OptionSet) Validate() error {
	for _, name := range o.Names() {
		value := o[name]
		switch name {
		case OptionShared:
			if _, err := strconv.ParseBool(value); err != nil {
				return zerr.With(zerr.With(zerr.Wrap(ErrInvalidOption, "expected a boolean"), "option", name), "value", value)
			}
		case OptionAndroidNDK:
		case OptionAndroidSTLType:
			if value != "" && STLType(value) != STLStatic && STLType(value) != STLShared {
				return zerr.With(zerr.With(zerr.Wrap(ErrInvalidOption, "expected c++_static or c++_shared"), "option", name), "value", value)
			}
		default:
			return zerr.With(zerr.Wrap(ErrUnknownOption, "unrecognized option"), "option", name)
		}
	}
	return nil
}

// ConfigureOptions overlays declared onto the defaults and removes every option
// that does not apply to the platform. Options that only exist for Android are
// absent from the result for any other OS, so their absence implies "not Android".
func ConfigureOptions(p Platform, declared OptionSet) OptionSet {
	res := DefaultOptions().Merge(declared)
	if p.Family() != FamilyAndroid {
		for _, name := range androidOnly {
			delete(res, name)
		}
	}
	return res
}

// ParseOptionAssignment parses a "name=value" option override.
func ParseOptionAssignment(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", "", zerr.With(zerr.Wrap(ErrInvalidOption, "expected name=value"), "assignment", s)
	}
	return name, value, nil
}
