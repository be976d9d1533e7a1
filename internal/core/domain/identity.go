package domain

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// AnyARM is the architecture class shared by every iOS ARM variant.
const AnyARM = "AnyARM"

// Identity is the reduced key under which build-compatible platforms share a package.
type Identity struct {
	OS   OS     `json:"os"`
	Arch string `json:"arch"`
}

// NormalizeIdentity derives the package identity of a platform.
func NormalizeIdentity(p Platform) Identity {
	id := Identity{OS: p.OS, Arch: p.Arch}
	switch p.Family() {
	case FamilyIOS:
		// Every ARM request produces the same four-slice fat binary.
		if p.IsARM() {
			id.Arch = AnyARM
		}
	case FamilyDesktop, FamilyMacos, FamilyAndroid:
	}
	return id
}

// Normalize re-applies normalization to an identity. It is idempotent.
func (id Identity) Normalize() Identity {
	return NormalizeIdentity(Platform{OS: id.OS, Arch: id.Arch})
}

func (id Identity) String() string {
	return string(id.OS) + "-" + id.Arch
}

// Key returns a stable hex key for the identity.
func (id Identity) Key() string {
	h := xxhash.New()
	_, _ = h.WriteString(string(id.OS))
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(id.Arch)
	_, _ = h.Write([]byte{0})
	return fmt.Sprintf("%016x", h.Sum64())
}

// BuildInputs are the resolved recipe and toolchain choices that shape a
// package beyond its platform and options.
type BuildInputs struct {
	// Toolchain holds the variables as NAME=VALUE in resolution order.
	Toolchain []string `json:"toolchain"`
	Generator string   `json:"generator,omitempty"`
	BuildType string   `json:"build_type"`
	Namespace string   `json:"namespace"`
}

// NewBuildInputs captures the inputs of a planned build.
func NewBuildInputs(tc ToolchainConfig, generator, buildType, namespace string) BuildInputs {
	vars := make([]string, 0, tc.Len())
	for v := range tc.Variables() {
		vars = append(vars, v.Name+"="+v.Value.String())
	}
	return BuildInputs{
		Toolchain: vars,
		Generator: generator,
		BuildType: buildType,
		Namespace: namespace,
	}
}

// Equal reports whether both inputs produce the same package.
func (b BuildInputs) Equal(o BuildInputs) bool {
	return slices.Equal(b.Toolchain, o.Toolchain) &&
		b.Generator == o.Generator &&
		b.BuildType == o.BuildType &&
		b.Namespace == o.Namespace
}

// Fingerprint combines the identity of p with its API level, the resolved
// options and the build inputs. Two targets with the same fingerprint produce
// interchangeable packages.
func Fingerprint(p Platform, opts OptionSet, inputs BuildInputs) string {
	h := xxhash.New()
	field := func(s string) {
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}

	field(NormalizeIdentity(p).Key())
	field(p.APILevel)
	for _, name := range opts.Names() {
		field(name + "=" + opts[name])
	}
	_, _ = h.Write([]byte{1})
	for _, v := range inputs.Toolchain {
		field(v)
	}
	_, _ = h.Write([]byte{1})
	field(inputs.Generator)
	field(inputs.BuildType)
	field(inputs.Namespace)
	return fmt.Sprintf("%016x", h.Sum64())
}

// PackageDirName names the package root of a fingerprinted identity, e.g.
// "iOS-AnyARM-1a2b3c4d".
func PackageDirName(id Identity, fingerprint string) string {
	if len(fingerprint) > 8 {
		fingerprint = fingerprint[:8]
	}
	return id.String() + "-" + fingerprint
}
