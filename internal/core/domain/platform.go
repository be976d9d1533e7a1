package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// OS is the operating system of a target platform.
type OS string

const (
	// OSLinux is a desktop Linux target.
	OSLinux OS = "Linux"
	// OSWindows is a desktop Windows target.
	OSWindows OS = "Windows"
	// OSMacos is a macOS target.
	OSMacos OS = "Macos"
	// OSIOS is an iOS device or simulator target.
	OSIOS OS = "iOS"
	// OSAndroid is an Android target.
	OSAndroid OS = "Android"
)

// KnownOS lists every supported operating system.
var KnownOS = []OS{OSLinux, OSWindows, OSMacos, OSIOS, OSAndroid}

// ParseOS resolves an operating system name case-insensitively.
func ParseOS(name string) (OS, error) {
	for _, os := range KnownOS {
		if strings.EqualFold(string(os), name) {
			return os, nil
		}
	}
	return "", zerr.With(zerr.Wrap(ErrUnsupportedOS, "failed to parse os"), "os", name)
}

// Family returns the rule variant the operating system belongs to.
func (o OS) Family() Family {
	switch o {
	case OSMacos:
		return FamilyMacos
	case OSIOS:
		return FamilyIOS
	case OSAndroid:
		return FamilyAndroid
	default:
		return FamilyDesktop
	}
}

// Family is the closed set of platform variants that carry distinct rules.
// Every stage that branches on the platform switches over a Family.
type Family int

const (
	// FamilyDesktop covers Linux and Windows.
	FamilyDesktop Family = iota
	// FamilyMacos covers macOS.
	FamilyMacos
	// FamilyIOS covers iOS.
	FamilyIOS
	// FamilyAndroid covers Android.
	FamilyAndroid
)

// Families lists every variant.
var Families = []Family{FamilyDesktop, FamilyMacos, FamilyIOS, FamilyAndroid}

func (f Family) String() string {
	switch f {
	case FamilyDesktop:
		return "desktop"
	case FamilyMacos:
		return "macos"
	case FamilyIOS:
		return "ios"
	case FamilyAndroid:
		return "android"
	default:
		return "unknown"
	}
}

// Platform describes the target a package is built for.
type Platform struct {
	// OS is the operating system of the platform.
	OS OS
	// Arch is the CPU architecture of the platform, e.g. "arm64" or "armv7".
	Arch string
	// APILevel is the optional OS API level (Android only in practice).
	APILevel string
}

// NewPlatform validates and constructs a Platform.
func NewPlatform(os OS, arch, apiLevel string) (Platform, error) {
	if _, err := ParseOS(string(os)); err != nil {
		return Platform{}, err
	}
	arch = strings.TrimSpace(arch)
	if arch == "" {
		return Platform{}, zerr.With(zerr.Wrap(ErrInvalidPlatform, "architecture is required"), "os", string(os))
	}
	return Platform{OS: os, Arch: arch, APILevel: strings.TrimSpace(apiLevel)}, nil
}

// ParsePlatform parses a target of the form "OS/arch" or "OS/arch@api".
func ParsePlatform(s string) (Platform, error) {
	osName, rest, ok := strings.Cut(s, "/")
	if !ok {
		return Platform{}, zerr.With(zerr.Wrap(ErrInvalidPlatform, "expected OS/arch[@api]"), "target", s)
	}
	os, err := ParseOS(osName)
	if err != nil {
		return Platform{}, err
	}
	arch, api, _ := strings.Cut(rest, "@")
	return NewPlatform(os, arch, api)
}

// Family returns the rule variant of the platform.
func (p Platform) Family() Family {
	return p.OS.Family()
}

// IsARM reports whether the architecture names an ARM variant.
// The match is a plain substring test on "arm".
func (p Platform) IsARM() bool {
	return strings.Contains(p.Arch, "arm")
}

func (p Platform) String() string {
	s := string(p.OS) + "-" + p.Arch
	if p.APILevel != "" {
		s += "@" + p.APILevel
	}
	return s
}

var androidABI = map[string]string{
	"armv5el": "armeabi",
	"armv5hf": "armeabi",
	"armv5":   "armeabi",
	"armv6":   "armeabi-v6",
	"armv7":   "armeabi-v7a",
	"armv7hf": "armeabi-v7a",
	"armv8":   "arm64-v8a",
}

// AndroidABI maps an architecture to Android's ABI naming. Names that are
// already ABI names pass through unchanged.
func AndroidABI(arch string) string {
	if abi, ok := androidABI[arch]; ok {
		return abi
	}
	return arch
}

var appleArch = map[string]string{
	"x86":      "i386",
	"x86_64":   "x86_64",
	"armv7":    "armv7",
	"armv8":    "arm64",
	"armv8_32": "arm64_32",
	"armv8.3":  "arm64e",
	"armv7s":   "armv7s",
	"armv7k":   "armv7k",
}

// AppleArch maps an architecture to Apple's slice naming. Names that are
// already Apple slice names pass through unchanged.
func AppleArch(arch string) string {
	if a, ok := appleArch[arch]; ok {
		return a
	}
	return arch
}
