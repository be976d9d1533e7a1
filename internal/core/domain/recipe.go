package domain

import "strings"

// DefaultIOSSysroot is the device SDK shipped with Xcode.
const DefaultIOSSysroot = "/Applications/Xcode.app/Contents/Developer/Platforms/iPhoneOS.platform/Developer/SDKs/iPhoneOS.sdk"

// DefaultIOSDeploymentTarget is the minimum iOS version packages are built for.
const DefaultIOSDeploymentTarget = "10.0"

// PackageInfo is the descriptive part of a recipe.
type PackageInfo struct {
	Name        string
	Version     string
	License     string
	Description string
}

// IOSSettings pins the Apple device toolchain.
type IOSSettings struct {
	DeploymentTarget string
	Sysroot          string
}

// Recipe is the declarative description of how a package is built and laid out.
// All paths are absolute once loaded.
type Recipe struct {
	Package     PackageInfo
	Namespace   string
	SourceDir   string
	Support     SupportSources
	ToolArchive string
	OutputDir   string
	Generator   string
	BuildType   string
	IOS         IOSSettings
	Options     OptionSet
	Targets     []Platform
}

// FlagPrefix returns the prefix of the project-specific CMake switches.
func (r *Recipe) FlagPrefix() string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(r.Package.Name))
}

// Environment carries the values read from the process environment at the
// pipeline entry. Nothing downstream reads the environment directly.
type Environment struct {
	// AndroidNDKRoot is the root of the Android NDK, if provided.
	AndroidNDKRoot string
}
