// Package toolchain maps a target platform and its options to CMake toolchain variables.
package toolchain

import (
	"path"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// Variable names understood by CMake and the Android NDK toolchain file.
const (
	VarSystemName            = "CMAKE_SYSTEM_NAME"
	VarToolchainFile         = "CMAKE_TOOLCHAIN_FILE"
	VarAndroidNDK            = "ANDROID_NDK"
	VarAndroidABI            = "ANDROID_ABI"
	VarAndroidSTL            = "ANDROID_STL"
	VarAndroidAPILevel       = "ANDROID_NATIVE_API_LEVEL"
	VarAndroidToolchain      = "ANDROID_TOOLCHAIN"
	VarDeploymentTarget      = "CMAKE_OSX_DEPLOYMENT_TARGET"
	VarOnlyActiveArch        = "CMAKE_XCODE_ATTRIBUTE_ONLY_ACTIVE_ARCH"
	VarIOSInstallCombined    = "CMAKE_IOS_INSTALL_COMBINED"
	VarOSXSysroot            = "CMAKE_OSX_SYSROOT"
	VarOSXArchitectures      = "CMAKE_OSX_ARCHITECTURES"
	androidToolchainFile     = "build/cmake/android.toolchain.cmake"
	androidCompilerToolchain = "clang"
)

// FatARMSlices are the slices of every iOS device build.
var FatARMSlices = []string{"armv7", "armv7s", "arm64", "arm64e"}

// Settings are the recipe-level inputs of the resolver.
type Settings struct {
	// FlagPrefix prefixes the project switches, e.g. DJINNI gives DJINNI_WITH_JNI.
	FlagPrefix string
	// DeploymentTarget is the minimum iOS version.
	DeploymentTarget string
	// IOSSysroot is the device SDK root.
	IOSSysroot string
}

// Resolver turns a platform into a toolchain configuration.
// It reads nothing but its arguments.
type Resolver struct {
	settings Settings
}

// New creates a Resolver, filling unset settings with defaults.
func New(settings Settings) *Resolver {
	if settings.FlagPrefix == "" {
		settings.FlagPrefix = "DJINNI"
	}
	if settings.DeploymentTarget == "" {
		settings.DeploymentTarget = domain.DefaultIOSDeploymentTarget
	}
	if settings.IOSSysroot == "" {
		settings.IOSSysroot = domain.DefaultIOSSysroot
	}
	return &Resolver{settings: settings}
}

// WithJNI is the switch enabling the JNI bridge.
func (r *Resolver) WithJNI() string { return r.settings.FlagPrefix + "_WITH_JNI" }

// WithObjC is the switch enabling the Objective-C bridge.
func (r *Resolver) WithObjC() string { return r.settings.FlagPrefix + "_WITH_OBJC" }

// StaticLib is the switch requesting a static library.
func (r *Resolver) StaticLib() string { return r.settings.FlagPrefix + "_STATIC_LIB" }

type rule func(b *domain.ToolchainBuilder, p domain.Platform, opts domain.OptionSet, env domain.Environment) error

// Resolve computes the toolchain variables. The options are expected to have
// passed through domain.ConfigureOptions for p.
func (r *Resolver) Resolve(p domain.Platform, opts domain.OptionSet, env domain.Environment) (domain.ToolchainConfig, error) {
	b := domain.NewToolchainBuilder()

	if err := r.familyRule(p.Family())(b, p, opts, env); err != nil {
		return domain.ToolchainConfig{}, zerr.With(zerr.With(err, "os", string(p.OS)), "arch", p.Arch)
	}

	if !opts.Shared() {
		if err := b.Set(r.StaticLib(), domain.BoolValue(true)); err != nil {
			return domain.ToolchainConfig{}, err
		}
	}

	return b.Build(), nil
}

func (r *Resolver) familyRule(f domain.Family) rule {
	switch f {
	case domain.FamilyAndroid:
		return r.android
	case domain.FamilyIOS:
		return r.ios
	case domain.FamilyMacos:
		return r.macos
	case domain.FamilyDesktop:
		return r.desktop
	}
	panic("toolchain: unhandled platform family " + f.String())
}

func (r *Resolver) android(b *domain.ToolchainBuilder, p domain.Platform, opts domain.OptionSet, env domain.Environment) error {
	// The android_ndk option is recorded but never substitutes for the environment.
	ndk := env.AndroidNDKRoot
	if ndk == "" {
		return zerr.With(zerr.Wrap(domain.ErrMissingEnvironment, "android NDK root is not set"), "variable", "ANDROID_NDK_PATH")
	}

	vars := []domain.Variable{
		{Name: VarSystemName, Value: domain.StringValue("Android")},
		{Name: VarToolchainFile, Value: domain.StringValue(path.Join(ndk, androidToolchainFile))},
		{Name: VarAndroidNDK, Value: domain.StringValue(ndk)},
		{Name: VarAndroidABI, Value: domain.StringValue(domain.AndroidABI(p.Arch))},
	}
	if stl, ok := opts.STL(); ok {
		vars = append(vars, domain.Variable{Name: VarAndroidSTL, Value: domain.StringValue(string(stl))})
	}
	if p.APILevel != "" {
		vars = append(vars, domain.Variable{Name: VarAndroidAPILevel, Value: domain.StringValue(p.APILevel)})
	}
	vars = append(vars,
		domain.Variable{Name: VarAndroidToolchain, Value: domain.StringValue(androidCompilerToolchain)},
		domain.Variable{Name: r.WithJNI(), Value: domain.BoolValue(true)},
	)
	return setAll(b, vars)
}

func (r *Resolver) ios(b *domain.ToolchainBuilder, p domain.Platform, _ domain.OptionSet, _ domain.Environment) error {
	return setAll(b, []domain.Variable{
		{Name: VarSystemName, Value: domain.StringValue("iOS")},
		{Name: VarDeploymentTarget, Value: domain.StringValue(r.settings.DeploymentTarget)},
		{Name: VarOnlyActiveArch, Value: domain.BoolValue(false)},
		{Name: VarIOSInstallCombined, Value: domain.BoolValue(true)},
		{Name: VarOSXSysroot, Value: domain.StringValue(r.settings.IOSSysroot)},
		{Name: r.WithObjC(), Value: domain.BoolValue(true)},
		{Name: VarOSXArchitectures, Value: iosArchitectures(p)},
	})
}

func (r *Resolver) macos(b *domain.ToolchainBuilder, p domain.Platform, _ domain.OptionSet, _ domain.Environment) error {
	return setAll(b, []domain.Variable{
		{Name: r.WithObjC(), Value: domain.BoolValue(true)},
		{Name: VarOSXArchitectures, Value: domain.ListValue(domain.AppleArch(p.Arch))},
	})
}

// desktop targets rely on the build system's defaults.
func (r *Resolver) desktop(*domain.ToolchainBuilder, domain.Platform, domain.OptionSet, domain.Environment) error {
	return nil
}

// iosArchitectures keeps the coarse substring rule: any arch containing "arm"
// becomes the full fat binary slice set.
func iosArchitectures(p domain.Platform) domain.Value {
	if p.IsARM() {
		return domain.ListValue(FatARMSlices...)
	}
	return domain.ListValue(domain.AppleArch(p.Arch))
}

func setAll(b *domain.ToolchainBuilder, vars []domain.Variable) error {
	for _, v := range vars {
		if err := b.Set(v.Name, v.Value); err != nil {
			return err
		}
	}
	return nil
}
