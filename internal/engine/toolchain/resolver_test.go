package toolchain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/toolchain"
)

func resolve(t *testing.T, p domain.Platform, declared domain.OptionSet, env domain.Environment) domain.ToolchainConfig {
	t.Helper()
	r := toolchain.New(toolchain.Settings{})
	cfg, err := r.Resolve(p, domain.ConfigureOptions(p, declared), env)
	require.NoError(t, err)
	return cfg
}

func value(t *testing.T, cfg domain.ToolchainConfig, name string) domain.Value {
	t.Helper()
	v, ok := cfg.Get(name)
	require.True(t, ok, "variable %s not set", name)
	return v
}

func TestResolve_Android(t *testing.T) {
	p := domain.Platform{OS: domain.OSAndroid, Arch: "armv8", APILevel: "21"}
	cfg := resolve(t, p, domain.OptionSet{domain.OptionAndroidSTLType: "c++_shared"}, domain.Environment{AndroidNDKRoot: "/opt/ndk"})

	assert.Equal(t, []string{
		"CMAKE_SYSTEM_NAME",
		"CMAKE_TOOLCHAIN_FILE",
		"ANDROID_NDK",
		"ANDROID_ABI",
		"ANDROID_STL",
		"ANDROID_NATIVE_API_LEVEL",
		"ANDROID_TOOLCHAIN",
		"DJINNI_WITH_JNI",
		"DJINNI_STATIC_LIB",
	}, cfg.Names())
	assert.Equal(t, "Android", value(t, cfg, toolchain.VarSystemName).String())
	assert.Equal(t, "/opt/ndk/build/cmake/android.toolchain.cmake", value(t, cfg, toolchain.VarToolchainFile).String())
	assert.Equal(t, "arm64-v8a", value(t, cfg, toolchain.VarAndroidABI).String())
	assert.Equal(t, "c++_shared", value(t, cfg, toolchain.VarAndroidSTL).String())
	assert.Equal(t, "21", value(t, cfg, toolchain.VarAndroidAPILevel).String())
	assert.Equal(t, "clang", value(t, cfg, toolchain.VarAndroidToolchain).String())
	assert.True(t, value(t, cfg, "DJINNI_WITH_JNI").Bool())
}

func TestResolve_AndroidWithoutAPILevel(t *testing.T) {
	p := domain.Platform{OS: domain.OSAndroid, Arch: "x86_64"}
	cfg := resolve(t, p, nil, domain.Environment{AndroidNDKRoot: "/opt/ndk"})

	_, ok := cfg.Get(toolchain.VarAndroidAPILevel)
	assert.False(t, ok)
	assert.Equal(t, "c++_static", value(t, cfg, toolchain.VarAndroidSTL).String())
	assert.Equal(t, "x86_64", value(t, cfg, toolchain.VarAndroidABI).String())
}

func TestResolve_AndroidMissingNDK(t *testing.T) {
	p := domain.Platform{OS: domain.OSAndroid, Arch: "arm64-v8a"}
	r := toolchain.New(toolchain.Settings{})

	_, err := r.Resolve(p, domain.ConfigureOptions(p, nil), domain.Environment{})
	require.ErrorIs(t, err, domain.ErrMissingEnvironment)
	assert.Equal(t, domain.KindMissingEnvironment, domain.ErrorKind(err))
}

func TestResolve_AndroidNDKOptionDoesNotReplaceEnvironment(t *testing.T) {
	p := domain.Platform{OS: domain.OSAndroid, Arch: "arm64-v8a"}
	r := toolchain.New(toolchain.Settings{})

	opts := domain.ConfigureOptions(p, domain.OptionSet{domain.OptionAndroidNDK: "/sdk/ndk/26"})
	_, err := r.Resolve(p, opts, domain.Environment{})
	require.ErrorIs(t, err, domain.ErrMissingEnvironment)

	cfg := resolve(t, p, domain.OptionSet{domain.OptionAndroidNDK: "/sdk/ndk/26"}, domain.Environment{AndroidNDKRoot: "/env/ndk"})
	assert.Equal(t, "/env/ndk", value(t, cfg, toolchain.VarAndroidNDK).String())
	assert.Equal(t, "/env/ndk/build/cmake/android.toolchain.cmake", value(t, cfg, toolchain.VarToolchainFile).String())
}

func TestResolve_IOSDeviceBuildsFatBinary(t *testing.T) {
	for _, arch := range []string{"arm64", "armv7", "armv7s", "armv8", "armv8.3", "arm64e"} {
		t.Run(arch, func(t *testing.T) {
			cfg := resolve(t, domain.Platform{OS: domain.OSIOS, Arch: arch}, domain.OptionSet{domain.OptionShared: "false"}, domain.Environment{})

			assert.Equal(t, []string{"armv7", "armv7s", "arm64", "arm64e"}, value(t, cfg, toolchain.VarOSXArchitectures).List())
			assert.True(t, value(t, cfg, "DJINNI_STATIC_LIB").Bool())
			assert.True(t, value(t, cfg, "DJINNI_WITH_OBJC").Bool())
		})
	}
}

func TestResolve_IOSSimulatorBuildsSingleSlice(t *testing.T) {
	for arch, want := range map[string]string{"x86_64": "x86_64", "x86": "i386"} {
		cfg := resolve(t, domain.Platform{OS: domain.OSIOS, Arch: arch}, nil, domain.Environment{})
		assert.Equal(t, []string{want}, value(t, cfg, toolchain.VarOSXArchitectures).List(), arch)
	}
}

func TestResolve_IOSPinsDeviceToolchain(t *testing.T) {
	cfg := resolve(t, domain.Platform{OS: domain.OSIOS, Arch: "arm64"}, nil, domain.Environment{})

	assert.Equal(t, "iOS", value(t, cfg, toolchain.VarSystemName).String())
	assert.Equal(t, "10.0", value(t, cfg, toolchain.VarDeploymentTarget).String())
	assert.False(t, value(t, cfg, toolchain.VarOnlyActiveArch).Bool())
	assert.True(t, value(t, cfg, toolchain.VarIOSInstallCombined).Bool())
	assert.Equal(t, domain.DefaultIOSSysroot, value(t, cfg, toolchain.VarOSXSysroot).String())
}

func TestResolve_Macos(t *testing.T) {
	cfg := resolve(t, domain.Platform{OS: domain.OSMacos, Arch: "x86_64"}, domain.OptionSet{domain.OptionShared: "true"}, domain.Environment{})

	assert.Equal(t, []string{"DJINNI_WITH_OBJC", "CMAKE_OSX_ARCHITECTURES"}, cfg.Names())
	assert.Equal(t, []string{"x86_64"}, value(t, cfg, toolchain.VarOSXArchitectures).List())
}

func TestResolve_Desktop(t *testing.T) {
	shared := resolve(t, domain.Platform{OS: domain.OSLinux, Arch: "x86_64"}, domain.OptionSet{domain.OptionShared: "true"}, domain.Environment{})
	assert.Equal(t, 0, shared.Len())

	static := resolve(t, domain.Platform{OS: domain.OSWindows, Arch: "x86_64"}, nil, domain.Environment{})
	assert.Equal(t, []string{"DJINNI_STATIC_LIB"}, static.Names())
}

func TestResolve_CustomSettings(t *testing.T) {
	r := toolchain.New(toolchain.Settings{FlagPrefix: "ACME", DeploymentTarget: "12.0", IOSSysroot: "/sdk"})
	p := domain.Platform{OS: domain.OSIOS, Arch: "arm64"}

	cfg, err := r.Resolve(p, domain.ConfigureOptions(p, nil), domain.Environment{})
	require.NoError(t, err)
	assert.Equal(t, "12.0", value(t, cfg, toolchain.VarDeploymentTarget).String())
	assert.Equal(t, "/sdk", value(t, cfg, toolchain.VarOSXSysroot).String())
	assert.True(t, value(t, cfg, "ACME_WITH_OBJC").Bool())
	assert.True(t, value(t, cfg, "ACME_STATIC_LIB").Bool())
}

func TestResolve_Deterministic(t *testing.T) {
	env := domain.Environment{AndroidNDKRoot: "/opt/ndk"}
	for _, os := range domain.KnownOS {
		p := domain.Platform{OS: os, Arch: "armv7", APILevel: "19"}
		first := resolve(t, p, nil, env)
		second := resolve(t, p, nil, env)
		assert.True(t, first.Equal(second), string(os))
	}
}

func TestResolve_EveryFamilyHandled(t *testing.T) {
	r := toolchain.New(toolchain.Settings{})
	env := domain.Environment{AndroidNDKRoot: "/opt/ndk"}
	for _, os := range domain.KnownOS {
		p := domain.Platform{OS: os, Arch: "x86_64"}
		assert.NotPanics(t, func() {
			_, _ = r.Resolve(p, domain.ConfigureOptions(p, nil), env)
		})
	}
}
