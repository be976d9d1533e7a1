package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/pipeline"
	"go.trai.ch/kiln/internal/engine/scheduler"
	"go.trai.ch/kiln/internal/engine/toolchain"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	app       *app.App
	loader    *mocks.MockConfigLoader
	env       *mocks.MockEnvironmentReader
	verifier  *mocks.MockVerifier
	store     *mocks.MockPackageStore
	telemetry *mocks.MockTelemetry
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := fixture{
		loader:    mocks.NewMockConfigLoader(ctrl),
		env:       mocks.NewMockEnvironmentReader(ctrl),
		verifier:  mocks.NewMockVerifier(ctrl),
		store:     mocks.NewMockPackageStore(ctrl),
		telemetry: mocks.NewMockTelemetry(ctrl),
	}
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	pipe := pipeline.New(
		f.env,
		mocks.NewMockBuildSystem(ctrl),
		mocks.NewMockAssembler(ctrl),
		f.verifier,
		mocks.NewMockHasher(ctrl),
		mocks.NewMockArchiver(ctrl),
		f.store,
		mocks.NewMockLocker(ctrl),
		telemetry.NewNoOp(),
		log,
	)
	f.app = app.New(f.loader, pipe, scheduler.NewScheduler(pipe), f.store, f.telemetry, log)
	return f
}

func recipe(output string, targets ...domain.Platform) *domain.Recipe {
	return &domain.Recipe{
		Package:   domain.PackageInfo{Name: "djinni", Version: "470"},
		Namespace: "djinni",
		SourceDir: "/src",
		Support: domain.SupportSources{
			Common: "/src/support-lib",
			ObjC:   "/src/support-lib/objc",
			JNI:    "/src/support-lib/jni",
		},
		OutputDir: output,
		Options:   domain.DefaultOptions(),
		Targets:   targets,
	}
}

func TestApp_Package_ReusesRecordedPackages(t *testing.T) {
	f := newFixture(t)
	armv7 := domain.Platform{OS: domain.OSIOS, Arch: "armv7"}
	arm64 := domain.Platform{OS: domain.OSIOS, Arch: "arm64"}

	rec := recipe("/out", armv7, arm64)
	opts := domain.ConfigureOptions(arm64, rec.Options)
	cfg, err := toolchain.New(toolchain.Settings{FlagPrefix: rec.FlagPrefix()}).Resolve(arm64, opts, domain.Environment{})
	require.NoError(t, err)
	inputs := domain.NewBuildInputs(cfg, rec.Generator, rec.BuildType, rec.Namespace)

	f.loader.EXPECT().Load(domain.RecipeFileName).Return(rec, nil)
	f.env.EXPECT().Read().Return(domain.Environment{}).Times(2)
	f.store.EXPECT().Get("/out", gomock.Any()).DoAndReturn(func(_, fp string) (*domain.PackageRecord, error) {
		return &domain.PackageRecord{
			Fingerprint: fp,
			Inputs:      inputs,
			Root:        filepath.Join("/out", domain.PackageDirName(domain.NormalizeIdentity(arm64), fp)),
			Checksums:   map[string]string{"lib/libdjinni.a": "ab"},
		}, nil
	})
	f.verifier.EXPECT().VerifyOutputs(gomock.Any(), []string{"lib/libdjinni.a"}).Return(true, nil)
	f.telemetry.EXPECT().Close().Return(nil)

	results, err := f.app.Package(context.Background(), app.PackageOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, armv7, results[0].Platform)
	assert.Equal(t, arm64, results[1].Platform)
	assert.True(t, results[0].Cached)
	assert.True(t, results[1].Cached)
	assert.Equal(t, results[0].Record.Root, results[1].Record.Root)
}

func TestApp_Package_CommandLineTargetsReplaceRecipeTargets(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load("custom.yaml").Return(recipe("/out", domain.Platform{OS: domain.OSIOS, Arch: "arm64"}), nil)
	f.env.EXPECT().Read().Return(domain.Environment{})
	f.telemetry.EXPECT().Close().Return(nil)

	_, err := f.app.Package(context.Background(), app.PackageOptions{
		ConfigPath: "custom.yaml",
		Targets:    []string{"Android/arm64-v8a@21"},
	})
	require.ErrorIs(t, err, domain.ErrMissingEnvironment)
	assert.Equal(t, domain.KindMissingEnvironment, domain.ErrorKind(err))
}

func TestApp_Package_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		opts app.PackageOptions
		want error
	}{
		{"unknown os", app.PackageOptions{Targets: []string{"Plan9/x86"}}, domain.ErrUnsupportedOS},
		{"malformed target", app.PackageOptions{Targets: []string{"Linux"}}, domain.ErrInvalidPlatform},
		{"malformed override", app.PackageOptions{Overrides: []string{"shared"}}, domain.ErrInvalidOption},
		{"unknown archive", app.PackageOptions{Archive: "rar"}, domain.ErrUnsupportedArchive},
		{"no targets", app.PackageOptions{}, domain.ErrNoTargets},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.loader.EXPECT().Load(gomock.Any()).Return(recipe("/out"), nil)
			f.telemetry.EXPECT().Close().Return(nil)

			_, err := f.app.Package(context.Background(), tt.opts)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestApp_Package_ConfigError(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(domain.RecipeFileName).Return(nil, zerr.Wrap(domain.ErrConfigRead, "no such file"))
	f.telemetry.EXPECT().Close().Return(nil)

	_, err := f.app.Package(context.Background(), app.PackageOptions{})
	require.ErrorIs(t, err, domain.ErrConfigRead)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestApp_Plan(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(domain.RecipeFileName).Return(recipe("/out"), nil)
	f.env.EXPECT().Read().Return(domain.Environment{AndroidNDKRoot: "/opt/ndk"}).Times(2)

	plans, err := f.app.Plan(context.Background(), app.PlanOptions{
		Targets:   []string{"Android/armv7@19", "Linux/x86_64"},
		Overrides: []string{"shared=true"},
	})
	require.NoError(t, err)
	require.Len(t, plans, 2)

	abi, ok := plans[0].Toolchain.Get("ANDROID_ABI")
	require.True(t, ok)
	assert.Equal(t, "armeabi-v7a", abi.String())
	assert.Equal(t, "true", plans[0].Options[domain.OptionShared])
	assert.True(t, plans[0].Layout.HasFolder("include/djinni/jni"))

	assert.Equal(t, 0, plans[1].Toolchain.Len())
	assert.NotContains(t, plans[1].Options, domain.OptionAndroidSTLType)
}

func TestApp_Plan_NoTargets(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(domain.RecipeFileName).Return(recipe("/out"), nil)

	_, err := f.app.Plan(context.Background(), app.PlanOptions{})
	assert.ErrorIs(t, err, domain.ErrNoTargets)
}

func TestApp_Identity(t *testing.T) {
	f := newFixture(t)

	reports, err := f.app.Identity([]string{"iOS/armv7", "iOS/arm64", "iOS/x86_64", "Android/armv7"})
	require.NoError(t, err)
	require.Len(t, reports, 4)

	assert.Equal(t, domain.AnyARM, reports[0].Identity.Arch)
	assert.Equal(t, reports[0].Identity, reports[1].Identity)
	assert.Equal(t, "x86_64", reports[2].Identity.Arch)
	assert.Equal(t, "armv7", reports[3].Identity.Arch)

	_, err = f.app.Identity(nil)
	require.ErrorIs(t, err, domain.ErrNoTargets)
	_, err = f.app.Identity([]string{"BeOS/x86"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedOS)
}

func TestApp_List(t *testing.T) {
	f := newFixture(t)
	records := []domain.PackageRecord{{Fingerprint: "a", Platform: "Linux-x86_64"}}
	f.loader.EXPECT().Load(domain.RecipeFileName).Return(recipe("/out"), nil)
	f.store.EXPECT().List("/out").Return(records, nil)

	got, err := f.app.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestApp_Clean(t *testing.T) {
	out := t.TempDir()
	root := filepath.Join(out, "Linux-x86_64-0123abcd")
	archive := root + ".tar.zst"
	for _, dir := range []string{
		filepath.Join(out, "build", "Linux-x86_64-0123abcd"),
		filepath.Join(root, "lib"),
		filepath.Join(out, ".kiln", "packages"),
	} {
		require.NoError(t, os.MkdirAll(dir, 0o750))
	}
	require.NoError(t, os.WriteFile(archive, []byte("zst"), 0o600))

	t.Run("build only", func(t *testing.T) {
		f := newFixture(t)
		f.loader.EXPECT().Load(domain.RecipeFileName).Return(recipe(out), nil)

		require.NoError(t, f.app.Clean(context.Background(), app.CleanOptions{Build: true}))
		assert.NoDirExists(t, filepath.Join(out, "build"))
		assert.DirExists(t, root)
	})

	t.Run("packages", func(t *testing.T) {
		f := newFixture(t)
		f.loader.EXPECT().Load(domain.RecipeFileName).Return(recipe(out), nil)
		f.store.EXPECT().List(out).Return([]domain.PackageRecord{{Root: root, Archive: archive}}, nil)

		require.NoError(t, f.app.Clean(context.Background(), app.CleanOptions{Packages: true}))
		assert.NoDirExists(t, root)
		assert.NoFileExists(t, archive)
		assert.NoDirExists(t, filepath.Join(out, ".kiln"))
	})
}
