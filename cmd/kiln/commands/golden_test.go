package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
)

var support = domain.SupportSources{
	Common: "/src/support-lib",
	ObjC:   "/src/support-lib/objc",
	JNI:    "/src/support-lib/jni",
}

func goldenPlan(t *testing.T, p domain.Platform, fp string, configure func(*domain.ToolchainBuilder)) domain.PackagePlan {
	t.Helper()
	b := domain.NewToolchainBuilder()
	if configure != nil {
		configure(b)
	}
	id := domain.NormalizeIdentity(p)
	dir := id.String() + "-" + fp[:8]
	return domain.PackagePlan{
		Platform:    p,
		Options:     domain.OptionSet{domain.OptionShared: "false"},
		Toolchain:   b.Build(),
		Identity:    id,
		Fingerprint: fp,
		BuildDir:    "/out/build/" + dir,
		Layout:      domain.PlanLayout(p, "/out/"+dir, "djinni", support, "/src/bin/djinni.jar"),
	}
}

func TestGolden_Plan(t *testing.T) {
	android := goldenPlan(t,
		domain.Platform{OS: domain.OSAndroid, Arch: "armv8", APILevel: "21"},
		"0123abcd89ef4567",
		func(b *domain.ToolchainBuilder) {
			require.NoError(t, b.Set("ANDROID_ABI", domain.StringValue("arm64-v8a")))
			require.NoError(t, b.Set("ANDROID_NATIVE_API_LEVEL", domain.StringValue("21")))
		},
	)
	linux := goldenPlan(t, domain.Platform{OS: domain.OSLinux, Arch: "x86_64"}, "fedcba9876543210", nil)

	mock := &mockApp{
		planFunc: func(context.Context, app.PlanOptions) ([]domain.PackagePlan, error) {
			return []domain.PackagePlan{android, linux}, nil
		},
	}

	out, err := execute(t, mock, "plan")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "plan", []byte(out))
}

func TestGolden_Identity(t *testing.T) {
	mock := &mockApp{
		identityFunc: func(targets []string) ([]app.IdentityReport, error) {
			reports := make([]app.IdentityReport, 0, len(targets))
			for _, target := range targets {
				p, err := domain.ParsePlatform(target)
				require.NoError(t, err)
				reports = append(reports, app.IdentityReport{Platform: p, Identity: domain.NormalizeIdentity(p)})
			}
			return reports, nil
		},
	}

	out, err := execute(t, mock, "identity", "iOS/armv7", "iOS/arm64", "iOS/x86_64")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "identity", []byte(out))
}

func TestGolden_List(t *testing.T) {
	ts := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	mock := &mockApp{
		listFunc: func(context.Context, string) ([]domain.PackageRecord, error) {
			return []domain.PackageRecord{
				{
					Platform:  "iOS-arm64",
					Identity:  domain.Identity{OS: domain.OSIOS, Arch: domain.AnyARM},
					Root:      "/out/iOS-AnyARM-0a1b2c3d",
					Timestamp: ts,
				},
				{
					Platform:  "Linux-x86_64",
					Identity:  domain.Identity{OS: domain.OSLinux, Arch: "x86_64"},
					Root:      "/out/Linux-x86_64-4e5f6a7b",
					Timestamp: ts.Add(time.Minute),
				},
			}, nil
		},
	}

	out, err := execute(t, mock, "list")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "list", []byte(out))
}
