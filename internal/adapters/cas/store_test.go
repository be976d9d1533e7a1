package cas_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/cas"
	"go.trai.ch/kiln/internal/core/domain"
)

func record(platform, fingerprint string) domain.PackageRecord {
	return domain.PackageRecord{
		Fingerprint: fingerprint,
		Identity:    domain.Identity{OS: domain.OSIOS, Arch: domain.AnyARM},
		Platform:    platform,
		Options:     domain.OptionSet{domain.OptionShared: "false"},
		Root:        "/out/iOS-AnyARM-" + fingerprint[:8],
		Metadata: domain.PackageMetadata{
			Name:        "djinni",
			Libs:        []string{"djinni"},
			IncludeDirs: []string{"include"},
		},
		Checksums: map[string]string{"lib/libdjinni.a": "ab"},
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestStore_PutAndGet(t *testing.T) {
	root := t.TempDir()
	store := cas.NewStore()

	want := record("iOS-arm64", "0123456789abcdef")
	require.NoError(t, store.Put(root, want))

	got, err := store.Get(root, want.Fingerprint)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	assert.FileExists(t, filepath.Join(root, ".kiln", "packages", "0123456789abcdef.json"))
	assert.NoFileExists(t, filepath.Join(root, ".kiln", "packages", "0123456789abcdef.json.tmp"))
}

func TestStore_GetMissing(t *testing.T) {
	got, err := cas.NewStore().Get(t.TempDir(), "fedcba9876543210")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_PutReplaces(t *testing.T) {
	root := t.TempDir()
	store := cas.NewStore()

	first := record("iOS-arm64", "0123456789abcdef")
	second := record("iOS-armv7", "0123456789abcdef")
	require.NoError(t, store.Put(root, first))
	require.NoError(t, store.Put(root, second))

	got, err := store.Get(root, first.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, "iOS-armv7", got.Platform)
}

func TestStore_Corrupted(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".kiln", "packages")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0123456789abcdef.json"), []byte("{not json"), 0o600))

	_, err := cas.NewStore().Get(root, "0123456789abcdef")
	assert.ErrorIs(t, err, domain.ErrStoreCorrupted)

	_, err = cas.NewStore().List(root)
	assert.ErrorIs(t, err, domain.ErrStoreCorrupted)
}

func TestStore_List(t *testing.T) {
	root := t.TempDir()
	store := cas.NewStore()

	records, err := store.List(root)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, store.Put(root, record("iOS-x86_64", "1111111111111111")))
	require.NoError(t, store.Put(root, record("Android-armv7", "2222222222222222")))

	records, err = store.List(root)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Android-armv7", records[0].Platform)
	assert.Equal(t, "iOS-x86_64", records[1].Platform)
}

func TestStore_PutRequiresFingerprint(t *testing.T) {
	assert.Error(t, cas.NewStore().Put(t.TempDir(), domain.PackageRecord{}))
}
