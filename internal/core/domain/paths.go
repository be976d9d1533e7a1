package domain

import "path/filepath"

const (
	// KilnDirName is the name of the internal directory below the output root.
	KilnDirName = ".kiln"

	// StoreDirName is the name of the package record directory.
	StoreDirName = "packages"

	// LocksDirName is the name of the lock file directory.
	LocksDirName = "locks"

	// BuildDirName is the name of the directory holding per-target build trees.
	BuildDirName = "build"

	// RecipeFileName is the name of the recipe file.
	RecipeFileName = "kiln.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultStorePath returns the package record directory relative to an output root.
// It joins .kiln and packages.
func DefaultStorePath() string {
	return filepath.Join(KilnDirName, StoreDirName)
}

// DefaultLocksPath returns the lock directory relative to an output root.
// It joins .kiln and locks.
func DefaultLocksPath() string {
	return filepath.Join(KilnDirName, LocksDirName)
}
