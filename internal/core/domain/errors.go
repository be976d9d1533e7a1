package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

var (
	// ErrMissingEnvironment is returned when a required environment value is absent.
	ErrMissingEnvironment = zerr.New("missing environment")

	// ErrBuildFailed is returned when the external build system reports failure.
	ErrBuildFailed = zerr.New("build failed")

	// ErrLayoutConflict is returned when the package layout target already exists.
	ErrLayoutConflict = zerr.New("layout conflict")

	// ErrCopyFailed is returned when a required header or tool archive cannot be copied.
	ErrCopyFailed = zerr.New("copy failed")
)

var (
	// ErrUnsupportedOS is returned when an operating system name is not recognized.
	ErrUnsupportedOS = zerr.New("unsupported operating system")

	// ErrInvalidPlatform is returned when a platform descriptor is malformed.
	ErrInvalidPlatform = zerr.New("invalid platform")

	// ErrUnknownOption is returned when an option name is not recognized.
	ErrUnknownOption = zerr.New("unknown option")

	// ErrInvalidOption is returned when an option value is not acceptable.
	ErrInvalidOption = zerr.New("invalid option value")

	// ErrToolchainConflict is returned when a toolchain variable is assigned two different values.
	ErrToolchainConflict = zerr.New("conflicting toolchain variable")

	// ErrNoTargets is returned when nothing was requested.
	ErrNoTargets = zerr.New("no targets specified")

	// ErrConfigRead is returned when the recipe file cannot be read.
	ErrConfigRead = zerr.New("failed to read recipe")

	// ErrConfigParse is returned when the recipe file is not valid YAML.
	ErrConfigParse = zerr.New("failed to parse recipe")

	// ErrInvalidConfig is returned when the recipe fails validation.
	ErrInvalidConfig = zerr.New("invalid recipe")

	// ErrStoreCorrupted is returned when the package record store cannot be decoded.
	ErrStoreCorrupted = zerr.New("package store corrupted")

	// ErrUnsupportedArchive is returned for an unknown archive format.
	ErrUnsupportedArchive = zerr.New("unsupported archive format")

	// ErrArchiveFailed is returned when writing a package archive fails.
	ErrArchiveFailed = zerr.New("archive failed")

	// ErrLocked is returned when another process holds the package root.
	ErrLocked = zerr.New("package root is locked")
)

// Kind names used when reporting pipeline failures.
const (
	KindMissingEnvironment = "MissingEnvironment"
	KindBuildFailed        = "BuildFailed"
	KindLayoutConflict     = "LayoutConflict"
	KindCopyFailed         = "CopyFailed"
)

// ErrorKind returns the pipeline error kind carried by err, or "" if err is
// not one of the pipeline failure kinds.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingEnvironment):
		return KindMissingEnvironment
	case errors.Is(err, ErrBuildFailed):
		return KindBuildFailed
	case errors.Is(err, ErrLayoutConflict):
		return KindLayoutConflict
	case errors.Is(err, ErrCopyFailed):
		return KindCopyFailed
	default:
		return ""
	}
}
