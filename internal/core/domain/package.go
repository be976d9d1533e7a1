package domain

import (
	"io"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

// BuildRequest is everything the external build system needs for one invocation.
type BuildRequest struct {
	SourceDir string
	BuildDir  string
	Generator string
	BuildType string
	Toolchain ToolchainConfig
	// Output receives the build tool's combined output as it is produced.
	Output io.Writer
}

// BuildOutput is the tree produced by the external build system.
type BuildOutput struct {
	Dir string
}

// ArchiveFormat selects the compression of a package archive.
type ArchiveFormat string

const (
	// ArchiveNone disables archiving.
	ArchiveNone ArchiveFormat = ""
	// ArchiveZstd writes a .tar.zst archive.
	ArchiveZstd ArchiveFormat = "zst"
	// ArchiveXZ writes a .tar.xz archive.
	ArchiveXZ ArchiveFormat = "xz"
	// ArchiveGzip writes a .tar.gz archive.
	ArchiveGzip ArchiveFormat = "gz"
)

// ParseArchiveFormat validates an archive format name.
func ParseArchiveFormat(s string) (ArchiveFormat, error) {
	switch f := ArchiveFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ArchiveNone, ArchiveZstd, ArchiveXZ, ArchiveGzip:
		return f, nil
	case "zstd":
		return ArchiveZstd, nil
	case "gzip":
		return ArchiveGzip, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrUnsupportedArchive, "unknown archive format"), "format", s)
	}
}

// Extension returns the file suffix of the archive format.
func (f ArchiveFormat) Extension() string {
	if f == ArchiveNone {
		return ""
	}
	return ".tar." + string(f)
}

// PackagePlan is everything decided about a target before anything is built.
type PackagePlan struct {
	Platform    Platform
	Options     OptionSet
	Toolchain   ToolchainConfig
	Identity    Identity
	Inputs      BuildInputs
	Fingerprint string
	BuildDir    string
	Layout      LayoutPlan
}

// PackageRecord is the persisted outcome of a successful packaging run.
type PackageRecord struct {
	Fingerprint string            `json:"fingerprint"`
	Identity    Identity          `json:"identity"`
	Platform    string            `json:"platform"`
	Options     OptionSet         `json:"options"`
	Inputs      BuildInputs       `json:"inputs"`
	Root        string            `json:"root"`
	Archive     string            `json:"archive,omitempty"`
	Metadata    PackageMetadata   `json:"metadata"`
	Checksums   map[string]string `json:"checksums"`
	Timestamp   time.Time         `json:"timestamp"`
}

// PackageResult reports the outcome for one requested target.
type PackageResult struct {
	Platform Platform
	Record   PackageRecord
	// Cached is true when an existing package was reused.
	Cached bool
}
