package domain

// Stage names a step of the packaging pipeline.
type Stage string

const (
	// StageResolve covers option filtering, environment capture and toolchain resolution.
	StageResolve Stage = "resolve"
	// StageBuild covers the external configure and build.
	StageBuild Stage = "build"
	// StageAssemble covers realizing the package layout.
	StageAssemble Stage = "assemble"
	// StageChecksum covers hashing the package contents.
	StageChecksum Stage = "checksum"
	// StageArchive covers compressing the package.
	StageArchive Stage = "archive"
	// StageRecord covers persisting the package record.
	StageRecord Stage = "record"
)

// LogLevel represents the severity of a log message, mirroring the standard slog levels.
type LogLevel int

const (
	// LogLevelDebug represents debug-level verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}
