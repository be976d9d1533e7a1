package config

// Kilnfile represents the structure of the kiln.yaml recipe file.
type Kilnfile struct {
	Version     string         `yaml:"version"`
	Package     PackageDTO     `yaml:"package"`
	Namespace   string         `yaml:"namespace"`
	Source      string         `yaml:"source"`
	Support     SupportDTO     `yaml:"support"`
	ToolArchive string         `yaml:"tool_archive"`
	Output      string         `yaml:"output"`
	Generator   string         `yaml:"generator"`
	BuildType   string         `yaml:"build_type"`
	IOS         IOSDTO         `yaml:"ios"`
	Options     map[string]any `yaml:"options"`
	Targets     []TargetDTO    `yaml:"targets"`
}

// PackageDTO describes the package being produced.
type PackageDTO struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	License     string `yaml:"license"`
	Description string `yaml:"description"`
}

// SupportDTO locates the support sources. ObjC and JNI are relative to Dir.
type SupportDTO struct {
	Dir  string `yaml:"dir"`
	ObjC string `yaml:"objc"`
	JNI  string `yaml:"jni"`
}

// IOSDTO pins the Apple device toolchain.
type IOSDTO struct {
	DeploymentTarget string `yaml:"deployment_target"`
	Sysroot          string `yaml:"sysroot"`
}

// TargetDTO is one requested platform.
type TargetDTO struct {
	OS       string `yaml:"os"`
	Arch     string `yaml:"arch"`
	APILevel string `yaml:"api_level"`
}
