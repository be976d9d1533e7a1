// Package config provides the recipe loader for kiln.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the recipe file looked up when no path is given.
const DefaultFilename = domain.RecipeFileName

// Defaults applied to unset recipe fields.
const (
	defaultName        = "djinni"
	defaultSupportDir  = "support-lib"
	defaultObjCDir     = "objc"
	defaultJNIDir      = "jni"
	defaultToolArchive = "bin/djinni.jar"
	defaultOutput      = "out"
	defaultBuildType   = "Release"
)

var _ ports.ConfigLoader = (*FileConfigLoader)(nil)

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	logger ports.Logger
}

// NewLoader creates a new FileConfigLoader.
func NewLoader(logger ports.Logger) *FileConfigLoader {
	return &FileConfigLoader{logger: logger}
}

// Load reads the recipe at path.
func (l *FileConfigLoader) Load(path string) (*domain.Recipe, error) {
	if path == "" {
		path = DefaultFilename
	}
	recipe, err := Load(path)
	if err != nil {
		return nil, err
	}
	if l.logger != nil && len(recipe.Targets) == 0 {
		l.logger.Warn(fmt.Sprintf("recipe %s declares no targets", path))
	}
	return recipe, nil
}

// Load reads a recipe file from the given path and returns a domain.Recipe.
func Load(path string) (*domain.Recipe, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrConfigRead, err), "failed to read config file"), "path", path)
	}

	var file Kilnfile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrConfigParse, err), "failed to parse config file"), "path", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve recipe path"), "path", path)
	}

	recipe, err := file.toRecipe(filepath.Dir(abs))
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return recipe, nil
}

func (f *Kilnfile) toRecipe(dir string) (*domain.Recipe, error) {
	name := or(f.Package.Name, defaultName)
	supportDir := resolvePath(dir, or(f.Support.Dir, defaultSupportDir))

	recipe := &domain.Recipe{
		Package: domain.PackageInfo{
			Name:        name,
			Version:     f.Package.Version,
			License:     f.Package.License,
			Description: f.Package.Description,
		},
		Namespace: or(f.Namespace, name),
		SourceDir: resolvePath(dir, or(f.Source, ".")),
		Support: domain.SupportSources{
			Common: supportDir,
			ObjC:   resolvePath(supportDir, or(f.Support.ObjC, defaultObjCDir)),
			JNI:    resolvePath(supportDir, or(f.Support.JNI, defaultJNIDir)),
		},
		ToolArchive: resolvePath(dir, or(f.ToolArchive, defaultToolArchive)),
		OutputDir:   resolvePath(dir, or(f.Output, defaultOutput)),
		Generator:   f.Generator,
		BuildType:   or(f.BuildType, defaultBuildType),
		IOS: domain.IOSSettings{
			DeploymentTarget: or(f.IOS.DeploymentTarget, domain.DefaultIOSDeploymentTarget),
			Sysroot:          or(f.IOS.Sysroot, domain.DefaultIOSSysroot),
		},
		Options: make(domain.OptionSet, len(f.Options)),
	}

	if ns := recipe.Namespace; ns == "." || ns == ".." || filepath.Base(ns) != ns {
		return nil, invalid("namespace", recipe.Namespace, "namespace must be a single folder name")
	}

	if !semver.IsValid("v" + recipe.IOS.DeploymentTarget) {
		return nil, invalid("ios.deployment_target", recipe.IOS.DeploymentTarget, "expected a version such as 10.0")
	}

	for name, value := range f.Options {
		v, err := optionValue(value)
		if err != nil {
			return nil, zerr.With(err, "option", name)
		}
		recipe.Options[name] = v
	}
	if err := recipe.Options.Validate(); err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrInvalidConfig, err), "invalid options")
	}

	for i, t := range f.Targets {
		targetOS, err := domain.ParseOS(t.OS)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrInvalidConfig, err), "invalid target"), "target", i)
		}
		p, err := domain.NewPlatform(targetOS, t.Arch, t.APILevel)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrInvalidConfig, err), "invalid target"), "target", i)
		}
		recipe.Targets = append(recipe.Targets, p)
	}

	return recipe, nil
}

// optionValue renders a scalar option. A null value is declared but unset.
func optionValue(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(v), nil
	default:
		return "", zerr.Wrap(domain.ErrInvalidConfig, "option values must be scalars")
	}
}

func invalid(field, value, msg string) error {
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidConfig, msg), "field", field), "value", value)
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
