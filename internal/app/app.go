// Package app implements the application layer for kiln.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/pipeline"
	"go.trai.ch/kiln/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	pipeline     *pipeline.Pipeline
	scheduler    *scheduler.Scheduler
	store        ports.PackageStore
	telemetry    ports.Telemetry
	logger       ports.Logger
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	pipe *pipeline.Pipeline,
	sched *scheduler.Scheduler,
	store ports.PackageStore,
	telemetry ports.Telemetry,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		pipeline:     pipe,
		scheduler:    sched,
		store:        store,
		telemetry:    telemetry,
		logger:       log,
	}
}

// PackageOptions configuration for the Package method.
type PackageOptions struct {
	ConfigPath string
	// Targets are "OS/arch[@api]" descriptors. The recipe targets are used when empty.
	Targets []string
	// Overrides are "name=value" option assignments.
	Overrides []string
	Force     bool
	Archive   string
	Jobs      int
	// Output receives the build tool output when set.
	Output io.Writer
}

// Package builds and assembles a package for every requested target.
func (a *App) Package(ctx context.Context, opts PackageOptions) ([]domain.PackageResult, error) {
	defer func() {
		if err := a.telemetry.Close(); err != nil {
			a.logger.Warn("failed to close telemetry: " + err.Error())
		}
	}()

	recipe, err := a.loadRecipe(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	targets, err := resolveTargets(recipe, opts.Targets)
	if err != nil {
		return nil, err
	}

	overrides, err := parseOverrides(opts.Overrides)
	if err != nil {
		return nil, err
	}

	format, err := domain.ParseArchiveFormat(opts.Archive)
	if err != nil {
		return nil, err
	}

	req := pipeline.Request{
		Recipe:    recipe,
		Overrides: overrides,
		Force:     opts.Force,
		Archive:   format,
		Output:    opts.Output,
	}

	results, err := a.scheduler.Run(ctx, req, targets, opts.Jobs)
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		if res.Cached {
			a.logger.Info(fmt.Sprintf("%s: up to date (%s)", res.Platform, res.Record.Root))
			continue
		}
		a.logger.Info(fmt.Sprintf("%s: packaged %d files into %s", res.Platform, len(res.Record.Checksums), res.Record.Root))
	}
	return results, nil
}

// PlanOptions configuration for the Plan method.
type PlanOptions struct {
	ConfigPath string
	Targets    []string
	Overrides  []string
}

// Plan resolves every requested target without building anything.
func (a *App) Plan(_ context.Context, opts PlanOptions) ([]domain.PackagePlan, error) {
	recipe, err := a.loadRecipe(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	targets, err := resolveTargets(recipe, opts.Targets)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, zerr.Wrap(domain.ErrNoTargets, "nothing to plan")
	}

	overrides, err := parseOverrides(opts.Overrides)
	if err != nil {
		return nil, err
	}

	plans := make([]domain.PackagePlan, 0, len(targets))
	for _, target := range targets {
		plan, err := a.pipeline.Plan(recipe, target, overrides)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// IdentityReport pairs a requested target with the identity it is published under.
type IdentityReport struct {
	Platform domain.Platform
	Identity domain.Identity
}

// Identity normalizes the given targets. It reads neither the recipe nor the disk.
func (a *App) Identity(targets []string) ([]IdentityReport, error) {
	if len(targets) == 0 {
		return nil, zerr.Wrap(domain.ErrNoTargets, "nothing to identify")
	}

	reports := make([]IdentityReport, 0, len(targets))
	for _, target := range targets {
		p, err := domain.ParsePlatform(target)
		if err != nil {
			return nil, err
		}
		reports = append(reports, IdentityReport{Platform: p, Identity: domain.NormalizeIdentity(p)})
	}
	return reports, nil
}

// List returns the packages recorded below the recipe's output root.
func (a *App) List(_ context.Context, configPath string) ([]domain.PackageRecord, error) {
	recipe, err := a.loadRecipe(configPath)
	if err != nil {
		return nil, err
	}
	return a.store.List(recipe.OutputDir)
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	ConfigPath string
	// Build removes the per-target build trees.
	Build bool
	// Packages removes the recorded package roots, their archives and the record store.
	Packages bool
}

// Clean removes build trees and packages based on the provided options.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	recipe, err := a.loadRecipe(opts.ConfigPath)
	if err != nil {
		return err
	}

	var errs error

	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, "failed to remove "+name), "path", path))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	if opts.Build {
		remove(filepath.Join(recipe.OutputDir, domain.BuildDirName), "build trees")
	}

	if opts.Packages {
		records, err := a.store.List(recipe.OutputDir)
		if err != nil {
			return zerr.Wrap(err, "failed to list packages")
		}
		for _, record := range records {
			remove(record.Root, "package "+filepath.Base(record.Root))
			if record.Archive != "" {
				remove(record.Archive, "archive "+filepath.Base(record.Archive))
			}
		}
		remove(filepath.Join(recipe.OutputDir, domain.KilnDirName), "package store")
	}

	return errs
}

func (a *App) loadRecipe(path string) (*domain.Recipe, error) {
	if path == "" {
		path = domain.RecipeFileName
	}
	recipe, err := a.configLoader.Load(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return recipe, nil
}

func resolveTargets(recipe *domain.Recipe, names []string) ([]domain.Platform, error) {
	if len(names) == 0 {
		return recipe.Targets, nil
	}
	targets := make([]domain.Platform, 0, len(names))
	for _, name := range names {
		p, err := domain.ParsePlatform(name)
		if err != nil {
			return nil, err
		}
		targets = append(targets, p)
	}
	return targets, nil
}

func parseOverrides(assignments []string) (domain.OptionSet, error) {
	overrides := make(domain.OptionSet, len(assignments))
	for _, a := range assignments {
		name, value, err := domain.ParseOptionAssignment(a)
		if err != nil {
			return nil, err
		}
		overrides[name] = value
	}
	return overrides, nil
}
