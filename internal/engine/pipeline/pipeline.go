// Package pipeline runs the resolve, build, assemble and record stages for one target.
package pipeline

import (
	"context"
	"errors"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/toolchain"
	"go.trai.ch/zerr"
)

// Request carries the per-invocation choices of a packaging run.
type Request struct {
	Recipe *domain.Recipe
	// Overrides are applied on top of the recipe options.
	Overrides domain.OptionSet
	// Force discards an existing package root instead of reusing or rejecting it.
	Force bool
	// Archive selects the archive written next to the package root.
	Archive domain.ArchiveFormat
	// Output additionally receives the build tool output when set.
	Output io.Writer
}

// Pipeline packages one target at a time. It is safe for concurrent use as
// long as concurrent runs target different package roots.
type Pipeline struct {
	env       ports.EnvironmentReader
	builder   ports.BuildSystem
	assembler ports.Assembler
	verifier  ports.Verifier
	hasher    ports.Hasher
	archiver  ports.Archiver
	store     ports.PackageStore
	locker    ports.Locker
	telemetry ports.Telemetry
	logger    ports.Logger
	now       func() time.Time
}

// New creates a new Pipeline.
func New(
	env ports.EnvironmentReader,
	builder ports.BuildSystem,
	assembler ports.Assembler,
	verifier ports.Verifier,
	hasher ports.Hasher,
	archiver ports.Archiver,
	store ports.PackageStore,
	locker ports.Locker,
	telemetry ports.Telemetry,
	logger ports.Logger,
) *Pipeline {
	return &Pipeline{
		env:       env,
		builder:   builder,
		assembler: assembler,
		verifier:  verifier,
		hasher:    hasher,
		archiver:  archiver,
		store:     store,
		locker:    locker,
		telemetry: telemetry,
		logger:    logger,
		now:       time.Now,
	}
}

// Plan decides everything about a target without touching the disk: the
// applicable options, the toolchain variables, the identity and the layout.
// The environment is read once, here.
func (p *Pipeline) Plan(recipe *domain.Recipe, platform domain.Platform, overrides domain.OptionSet) (domain.PackagePlan, error) {
	opts := domain.ConfigureOptions(platform, recipe.Options.Merge(overrides))
	if err := opts.Validate(); err != nil {
		return domain.PackagePlan{}, failure(err, platform, domain.StageResolve)
	}

	resolver := toolchain.New(toolchain.Settings{
		FlagPrefix:       recipe.FlagPrefix(),
		DeploymentTarget: recipe.IOS.DeploymentTarget,
		IOSSysroot:       recipe.IOS.Sysroot,
	})
	cfg, err := resolver.Resolve(platform, opts, p.env.Read())
	if err != nil {
		return domain.PackagePlan{}, failure(err, platform, domain.StageResolve)
	}

	id := domain.NormalizeIdentity(platform)
	inputs := domain.NewBuildInputs(cfg, recipe.Generator, recipe.BuildType, recipe.Namespace)
	fp := domain.Fingerprint(platform, opts, inputs)
	dir := domain.PackageDirName(id, fp)

	return domain.PackagePlan{
		Platform:    platform,
		Options:     opts,
		Toolchain:   cfg,
		Identity:    id,
		Inputs:      inputs,
		Fingerprint: fp,
		BuildDir:    filepath.Join(recipe.OutputDir, domain.BuildDirName, dir),
		Layout: domain.PlanLayout(
			platform,
			filepath.Join(recipe.OutputDir, dir),
			recipe.Namespace,
			recipe.Support,
			recipe.ToolArchive,
		),
	}, nil
}

// Run builds and assembles a planned target, stopping at the first failing
// stage. A package recorded under the same fingerprint whose files are all
// still present is reused unless req.Force is set.
func (p *Pipeline) Run(ctx context.Context, req Request, plan domain.PackagePlan) (domain.PackageResult, error) {
	recipe := req.Recipe
	result := domain.PackageResult{Platform: plan.Platform}

	if !req.Force {
		if record, ok := p.reusable(recipe.OutputDir, plan); ok {
			_, v := p.telemetry.Record(ctx, string(domain.StageBuild), ports.WithGroup(plan.Platform.String()))
			v.Cached()
			v.Complete(nil)
			p.logger.Info("reusing " + record.Root + " for " + plan.Platform.String())

			if req.Archive != domain.ArchiveNone && !p.archived(*record, req.Archive) {
				if err := p.archiveRecord(ctx, req, plan, record); err != nil {
					return result, err
				}
			}
			result.Record = *record
			result.Cached = true
			return result, nil
		}
	}

	unlock, err := p.lock(recipe, plan)
	if err != nil {
		return result, err
	}
	defer unlock()

	if req.Force {
		if err := p.assembler.Remove(plan.Layout.Root); err != nil {
			return result, failure(err, plan.Platform, domain.StageAssemble)
		}
	}

	var out domain.BuildOutput
	err = p.stage(ctx, plan, domain.StageBuild, func(ctx context.Context, v ports.Vertex) error {
		var sink io.Writer = v.Stdout()
		if req.Output != nil {
			sink = io.MultiWriter(sink, req.Output)
		}
		var err error
		out, err = p.builder.Build(ctx, domain.BuildRequest{
			SourceDir: recipe.SourceDir,
			BuildDir:  plan.BuildDir,
			Generator: recipe.Generator,
			BuildType: recipe.BuildType,
			Toolchain: plan.Toolchain,
			Output:    sink,
		})
		return err
	})
	if err != nil {
		return result, err
	}

	var layout domain.PackageLayout
	err = p.stage(ctx, plan, domain.StageAssemble, func(ctx context.Context, _ ports.Vertex) error {
		var err error
		layout, err = p.assembler.Assemble(ctx, plan.Layout, out)
		return err
	})
	if err != nil {
		return result, err
	}

	record := domain.PackageRecord{
		Fingerprint: plan.Fingerprint,
		Identity:    plan.Identity,
		Platform:    plan.Platform.String(),
		Options:     plan.Options.Clone(),
		Inputs:      plan.Inputs,
		Root:        layout.Root,
		Metadata:    domain.NewPackageMetadata(recipe.Package, layout),
	}

	err = p.stage(ctx, plan, domain.StageChecksum, func(context.Context, ports.Vertex) error {
		var err error
		record.Checksums, err = p.hasher.Checksums(layout.Root)
		return err
	})
	if err != nil {
		return result, err
	}

	if req.Archive != domain.ArchiveNone {
		err = p.stage(ctx, plan, domain.StageArchive, func(ctx context.Context, _ ports.Vertex) error {
			var err error
			record.Archive, err = p.archiver.Archive(ctx, layout.Root, req.Archive)
			return err
		})
		if err != nil {
			return result, err
		}
	}

	record.Timestamp = p.now().UTC()
	err = p.stage(ctx, plan, domain.StageRecord, func(context.Context, ports.Vertex) error {
		return p.store.Put(recipe.OutputDir, record)
	})
	if err != nil {
		return result, err
	}

	result.Record = record
	return result, nil
}

// archiveRecord writes the requested archive of an already recorded package
// and records its path.
func (p *Pipeline) archiveRecord(ctx context.Context, req Request, plan domain.PackagePlan, record *domain.PackageRecord) error {
	unlock, err := p.lock(req.Recipe, plan)
	if err != nil {
		return err
	}
	defer unlock()

	updated := *record
	err = p.stage(ctx, plan, domain.StageArchive, func(ctx context.Context, _ ports.Vertex) error {
		var err error
		updated.Archive, err = p.archiver.Archive(ctx, record.Root, req.Archive)
		return err
	})
	if err != nil {
		return err
	}

	err = p.stage(ctx, plan, domain.StageRecord, func(context.Context, ports.Vertex) error {
		return p.store.Put(req.Recipe.OutputDir, updated)
	})
	if err != nil {
		return err
	}
	*record = updated
	return nil
}

// archived reports whether the record points at an existing archive of format.
func (p *Pipeline) archived(record domain.PackageRecord, format domain.ArchiveFormat) bool {
	if record.Archive == "" || !strings.HasSuffix(record.Archive, format.Extension()) {
		return false
	}
	ok, err := p.verifier.VerifyOutputs(filepath.Dir(record.Archive), []string{filepath.Base(record.Archive)})
	if err != nil {
		p.logger.Error(err)
		return false
	}
	return ok
}

// lock takes the lock of the plan's package root. The returned function
// releases it.
func (p *Pipeline) lock(recipe *domain.Recipe, plan domain.PackagePlan) (func(), error) {
	lockPath := filepath.Join(recipe.OutputDir, domain.DefaultLocksPath(), filepath.Base(plan.Layout.Root)+".lock")
	unlock, err := p.locker.Lock(lockPath)
	if err != nil {
		return nil, failure(err, plan.Platform, domain.StageAssemble)
	}
	return func() {
		if uerr := unlock(); uerr != nil {
			p.logger.Warn("failed to release lock " + lockPath + ": " + uerr.Error())
		}
	}, nil
}

// reusable returns the stored record for the plan if every recorded file is
// still in place.
func (p *Pipeline) reusable(output string, plan domain.PackagePlan) (*domain.PackageRecord, bool) {
	record, err := p.store.Get(output, plan.Fingerprint)
	if err != nil {
		if errors.Is(err, domain.ErrStoreCorrupted) {
			p.logger.Warn("ignoring corrupted package record for " + plan.Platform.String())
			return nil, false
		}
		p.logger.Error(err)
		return nil, false
	}
	if record == nil || record.Root != plan.Layout.Root || !record.Inputs.Equal(plan.Inputs) {
		return nil, false
	}

	files := slices.Sorted(maps.Keys(record.Checksums))
	ok, err := p.verifier.VerifyOutputs(record.Root, files)
	if err != nil {
		p.logger.Error(err)
		return nil, false
	}
	return record, ok && len(files) > 0
}

func (p *Pipeline) stage(ctx context.Context, plan domain.PackagePlan, stage domain.Stage, fn func(context.Context, ports.Vertex) error) error {
	ctx, v := p.telemetry.Record(ctx, string(stage), ports.WithGroup(plan.Platform.String()))
	err := fn(ctx, v)
	v.Complete(err)
	if err != nil {
		return failure(err, plan.Platform, stage)
	}
	return nil
}

// failure tags err with the target and the stage it failed in.
func failure(err error, platform domain.Platform, stage domain.Stage) error {
	wrapped := zerr.Wrap(err, "packaging "+platform.String()+" failed")
	wrapped = zerr.With(wrapped, "os", string(platform.OS))
	wrapped = zerr.With(wrapped, "arch", platform.Arch)
	return zerr.With(wrapped, "stage", string(stage))
}
