package fs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

var _ ports.Assembler = (*Assembler)(nil)

// Assembler realizes a domain.LayoutPlan on disk.
type Assembler struct {
	walker *Walker
	logger ports.Logger
}

// NewAssembler creates a new Assembler.
func NewAssembler(walker *Walker, logger ports.Logger) *Assembler {
	return &Assembler{walker: walker, logger: logger}
}

// Assemble creates the planned folders, copies the support headers, flattens
// the libraries found in out and copies the tool archive into bin.
//
// The namespace folder is created exclusively: if it already exists the call
// fails with domain.ErrLayoutConflict before anything is written. A failure
// later on may leave a partial tree behind.
func (a *Assembler) Assemble(ctx context.Context, plan domain.LayoutPlan, out domain.BuildOutput) (domain.PackageLayout, error) {
	if err := a.createFolders(plan); err != nil {
		return domain.PackageLayout{}, err
	}

	files := make([]string, 0, 16)

	for _, set := range plan.Headers {
		if err := ctx.Err(); err != nil {
			return domain.PackageLayout{}, err
		}
		copied, err := a.copyHeaders(plan.Root, set)
		if err != nil {
			return domain.PackageLayout{}, err
		}
		files = append(files, copied...)
	}

	libs, err := a.flattenLibraries(ctx, plan, out)
	if err != nil {
		return domain.PackageLayout{}, err
	}
	files = append(files, libs...)

	if plan.ToolArchive != "" {
		rel := path.Join(domain.BinDir, filepath.Base(plan.ToolArchive))
		if err := copyFile(plan.ToolArchive, filepath.Join(plan.Root, filepath.FromSlash(rel))); err != nil {
			return domain.PackageLayout{}, copyFailed(err, "failed to copy tool archive", plan.ToolArchive)
		}
		files = append(files, rel)
	}

	slices.Sort(files)
	return domain.PackageLayout{
		Root:    plan.Root,
		Folders: slices.Clone(plan.Folders),
		Files:   slices.Compact(files),
	}, nil
}

// Remove deletes a package root and everything below it.
func (a *Assembler) Remove(root string) error {
	if err := os.RemoveAll(root); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove package root"), "path", root)
	}
	return nil
}

func (a *Assembler) createFolders(plan domain.LayoutPlan) error {
	ns := plan.NamespaceDir()
	nsPath := filepath.Join(plan.Root, filepath.FromSlash(ns))

	if err := os.MkdirAll(filepath.Dir(nsPath), dirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create include folder"), "path", filepath.Dir(nsPath))
	}
	if err := os.Mkdir(nsPath, dirPerm); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return zerr.With(zerr.Wrap(domain.ErrLayoutConflict, "namespace folder already exists"), "path", nsPath)
		}
		return zerr.With(zerr.Wrap(err, "failed to create namespace folder"), "path", nsPath)
	}

	for _, folder := range plan.Folders {
		if folder == ns {
			continue
		}
		p := filepath.Join(plan.Root, filepath.FromSlash(folder))
		if err := os.MkdirAll(p, dirPerm); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to create package folder"), "path", p)
		}
	}
	return nil
}

func (a *Assembler) copyHeaders(root string, set domain.HeaderSet) ([]string, error) {
	sources, err := a.walker.ListFiles(set.Source, set.Ext)
	if err != nil {
		return nil, copyFailed(err, "failed to read header folder", set.Source)
	}

	copied := make([]string, 0, len(sources))
	for _, src := range sources {
		rel := path.Join(set.Dest, filepath.Base(src))
		if err := copyFile(src, filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			return nil, copyFailed(err, "failed to copy header", src)
		}
		copied = append(copied, rel)
	}
	return copied, nil
}

func (a *Assembler) flattenLibraries(ctx context.Context, plan domain.LayoutPlan, out domain.BuildOutput) ([]string, error) {
	if out.Dir == "" {
		return nil, nil
	}

	seen := make(map[string]string)
	var placed []string
	for src, err := range a.walker.WalkFiles(out.Dir) {
		if err != nil {
			return nil, copyFailed(err, "failed to walk build output", out.Dir)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := filepath.Base(src)
		dest, ok := plan.LibraryDest(name)
		if !ok {
			continue
		}

		rel := path.Join(dest, name)
		if first, dup := seen[rel]; dup {
			a.logger.Warn("skipping duplicate library " + src + ", keeping " + first)
			continue
		}
		seen[rel] = src

		if err := copyFile(src, filepath.Join(plan.Root, filepath.FromSlash(rel))); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to copy library"), "path", src)
		}
		placed = append(placed, rel)
	}
	return placed, nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src) //nolint:gosec // paths come from the recipe
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // read-only

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()|filePerm) //nolint:gosec // dst is inside the package root
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

func copyFailed(err error, msg, src string) error {
	return zerr.With(zerr.Wrap(errors.Join(domain.ErrCopyFailed, err), msg), "path", src)
}
