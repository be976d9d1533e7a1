// Package archive packs assembled package trees into compressed tarballs.
package archive

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Archiver = (*Archiver)(nil)

// Archiver writes <root><ext> next to a package root.
type Archiver struct{}

// New creates a new Archiver.
func New() *Archiver {
	return &Archiver{}
}

// Archive packs every directory and regular file below root. Entries are
// written in lexical order, owned by root and stamped with the Unix epoch so
// that equal trees give equal archives.
func (a *Archiver) Archive(ctx context.Context, root string, format domain.ArchiveFormat) (string, error) {
	if format == domain.ArchiveNone {
		return "", nil
	}
	root = filepath.Clean(root)
	dest := root + format.Extension()
	tmp := dest + ".tmp"

	if err := a.write(ctx, root, tmp, format); err != nil {
		_ = os.Remove(tmp)
		return "", zerr.With(zerr.With(zerr.Wrap(errors.Join(domain.ErrArchiveFailed, err), "failed to write package archive"), "path", dest), "format", string(format))
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return "", zerr.With(zerr.Wrap(errors.Join(domain.ErrArchiveFailed, err), "failed to move package archive"), "path", dest)
	}
	return dest, nil
}

func (a *Archiver) write(ctx context.Context, root, dest string, format domain.ArchiveFormat) (err error) {
	//nolint:gosec // dest is derived from the package root
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, domain.FilePerm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	cw, err := compressor(f, format)
	if err != nil {
		return err
	}

	tw := tar.NewWriter(cw)
	if err := addTree(ctx, tw, root); err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return cw.Close()
}

func compressor(w io.Writer, format domain.ArchiveFormat) (io.WriteCloser, error) {
	switch format {
	case domain.ArchiveZstd:
		return zstd.NewWriter(w)
	case domain.ArchiveXZ:
		return xz.NewWriter(w)
	case domain.ArchiveGzip:
		return pgzip.NewWriter(w), nil
	case domain.ArchiveNone:
	}
	return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedArchive, "unknown archive format"), "format", string(format))
}

func addTree(ctx context.Context, tw *tar.Writer, root string) error {
	prefix := filepath.Base(root)
	epoch := time.Unix(0, 0).UTC()

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(filepath.Join(prefix, rel))
		if d.IsDir() {
			hdr.Name += "/"
		}
		hdr.Uid, hdr.Gid = 0, 0
		hdr.Uname, hdr.Gname = "root", "root"
		hdr.ModTime, hdr.AccessTime, hdr.ChangeTime = epoch, time.Time{}, time.Time{}
		hdr.Format = tar.FormatPAX

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		//nolint:gosec // path comes from walking the package root
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close() //nolint:errcheck // read-only
		_, err = io.Copy(tw, src)
		return err
	})
}
