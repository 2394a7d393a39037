// Package assets copies the non-markdown files of a docs tree (images,
// downloads) into the mirrored location of a Hugo content tree.
//
// Files already present at the destination are never overwritten, so a
// second run over an unchanged tree copies nothing.
package assets

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/jingkaihe/j2hugo/pkg/logger"
	"github.com/jingkaihe/j2hugo/pkg/mirror"
)

const (
	// DefaultSrc is the relocator source root, relative to the working directory.
	DefaultSrc = "docs"
	// DefaultDst is the relocator destination root, relative to the working directory.
	DefaultDst = "content/docs"

	dirPerm = 0o755
)

// Reporter receives user-facing progress lines.
type Reporter interface {
	Success(message string)
	Info(message string)
	Error(err error, context string)
}

type nopReporter struct{}

func (nopReporter) Success(string)      {}
func (nopReporter) Info(string)         {}
func (nopReporter) Error(error, string) {}

// Relocator copies assets from Mapping.Src to Mapping.Dst.
type Relocator struct {
	mapping  mirror.Mapping
	dryRun   bool
	reporter Reporter
	filter   mirror.Filter

	// directories announced during a dry run
	planned map[string]bool
}

// Option configures a Relocator.
type Option func(*Relocator) error

// WithDryRun reports the copies without performing them.
func WithDryRun(enabled bool) Option {
	return func(r *Relocator) error {
		r.dryRun = enabled
		return nil
	}
}

// WithReporter sets where progress lines go.
func WithReporter(rep Reporter) Option {
	return func(r *Relocator) error {
		if rep == nil {
			rep = nopReporter{}
		}
		r.reporter = rep
		return nil
	}
}

// WithExclude skips files matching any of the doublestar patterns, relative
// to the source root.
func WithExclude(patterns ...string) Option {
	return func(r *Relocator) error {
		filter, err := mirror.Excluding(mirror.NonMarkdown, patterns...)
		if err != nil {
			return err
		}
		r.filter = filter
		return nil
	}
}

// New creates a Relocator for the given mapping.
func New(mapping mirror.Mapping, opts ...Option) (*Relocator, error) {
	r := &Relocator{
		mapping:  mapping,
		reporter: nopReporter{},
		filter:   mirror.NonMarkdown,
		planned:  make(map[string]bool),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, errors.Wrap(err, "failed to apply relocator option")
		}
	}
	return r, nil
}

// Run copies every non-markdown file below the source root. Copied files
// count as processed, files already at the destination as skipped.
func (r *Relocator) Run(ctx context.Context) (mirror.Result, error) {
	logger.G(ctx).WithField("src", r.mapping.Src).WithField("dst", r.mapping.Dst).Info("relocating assets")

	return mirror.Walk(ctx, r.mapping.Src, r.filter, func(ctx context.Context, path string) (bool, error) {
		copied, err := r.Relocate(ctx, path)
		if err != nil {
			logger.G(ctx).WithField("file", path).WithError(err).Error("failed to relocate asset")
			r.reporter.Error(err, "Error copy: "+path)
			return false, err
		}
		return copied, nil
	})
}

// Relocate copies the file at path to its mirrored destination unless
// something already exists there. It reports whether a copy was made.
func (r *Relocator) Relocate(ctx context.Context, path string) (bool, error) {
	target, err := r.mapping.Target(path)
	if err != nil {
		return false, err
	}
	log := logger.G(ctx).WithField("file", path).WithField("target", target)

	if _, err := os.Lstat(target); err == nil {
		log.Debug("asset already at destination")
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, errors.Wrapf(err, "failed to stat %s", target)
	}

	if err := r.ensureDir(filepath.Dir(target)); err != nil {
		return false, err
	}

	r.reporter.Success("cp " + path + " " + target)
	if r.dryRun {
		return true, nil
	}

	if err := CopyFile(path, target); err != nil {
		if errors.Is(err, os.ErrExist) {
			log.Debug("asset appeared at destination during copy")
			return false, nil
		}
		return false, err
	}
	log.Debug("copied asset")
	return true, nil
}

func (r *Relocator) ensureDir(dir string) error {
	if r.planned[dir] {
		return nil
	}
	if _, err := os.Stat(dir); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to stat %s", dir)
	}

	r.reporter.Info("mkdir " + dir)
	if r.dryRun {
		for d := dir; !r.planned[d] && r.mapping.InDst(d); d = filepath.Dir(d) {
			r.planned[d] = true
		}
		return nil
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}
	return nil
}

// CopyFile copies src to a new file dst, keeping the permission bits and
// modification time of src. It fails with an error matching os.ErrExist when
// dst already exists.
func CopyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", src)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Wrapf(err, "failed to stat %s", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", dst)
	}
	defer func() {
		if err != nil {
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "failed to copy %s to %s", src, dst)
	}
	if err = out.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", dst)
	}

	if err = os.Chmod(dst, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, "failed to set mode of %s", dst)
	}
	if err = os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return errors.Wrapf(err, "failed to set times of %s", dst)
	}
	return nil
}
