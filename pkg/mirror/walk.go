package mirror

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/jingkaihe/j2hugo/pkg/logger"
)

// MarkdownExt is the extension that marks a file as a post.
const MarkdownExt = ".md"

// Filter decides whether a file is handed to the FileFunc. rel is the
// slash-separated path of the file relative to the walk root.
type Filter func(rel string) bool

// FileFunc handles a single selected file. It reports whether it changed
// anything; files it leaves alone are counted as skipped.
type FileFunc func(ctx context.Context, path string) (bool, error)

// FileError records the failure of a single file.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Result accumulates the outcome of a walk.
type Result struct {
	Processed int
	Skipped   int
	errs      *multierror.Error
}

// Fail records a per-file error.
func (r *Result) Fail(path string, err error) {
	r.errs = multierror.Append(r.errs, &FileError{Path: path, Err: err})
}

// Errors returns the per-file errors in walk order.
func (r *Result) Errors() []error {
	return r.errs.WrappedErrors()
}

// ErrorCount returns how many files failed.
func (r *Result) ErrorCount() int {
	return len(r.errs.WrappedErrors())
}

// Err returns the combined per-file errors, or nil when every file succeeded.
func (r *Result) Err() error {
	return r.errs.ErrorOrNil()
}

// Markdown selects files with the markdown extension.
func Markdown(rel string) bool {
	return filepath.Ext(rel) == MarkdownExt
}

// NonMarkdown selects every file that is not markdown.
func NonMarkdown(rel string) bool {
	return !Markdown(rel)
}

// Excluding wraps f so that files matching any of the doublestar patterns
// are never selected.
func Excluding(f Filter, patterns ...string) (Filter, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid exclude pattern %q", p)
		}
	}
	if len(patterns) == 0 {
		return f, nil
	}
	return func(rel string) bool {
		for _, p := range patterns {
			if doublestar.MatchUnvalidated(p, rel) {
				return false
			}
		}
		return f(rel)
	}, nil
}

// Walk visits every regular file under root in lexical order, passing the
// ones accepted by filter to fn. Per-file errors are recorded in the returned
// Result and never stop the walk. The returned error is non-nil only when the
// root cannot be read or ctx is cancelled.
func Walk(ctx context.Context, root string, filter Filter, fn FileFunc) (Result, error) {
	var result Result

	info, err := os.Stat(root)
	if err != nil {
		return result, errors.Wrapf(err, "failed to access source root %s", root)
	}
	if !info.IsDir() {
		return result, errors.Errorf("source root %s is not a directory", root)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			logger.G(ctx).WithField("file", path).WithError(walkErr).Warn("failed to read path during walk")
			result.Fail(path, walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			result.Fail(path, err)
			return nil
		}
		if !filter(filepath.ToSlash(rel)) {
			return nil
		}

		changed, err := fn(ctx, path)
		switch {
		case err != nil:
			result.Fail(path, err)
		case changed:
			result.Processed++
		default:
			result.Skipped++
		}
		return nil
	})
	if err != nil {
		return result, errors.Wrapf(err, "walk of %s aborted", root)
	}

	return result, nil
}
