// Package mirror maps files from a source tree onto a destination tree with
// the same relative layout, and walks source trees on behalf of the post
// converter and the asset relocator.
package mirror

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Mapping re-roots paths found under Src onto Dst.
type Mapping struct {
	Src string
	Dst string
}

// NewMapping returns a Mapping between two roots. Both roots are cleaned and,
// when abs is true, resolved to absolute paths.
func NewMapping(src, dst string, abs bool) (Mapping, error) {
	if abs {
		var err error
		if src, err = filepath.Abs(src); err != nil {
			return Mapping{}, errors.Wrapf(err, "failed to resolve source root %s", src)
		}
		if dst, err = filepath.Abs(dst); err != nil {
			return Mapping{}, errors.Wrapf(err, "failed to resolve destination root %s", dst)
		}
	}
	return Mapping{Src: filepath.Clean(src), Dst: filepath.Clean(dst)}, nil
}

// Dir returns the destination directory for the source file at path.
func (m Mapping) Dir(path string) (string, error) {
	rel, err := filepath.Rel(m.Src, filepath.Dir(path))
	if err != nil {
		return "", errors.Wrapf(err, "failed to relate %s to %s", path, m.Src)
	}
	if escapes(rel) {
		return "", errors.Errorf("%s is outside of %s", path, m.Src)
	}
	return filepath.Join(m.Dst, rel), nil
}

// Target returns the destination path for the source file at path, keeping
// its base name.
func (m Mapping) Target(path string) (string, error) {
	dir, err := m.Dir(path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.Base(path)), nil
}

// InDst reports whether path is the destination root or lies below it.
func (m Mapping) InDst(path string) bool {
	rel, err := filepath.Rel(m.Dst, filepath.Clean(path))
	if err != nil {
		return false
	}
	return !escapes(rel)
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
