package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/j2hugo/pkg/mirror"
)

var testModTime = time.Date(2022, 9, 14, 10, 11, 12, 0, time.UTC)

type recorder struct {
	successes []string
	infos     []string
	errors    []string
}

func (r *recorder) Success(message string) { r.successes = append(r.successes, message) }
func (r *recorder) Info(message string)    { r.infos = append(r.infos, message) }
func (r *recorder) Error(err error, context string) {
	r.errors = append(r.errors, context+": "+err.Error())
}

func writeAsset(t *testing.T, root, rel, content string, perm os.FileMode) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), perm))
	require.NoError(t, os.Chmod(p, perm))
	require.NoError(t, os.Chtimes(p, testModTime, testModTime))
	return p
}

func newTestRelocator(t *testing.T, opts ...Option) (*Relocator, string, string, *recorder) {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, DefaultSrc)
	dst := filepath.Join(dir, filepath.FromSlash(DefaultDst))
	require.NoError(t, os.MkdirAll(src, 0o755))

	mapping, err := mirror.NewMapping(src, dst, false)
	require.NoError(t, err)

	rec := &recorder{}
	r, err := New(mapping, append([]Option{WithReporter(rec)}, opts...)...)
	require.NoError(t, err)
	return r, src, dst, rec
}

func TestRunCopiesAssets(t *testing.T) {
	r, src, dst, rec := newTestRelocator(t)

	logo := writeAsset(t, src, "a/images/logo.png", "png", 0o644)
	script := writeAsset(t, src, "a/run.sh", "#!/bin/sh", 0o755)
	writeAsset(t, src, "a/post.md", "# Post", 0o644)

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 0, result.Skipped)
	assert.NoError(t, result.Err())

	copiedLogo := filepath.Join(dst, "a", "images", "logo.png")
	copiedScript := filepath.Join(dst, "a", "run.sh")

	data, err := os.ReadFile(copiedLogo)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	info, err := os.Stat(copiedScript)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(testModTime))

	assert.NoFileExists(t, filepath.Join(dst, "a", "post.md"))

	assert.Equal(t, []string{
		"mkdir " + filepath.Join(dst, "a", "images"),
	}, rec.infos)
	assert.Equal(t, []string{
		"cp " + logo + " " + copiedLogo,
		"cp " + script + " " + copiedScript,
	}, rec.successes)
}

func TestRunIsIdempotent(t *testing.T) {
	r, src, dst, rec := newTestRelocator(t)

	writeAsset(t, src, "a/logo.png", "png", 0o644)
	writeAsset(t, src, "b/c/diagram.svg", "svg", 0o644)

	first, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Processed)

	rec.successes, rec.infos = nil, nil

	second, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
	assert.Equal(t, 2, second.Skipped)
	assert.Empty(t, rec.successes)
	assert.Empty(t, rec.infos)
	assert.FileExists(t, filepath.Join(dst, "b", "c", "diagram.svg"))
}

func TestRunNeverOverwrites(t *testing.T) {
	r, src, dst, _ := newTestRelocator(t)

	writeAsset(t, src, "logo.png", "new", 0o644)
	require.NoError(t, os.MkdirAll(dst, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dst, "logo.png"), []byte("old"), 0o644))

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)

	data, err := os.ReadFile(filepath.Join(dst, "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestRunDryRun(t *testing.T) {
	r, src, dst, rec := newTestRelocator(t, WithDryRun(true))

	writeAsset(t, src, "a/b/one.png", "1", 0o644)
	writeAsset(t, src, "a/two.png", "2", 0o644)

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)

	assert.NoDirExists(t, dst)
	assert.Equal(t, []string{"mkdir " + filepath.Join(dst, "a", "b")}, rec.infos)
	assert.Len(t, rec.successes, 2)
}

func TestRunExclude(t *testing.T) {
	r, src, dst, _ := newTestRelocator(t, WithExclude("**/.DS_Store"))

	writeAsset(t, src, "a/.DS_Store", "junk", 0o644)
	writeAsset(t, src, "a/logo.png", "png", 0o644)

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.NoFileExists(t, filepath.Join(dst, "a", ".DS_Store"))
}

func TestRunMissingSource(t *testing.T) {
	mapping, err := mirror.NewMapping(filepath.Join(t.TempDir(), "missing"), t.TempDir(), false)
	require.NoError(t, err)

	r, err := New(mapping)
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	assert.Error(t, err)
}

func TestNewInvalidExclude(t *testing.T) {
	mapping, err := mirror.NewMapping("docs", "content/docs", false)
	require.NoError(t, err)

	_, err = New(mapping, WithExclude("["))
	assert.Error(t, err)
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := writeAsset(t, dir, "src.bin", "payload", 0o600)
	dst := filepath.Join(dir, "dst.bin")

	require.NoError(t, CopyFile(src, dst))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(testModTime))

	err = CopyFile(src, dst)
	assert.True(t, errors.Is(err, os.ErrExist))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	err = CopyFile(filepath.Join(dir, "missing"), filepath.Join(dir, "other"))
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "other"))
}
