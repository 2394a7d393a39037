// Package convert turns a tree of Jekyll posts into a Hugo content tree.
//
// Each post goes through one pass: read, split front matter, derive date and
// title, rewrite the body, normalise front matter, make sure the output
// directory exists (writing a section index for new sections) and write the
// result. A failure at any step abandons that file only.
package convert

import (
	"bytes"
	"context"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aymanbagabas/go-udiff"
	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"

	"github.com/jingkaihe/j2hugo/pkg/frontmatter"
	"github.com/jingkaihe/j2hugo/pkg/logger"
	"github.com/jingkaihe/j2hugo/pkg/mirror"
	"github.com/jingkaihe/j2hugo/pkg/rewrite"
	"github.com/jingkaihe/j2hugo/pkg/title"
)

const (
	// ReadmeName is renamed to IndexName in the output.
	ReadmeName = "README.md"
	// IndexName is Hugo's section landing page.
	IndexName = "_index.md"
	// LicenseName is never converted, wherever it appears in the tree.
	LicenseName = "LICENSE.md"

	filePerm = 0o644
	dirPerm  = 0o755
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

// Converter converts markdown posts from Mapping.Src into Mapping.Dst.
type Converter struct {
	mapping          mirror.Mapping
	transformer      *rewrite.Transformer
	section          *SectionIndex
	exclude          []string
	filter           mirror.Filter
	dateFromFilename bool
	diff             bool
	dryRun           bool
	reporter         Reporter

	// directories a dry run would have created
	planned map[string]bool
}

// Option configures a Converter.
type Option func(*Converter) error

// WithTransformer sets the body transformer. The default runs
// rewrite.DefaultRules.
func WithTransformer(t *rewrite.Transformer) Option {
	return func(c *Converter) error {
		if t == nil {
			return errors.New("body transformer must not be nil")
		}
		c.transformer = t
		return nil
	}
}

// WithSectionIndex sets the section index written for new directories.
func WithSectionIndex(s SectionIndex) Option {
	return func(c *Converter) error {
		c.section = &s
		return nil
	}
}

// WithoutSectionIndex disables section index generation.
func WithoutSectionIndex() Option {
	return func(c *Converter) error {
		c.section = nil
		return nil
	}
}

// WithExclude sets doublestar patterns of further files to skip, on top of
// LicenseName. Patterns match slash-separated paths relative to the source
// root.
func WithExclude(patterns ...string) Option {
	return func(c *Converter) error {
		c.exclude = append([]string(nil), patterns...)
		return nil
	}
}

// WithDateFromFilename makes YYYY-MM-DD- file name prefixes win over the
// modification time.
func WithDateFromFilename(enabled bool) Option {
	return func(c *Converter) error {
		c.dateFromFilename = enabled
		return nil
	}
}

// WithDiff reports a unified diff against any existing output file.
func WithDiff(enabled bool) Option {
	return func(c *Converter) error {
		c.diff = enabled
		return nil
	}
}

// WithDryRun computes every output without touching the destination tree.
func WithDryRun(enabled bool) Option {
	return func(c *Converter) error {
		c.dryRun = enabled
		return nil
	}
}

// WithReporter sets where progress lines go.
func WithReporter(r Reporter) Option {
	return func(c *Converter) error {
		if r == nil {
			r = nopReporter{}
		}
		c.reporter = r
		return nil
	}
}

// New creates a Converter for the given mapping.
func New(mapping mirror.Mapping, opts ...Option) (*Converter, error) {
	s := DefaultSectionIndex()
	c := &Converter{
		mapping:  mapping,
		section:  &s,
		reporter: nopReporter{},
		planned:  make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.Wrap(err, "failed to apply converter option")
		}
	}

	if c.transformer == nil {
		t, err := rewrite.New()
		if err != nil {
			return nil, err
		}
		c.transformer = t
	}

	filter, err := mirror.Excluding(isPost, c.exclude...)
	if err != nil {
		return nil, err
	}
	c.filter = filter

	return c, nil
}

// Run converts every selected post below the source root. Per-file failures
// are reported, logged and collected in the Result.
func (c *Converter) Run(ctx context.Context) (mirror.Result, error) {
	logger.G(ctx).WithField("src", c.mapping.Src).WithField("dst", c.mapping.Dst).Info("converting posts")

	return mirror.Walk(ctx, c.mapping.Src, c.filter, func(ctx context.Context, path string) (bool, error) {
		out, err := c.ConvertFile(ctx, path)
		if err != nil {
			logger.G(ctx).WithField("file", path).WithError(err).Error("failed to convert post")
			c.reporter.Error(err, "Error convert: "+path)
			return false, err
		}
		logger.G(ctx).WithField("file", path).WithField("output", out).Debug("converted post")
		c.reporter.Success("Converted: " + path)
		return true, nil
	})
}

// ConvertFile converts the post at path and writes it below the destination
// root. It returns the output path.
func (c *Converter) ConvertFile(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to stat %s", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", path)
	}

	doc, err := c.Convert(ctx, filepath.Base(path), content, info.ModTime())
	if err != nil {
		return "", err
	}

	outDir, err := c.mapping.Dir(path)
	if err != nil {
		return "", err
	}
	if err := c.ensureOutputDir(ctx, outDir); err != nil {
		return "", err
	}

	outPath := filepath.Join(outDir, OutputName(filepath.Base(path)))
	rendered, err := doc.Render()
	if err != nil {
		return "", errors.Wrapf(err, "failed to render %s", path)
	}

	if c.diff {
		if err := c.reportDiff(outPath, rendered); err != nil {
			return "", err
		}
	}
	if c.dryRun {
		return outPath, nil
	}
	if err := writeFile(outPath, rendered); err != nil {
		return "", err
	}
	return outPath, nil
}

// Convert transforms raw post content. name is the source file name and
// modTime its modification time; together they decide the post date.
func (c *Converter) Convert(ctx context.Context, name string, content []byte, modTime time.Time) (Document, error) {
	fm, body, err := frontmatter.Split(content)
	if err != nil {
		return Document{}, errors.Wrapf(err, "failed to parse front matter of %s", name)
	}

	date := c.postDate(name, modTime)
	postTitle := title.ExtractOr(content, title.Fallback)

	text := c.transformer.Transform(ctx, string(body))
	fm = frontmatter.Normalize(fm, date, postTitle)

	return Document{FrontMatter: fm, Body: text}, nil
}

// isPost selects markdown files other than LicenseName.
func isPost(rel string) bool {
	return mirror.Markdown(rel) && path.Base(rel) != LicenseName
}

// OutputName maps a source file name to its output name.
func OutputName(name string) string {
	if name == ReadmeName {
		return IndexName
	}
	return name
}

func (c *Converter) postDate(name string, modTime time.Time) time.Time {
	if c.dateFromFilename {
		if f, ok := ParseFilename(name); ok {
			return f.Date
		}
	}
	return modTime.UTC().Truncate(time.Second)
}

// ensureOutputDir creates dir when missing. Creating a directory also writes
// a section index into its parent, provided the parent is inside the
// destination root and has no index yet.
func (c *Converter) ensureOutputDir(ctx context.Context, dir string) error {
	if c.planned[dir] {
		return nil
	}
	if _, err := os.Stat(dir); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to stat output directory %s", dir)
	}

	if c.dryRun {
		c.plan(dir)
		c.reporter.Info("would create " + dir)
	} else if err := os.MkdirAll(dir, dirPerm); err != nil {
		return errors.Wrapf(err, "failed to create output directory %s", dir)
	}
	logger.G(ctx).WithField("dir", dir).Debug("created output directory")

	return c.writeSectionIndex(ctx, dir)
}

// plan marks dir and its missing ancestors as created for the rest of a dry
// run.
func (c *Converter) plan(dir string) {
	for d := dir; !c.planned[d]; d = filepath.Dir(d) {
		if _, err := os.Stat(d); err == nil {
			return
		}
		c.planned[d] = true
		if filepath.Dir(d) == d {
			return
		}
	}
}

func (c *Converter) writeSectionIndex(ctx context.Context, dir string) error {
	if c.section == nil {
		return nil
	}

	parent := filepath.Dir(dir)
	if !c.mapping.InDst(parent) {
		logger.G(ctx).WithField("dir", parent).Debug("parent outside destination root, no section index")
		return nil
	}

	indexPath := filepath.Join(parent, IndexName)
	if _, err := os.Stat(indexPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to stat %s", indexPath)
	}

	content, err := c.section.Render(filepath.Base(parent))
	if err != nil {
		return err
	}
	rendered, err := Document{Body: content}.Render()
	if err != nil {
		return err
	}

	if c.dryRun {
		c.reporter.Info("would write " + indexPath)
		return nil
	}
	logger.G(ctx).WithField("file", indexPath).Debug("writing section index")
	return writeFile(indexPath, rendered)
}

func (c *Converter) reportDiff(outPath, rendered string) error {
	current, err := os.ReadFile(outPath)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to read existing output %s", outPath)
	}
	if string(current) == rendered {
		c.reporter.Info("unchanged: " + outPath)
		return nil
	}
	c.reporter.Info(udiff.Unified(outPath, outPath, string(current), rendered))
	return nil
}

// writeFile replaces the file at path with content in a single locked write.
func writeFile(path, content string) error {
	if err := lockedfile.Write(path, bytes.NewReader([]byte(content)), filePerm); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
