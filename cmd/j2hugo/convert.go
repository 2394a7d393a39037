package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/j2hugo/pkg/config"
	"github.com/jingkaihe/j2hugo/pkg/convert"
	"github.com/jingkaihe/j2hugo/pkg/logger"
	"github.com/jingkaihe/j2hugo/pkg/mirror"
	"github.com/jingkaihe/j2hugo/pkg/presenter"
	"github.com/jingkaihe/j2hugo/pkg/rewrite"
)

func newConvertCmd(a *app) *cobra.Command {
	convertCmd := &cobra.Command{
		Use:   "convert <src_dir> <out_dir>",
		Short: "Convert Jekyll posts into Hugo content",
		Long: `Convert every markdown post below src_dir into out_dir, keeping the directory
layout. Front matter is normalised for Hugo, the title comes from the first
heading, README.md becomes _index.md and every new section gets an _index.md.

LICENSE.md files are always skipped, as are files matching an --exclude
pattern.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), a, args[0], args[1])
		},
	}

	defaults := config.Defaults().Convert
	flags := convertCmd.Flags()
	flags.Bool("diff", defaults.Diff, "print a unified diff against existing output files")
	flags.Bool("dry-run", defaults.DryRun, "report what would be written without writing")
	flags.Bool("date-from-filename", defaults.DateFromFilename, "take the post date from a YYYY-MM-DD- file name prefix")
	flags.StringSlice("exclude", defaults.Exclude, "doublestar pattern of further posts to skip, relative to src_dir (repeatable)")

	bindFlags(a.v, flags, map[string]string{
		"diff":               "convert.diff",
		"dry-run":            "convert.dry_run",
		"date-from-filename": "convert.date_from_filename",
		"exclude":            "convert.exclude",
	})

	return convertCmd
}

func runConvert(ctx context.Context, a *app, src, dst string) error {
	mapping, err := mirror.NewMapping(src, dst, true)
	if err != nil {
		return err
	}

	c, err := newConverter(a.cfg.Convert, mapping, a.out)
	if err != nil {
		return err
	}

	a.out.Section("Converting " + mapping.Src + " into " + mapping.Dst)
	if a.cfg.Convert.DryRun {
		a.out.Warning("dry run: nothing will be written")
	}

	ctx = logger.WithFields(ctx, map[string]any{"command": "convert"})
	result, err := c.Run(ctx)
	if err != nil {
		return err
	}

	a.out.Summary(presenter.RunStats{
		Verb:      "converted",
		Processed: result.Processed,
		Skipped:   result.Skipped,
		Errors:    result.ErrorCount(),
	})
	return nil
}

func newConverter(cfg config.ConvertConfig, mapping mirror.Mapping, reporter convert.Reporter) (*convert.Converter, error) {
	transformer, err := rewrite.New(rewrite.WithExtraRules(cfg.Rules...))
	if err != nil {
		return nil, err
	}

	opts := []convert.Option{
		convert.WithTransformer(transformer),
		convert.WithExclude(cfg.Exclude...),
		convert.WithDateFromFilename(cfg.DateFromFilename),
		convert.WithDiff(cfg.Diff),
		convert.WithDryRun(cfg.DryRun),
		convert.WithReporter(reporter),
	}
	if cfg.SectionIndex.Enabled {
		opts = append(opts, convert.WithSectionIndex(convert.SectionIndex{
			Label:     cfg.SectionIndex.Label,
			Date:      cfg.SectionIndex.Date,
			Archetype: cfg.SectionIndex.Archetype,
		}))
	} else {
		opts = append(opts, convert.WithoutSectionIndex())
	}

	return convert.New(mapping, opts...)
}
