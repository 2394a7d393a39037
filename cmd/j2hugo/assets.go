package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/j2hugo/pkg/assets"
	"github.com/jingkaihe/j2hugo/pkg/config"
	"github.com/jingkaihe/j2hugo/pkg/logger"
	"github.com/jingkaihe/j2hugo/pkg/mirror"
	"github.com/jingkaihe/j2hugo/pkg/presenter"
)

func newAssetsCmd(a *app) *cobra.Command {
	assetsCmd := &cobra.Command{
		Use:   "assets",
		Short: "Copy non-markdown files into the Hugo content tree",
		Long: `Copy every file below --src that is not markdown into the same relative
location below --dst. Files that already exist at the destination are left
alone, so running the command twice copies nothing the second time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAssets(cmd.Context(), a)
		},
	}

	defaults := config.Defaults().Assets
	flags := assetsCmd.Flags()
	flags.String("src", defaults.Src, "source directory, relative to the working directory")
	flags.String("dst", defaults.Dst, "destination directory, relative to the working directory")
	flags.Bool("dry-run", defaults.DryRun, "report copies without performing them")

	bindFlags(a.v, flags, map[string]string{
		"src":     "assets.src",
		"dst":     "assets.dst",
		"dry-run": "assets.dry_run",
	})

	return assetsCmd
}

func runAssets(ctx context.Context, a *app) error {
	mapping, err := mirror.NewMapping(a.cfg.Assets.Src, a.cfg.Assets.Dst, false)
	if err != nil {
		return err
	}

	r, err := assets.New(mapping,
		assets.WithDryRun(a.cfg.Assets.DryRun),
		assets.WithReporter(a.out),
	)
	if err != nil {
		return err
	}

	a.out.Section("Copying assets from " + mapping.Src + " into " + mapping.Dst)
	if a.cfg.Assets.DryRun {
		a.out.Warning("dry run: nothing will be copied")
	}

	ctx = logger.WithFields(ctx, map[string]any{"command": "assets"})
	result, err := r.Run(ctx)
	if err != nil {
		return err
	}

	a.out.Summary(presenter.RunStats{
		Verb:      "copied",
		Processed: result.Processed,
		Skipped:   result.Skipped,
		Errors:    result.ErrorCount(),
	})
	return nil
}
