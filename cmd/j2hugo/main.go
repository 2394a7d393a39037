package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jingkaihe/j2hugo/pkg/config"
	"github.com/jingkaihe/j2hugo/pkg/logger"
	"github.com/jingkaihe/j2hugo/pkg/presenter"
)

// app is the state shared by every command of one invocation.
type app struct {
	v   *viper.Viper
	cfg config.Config
	out presenter.Presenter
}

func newApp(out presenter.Presenter) *app {
	return &app{
		v:   viper.New(),
		cfg: config.Defaults(),
		out: out,
	}
}

func newRootCmd(a *app) *cobra.Command {
	var configFile string
	var quiet bool

	rootCmd := &cobra.Command{
		Use:   "j2hugo [src_dir out_dir]",
		Short: "Convert a Jekyll site into Hugo content",
		Long: `j2hugo converts Jekyll markdown posts into Hugo content and relocates the
non-markdown assets that sit next to them.

Called with two directories and no subcommand it behaves like 'j2hugo convert'.

Example:
  j2hugo _posts content/posts
  j2hugo convert docs content/docs --dry-run --diff
  j2hugo assets --src docs --dst content/docs`,
		Args:          cobra.RangeArgs(0, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Init(a.v, configFile); err != nil {
				return err
			}
			cfg, err := config.Load(a.v)
			if err != nil {
				return err
			}
			a.cfg = cfg

			if err := logger.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}
			a.out.SetQuiet(quiet)

			logger.G(cmd.Context()).WithField("config", a.v.ConfigFileUsed()).Debug("configuration loaded")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				return runConvert(cmd.Context(), a, args[0], args[1])
			}
			_ = cmd.Help()
			return errors.New("expected <src_dir> <out_dir> or a subcommand")
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default is $HOME/.j2hugo/j2hugo.yaml or ./j2hugo.yaml)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "only print errors and the final summary")
	flags.String("log-level", a.cfg.LogLevel, "log level (panic, fatal, error, warn, info, debug, trace)")
	flags.String("log-format", a.cfg.LogFormat, "log format (fmt or json)")

	bindFlags(a.v, flags, map[string]string{
		"log-level":  "log_level",
		"log-format": "log_format",
	})

	rootCmd.AddCommand(newConvertCmd(a))
	rootCmd.AddCommand(newAssetsCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// bindFlags binds each named flag to its viper key so flags override the
// environment and config file.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := newApp(presenter.Default())
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		presenter.Error(err, "")
		cancel()
		os.Exit(1)
	}
}
