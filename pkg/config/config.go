// Package config loads j2hugo settings from flags, environment variables and
// an optional YAML file through viper.
package config

import (
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/jingkaihe/j2hugo/pkg/rewrite"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. J2HUGO_LOG_LEVEL.
	EnvPrefix = "J2HUGO"
	// FileName is the config file name looked up without extension.
	FileName = "j2hugo"

	// SectionDateLayout is the layout of convert.section_index.date.
	SectionDateLayout = "2006-01-02"
)

// Config is the complete j2hugo configuration.
type Config struct {
	LogLevel  string        `mapstructure:"log_level"`
	LogFormat string        `mapstructure:"log_format"`
	Convert   ConvertConfig `mapstructure:"convert"`
	Assets    AssetsConfig  `mapstructure:"assets"`
}

// ConvertConfig configures the post converter.
type ConvertConfig struct {
	Exclude          []string           `mapstructure:"exclude"`
	DateFromFilename bool               `mapstructure:"date_from_filename"`
	Diff             bool               `mapstructure:"diff"`
	DryRun           bool               `mapstructure:"dry_run"`
	Rules            []rewrite.RuleSpec `mapstructure:"rules"`
	SectionIndex     SectionIndexConfig `mapstructure:"section_index"`
}

// SectionIndexConfig configures generated _index.md files.
type SectionIndexConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Label     string `mapstructure:"label"`
	Date      string `mapstructure:"date"`
	Archetype string `mapstructure:"archetype"`
}

// AssetsConfig configures the asset relocator.
type AssetsConfig struct {
	Src    string `mapstructure:"src"`
	Dst    string `mapstructure:"dst"`
	DryRun bool   `mapstructure:"dry_run"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "fmt",
		Convert: ConvertConfig{
			Exclude: []string{},
			Rules:   []rewrite.RuleSpec{},
			SectionIndex: SectionIndexConfig{
				Enabled:   true,
				Label:     "MOBB Docs and Guides",
				Date:      "2022-09-14",
				Archetype: "chapter",
			},
		},
		Assets: AssetsConfig{
			Src: "docs",
			Dst: "content/docs",
		},
	}
}

// SetDefaults registers every key with its default so that environment
// variables and config files can override it.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("convert.exclude", d.Convert.Exclude)
	v.SetDefault("convert.date_from_filename", d.Convert.DateFromFilename)
	v.SetDefault("convert.diff", d.Convert.Diff)
	v.SetDefault("convert.dry_run", d.Convert.DryRun)
	v.SetDefault("convert.section_index.enabled", d.Convert.SectionIndex.Enabled)
	v.SetDefault("convert.section_index.label", d.Convert.SectionIndex.Label)
	v.SetDefault("convert.section_index.date", d.Convert.SectionIndex.Date)
	v.SetDefault("convert.section_index.archetype", d.Convert.SectionIndex.Archetype)
	v.SetDefault("assets.src", d.Assets.Src)
	v.SetDefault("assets.dst", d.Assets.Dst)
	v.SetDefault("assets.dry_run", d.Assets.DryRun)
}

// Init prepares v for environment and file lookup. An explicit file takes
// precedence over the default search path ($HOME/.j2hugo and the working
// directory). A missing default file is not an error.
func Init(v *viper.Viper, file string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "failed to read config file %s", file)
		}
		return nil
	}

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.j2hugo")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "failed to read config file")
		}
	}
	return nil
}

// Load decodes the merged viper settings into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	return Decode(v.AllSettings())
}

// Decode converts a nested settings map into a validated Config. Missing
// keys keep their defaults.
func Decode(settings map[string]any) (Config, error) {
	cfg := Defaults()
	if len(settings) == 0 {
		return cfg, cfg.Validate()
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ZeroFields:       true,
	})
	if err != nil {
		return cfg, errors.Wrap(err, "failed to create config decoder")
	}
	if err := decoder.Decode(settings); err != nil {
		return cfg, errors.Wrap(err, "failed to decode configuration")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c Config) Validate() error {
	switch c.LogFormat {
	case "fmt", "text", "json":
	default:
		return errors.Errorf("unsupported log format %q (want fmt or json)", c.LogFormat)
	}

	if c.Convert.SectionIndex.Enabled {
		if _, err := time.Parse(SectionDateLayout, c.Convert.SectionIndex.Date); err != nil {
			return errors.Wrapf(err, "invalid section index date %q", c.Convert.SectionIndex.Date)
		}
	}

	for i, spec := range c.Convert.Rules {
		if spec.Pattern == "" {
			return errors.Errorf("rule %d has an empty pattern", i)
		}
		if _, err := spec.Compile(); err != nil {
			return err
		}
	}

	if c.Assets.Src == "" || c.Assets.Dst == "" {
		return errors.New("assets.src and assets.dst must not be empty")
	}
	return nil
}
