package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: REELMASTER_TITLE_TEXT,
// REELMASTER_TOOLS_FFMPEG, ...
const EnvPrefix = "REELMASTER"

// Load resolves a Config from every layer. flags must have been defined by
// [DefineFlags] and already parsed. The result is not validated.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if envFile, _ := flags.GetString("env-file"); envFile != "" {
		// A missing .env is normal; anything else is reported.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file, _ := flags.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	for _, b := range bindings {
		f := flags.Lookup(b.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(b.key, f); err != nil {
			return nil, fmt.Errorf("bind --%s: %w", b.flag, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	applyColorFlags(flags, cfg)
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it even when
// no flag or file mentions it.
func setDefaults(v *viper.Viper, d Config) {
	defaults := map[string]interface{}{
		"paths.primary":         d.Paths.Primary,
		"paths.secondary":       d.Paths.Secondary,
		"paths.narration":       d.Paths.Narration,
		"paths.music":           d.Paths.Music,
		"paths.output":          d.Paths.Output,
		"paths.captions":        d.Paths.Captions,
		"paths.report":          d.Paths.Report,
		"tools.ffmpeg":          d.Tools.FFmpeg,
		"tools.ffprobe":         d.Tools.FFprobe,
		"tools.render_timeout":  d.Tools.RenderTimeout,
		"tools.probe_timeout":   d.Tools.ProbeTimeout,
		"title.text":            d.Title.Text,
		"title.size":            d.Title.Size,
		"title.border":          d.Title.Border,
		"title.start":           d.Title.Start,
		"title.end":             d.Title.End,
		"font.mode":             d.Font.Mode,
		"font.name":             d.Font.Name,
		"font.file":             d.Font.File,
		"font.dir":              d.Font.Dir,
		"colors.mode":           d.Colors.Mode,
		"colors.title":          d.Colors.Title,
		"colors.title_border":   d.Colors.TitleBorder,
		"colors.caption":        d.Colors.Caption,
		"colors.caption_border": d.Colors.CaptionBorder,
		"transition.mode":       d.Transition.Mode,
		"transition.effect":     d.Transition.Effect,
		"transition.effects":    d.Transition.Effects,
		"captions.size":         d.Captions.Size,
		"captions.outline":      d.Captions.Outline,
		"captions.margin_v":     d.Captions.MarginV,
		"mix.primary":           d.Mix.Primary,
		"mix.narration":         d.Mix.Narration,
		"mix.music":             d.Mix.Music,
		"extensions.video":      d.Extensions.Video,
		"extensions.narration":  d.Extensions.Narration,
		"extensions.music":      d.Extensions.Music,
		"output.prefix":         d.Output.Prefix,
		"output.ext":            d.Output.Ext,
		"hardware":              d.Hardware,
		"seed":                  d.Seed,
		"dry_run":               d.DryRun,
		"reap_all":              d.ReapAll,
		"verbose":               d.Verbose,
		"color":                 string(d.ColorMode),
		"log":                   d.LogFile,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// applyColorFlags lets --no-color win over --color, and either win over
// the configured mode.
func applyColorFlags(flags *pflag.FlagSet, cfg *Config) {
	if noColor, _ := flags.GetBool("no-color"); noColor {
		cfg.ColorMode = ColorNever
	} else if color, _ := flags.GetBool("color"); color {
		cfg.ColorMode = ColorAlways
	}
}
