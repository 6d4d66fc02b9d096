// Package config holds runtime configuration: defaults, flag definitions,
// layered loading and validation. Layers, lowest to highest: built-in
// defaults, an optional config file, a .env file, REELMASTER_* environment
// variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/backmassage/reelmaster/internal/assets"
	"github.com/backmassage/reelmaster/internal/naming"
	"github.com/backmassage/reelmaster/internal/style"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Mode values accepted for font, colors and transition.
const (
	ModeFixed  = "fixed"
	ModeRandom = "random"
)

// Paths are the batch's directory and file inputs.
type Paths struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Narration string `mapstructure:"narration"`
	Music     string `mapstructure:"music"`
	Output    string `mapstructure:"output"`
	Captions  string `mapstructure:"captions"` // Optional single caption file.
	Report    string `mapstructure:"report"`   // Optional JSON report path.
}

// Tools locate the external binaries and bound their runtime.
type Tools struct {
	FFmpeg        string        `mapstructure:"ffmpeg"`
	FFprobe       string        `mapstructure:"ffprobe"`
	RenderTimeout time.Duration `mapstructure:"render_timeout"` // 0 disables.
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout"`
}

// Title configures the drawtext overlay.
type Title struct {
	Text   string  `mapstructure:"text"`
	Size   int     `mapstructure:"size"`
	Border int     `mapstructure:"border"`
	Start  float64 `mapstructure:"start"`
	End    float64 `mapstructure:"end"`
}

// Font selects a fixed font or a random one per job from Dir.
type Font struct {
	Mode string `mapstructure:"mode"`
	Name string `mapstructure:"name"`
	File string `mapstructure:"file"` // Fixed font file; overrides Name.
	Dir  string `mapstructure:"dir"`
}

// Colors are the fixed palette, or the borders kept in random mode.
type Colors struct {
	Mode          string `mapstructure:"mode"`
	Title         string `mapstructure:"title"`
	TitleBorder   string `mapstructure:"title_border"`
	Caption       string `mapstructure:"caption"`
	CaptionBorder string `mapstructure:"caption_border"`
}

// Transition selects the crossfade effect.
type Transition struct {
	Mode    string   `mapstructure:"mode"`
	Effect  string   `mapstructure:"effect"`
	Effects []string `mapstructure:"effects"` // Random-mode set; empty means every known effect.
}

// Captions are the burned-in subtitle style settings.
type Captions struct {
	Size    int `mapstructure:"size"`
	Outline int `mapstructure:"outline"`
	MarginV int `mapstructure:"margin_v"`
}

// Mix holds the three gains in percent.
type Mix struct {
	Primary   int `mapstructure:"primary"`
	Narration int `mapstructure:"narration"`
	Music     int `mapstructure:"music"`
}

// Extensions filter each pool.
type Extensions struct {
	Video     []string `mapstructure:"video"`
	Narration []string `mapstructure:"narration"`
	Music     []string `mapstructure:"music"`
}

// Output controls result naming.
type Output struct {
	Prefix string `mapstructure:"prefix"`
	Ext    string `mapstructure:"ext"`
}

// Config holds all runtime settings. It is produced by [Load] and passed by
// pointer to the command layer, which turns it into a [style.Config]
// snapshot for the batch.
type Config struct {
	Paths      Paths      `mapstructure:"paths"`
	Tools      Tools      `mapstructure:"tools"`
	Title      Title      `mapstructure:"title"`
	Font       Font       `mapstructure:"font"`
	Colors     Colors     `mapstructure:"colors"`
	Transition Transition `mapstructure:"transition"`
	Captions   Captions   `mapstructure:"captions"`
	Mix        Mix        `mapstructure:"mix"`
	Extensions Extensions `mapstructure:"extensions"`
	Output     Output     `mapstructure:"output"`

	Hardware  string    `mapstructure:"hardware"` // "cpu" or "gpu".
	Seed      uint64    `mapstructure:"seed"`     // 0 seeds from the runtime.
	DryRun    bool      `mapstructure:"dry_run"`
	ReapAll   bool      `mapstructure:"reap_all"` // On interrupt, kill every process named like the ffmpeg tool.
	Verbose   bool      `mapstructure:"verbose"`
	ColorMode ColorMode `mapstructure:"color"`
	LogFile   string    `mapstructure:"log"`
}

// DefaultConfig returns a Config with every default. Style defaults come
// from [style.Default] so the two never drift.
func DefaultConfig() Config {
	s := style.Default()
	return Config{
		Tools: Tools{
			FFmpeg:        "ffmpeg",
			FFprobe:       "ffprobe",
			RenderTimeout: 30 * time.Minute,
			ProbeTimeout:  15 * time.Second,
		},
		Title: Title{
			Text:   s.Title,
			Size:   s.TitleSize,
			Border: s.TitleBorder,
			Start:  s.Window.Start,
			End:    s.Window.End,
		},
		Font: Font{Mode: ModeFixed, Name: s.Font.Fixed.Name},
		Colors: Colors{
			Mode:          ModeFixed,
			Title:         s.Palette.Fixed.Title,
			TitleBorder:   s.Palette.Fixed.TitleBorder,
			Caption:       s.Palette.Fixed.Caption,
			CaptionBorder: s.Palette.Fixed.CaptionBorder,
		},
		Transition: Transition{Mode: ModeRandom, Effect: s.Transition.Effect},
		Captions:   Captions{Size: s.Captions.Size, Outline: s.Captions.Outline, MarginV: s.Captions.MarginV},
		Mix:        Mix{Primary: s.Volumes.Primary, Narration: s.Volumes.Narration, Music: s.Volumes.Music},
		Extensions: Extensions{
			Video:     assets.MediaExtensions,
			Narration: assets.MediaExtensions,
			Music:     assets.MediaExtensions,
		},
		Output:    Output{Prefix: naming.DefaultPrefix, Ext: naming.DefaultExt},
		Hardware:  string(style.HardwareCPU),
		ColorMode: ColorAuto,
	}
}

var hexColor = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

// Validate checks every field and returns all problems combined with
// multierr, so one run shows the user everything to fix.
func (c *Config) Validate() error {
	var errs error
	add := func(err error) { errs = multierr.Append(errs, err) }

	for _, p := range []struct{ name, val string }{
		{"primary", c.Paths.Primary},
		{"secondary", c.Paths.Secondary},
		{"narration", c.Paths.Narration},
		{"music", c.Paths.Music},
		{"output", c.Paths.Output},
	} {
		if p.val == "" {
			add(fmt.Errorf("--%s directory is required", p.name))
		}
	}
	if c.Paths.Output != "" {
		add(c.ValidatePaths())
	}

	if c.Title.Start < 0 || c.Title.End <= c.Title.Start {
		add(fmt.Errorf("title window [%g, %g] must satisfy 0 <= start < end", c.Title.Start, c.Title.End))
	}
	if c.Title.Size <= 0 {
		add(fmt.Errorf("title size %d must be positive", c.Title.Size))
	}
	if c.Title.Border < 0 || c.Captions.Outline < 0 {
		add(errors.New("border and outline widths must not be negative"))
	}
	if c.Captions.Size <= 0 {
		add(fmt.Errorf("caption size %d must be positive", c.Captions.Size))
	}
	for _, v := range []struct {
		name string
		val  int
	}{{"primary", c.Mix.Primary}, {"narration", c.Mix.Narration}, {"music", c.Mix.Music}} {
		if v.val < 0 {
			add(fmt.Errorf("%s volume %d%% must not be negative", v.name, v.val))
		}
	}

	for _, col := range []struct{ name, val string }{
		{"title color", c.Colors.Title},
		{"title border color", c.Colors.TitleBorder},
		{"caption color", c.Colors.Caption},
		{"caption border color", c.Colors.CaptionBorder},
	} {
		if !hexColor.MatchString(col.val) {
			add(fmt.Errorf("%s %q is not a 6-digit hex color", col.name, col.val))
		}
	}

	add(checkMode("font", c.Font.Mode))
	add(checkMode("colors", c.Colors.Mode))
	add(checkMode("transition", c.Transition.Mode))
	if c.Font.Mode == ModeRandom && c.Font.Dir == "" {
		add(errors.New("random font mode needs --font-dir"))
	}
	if !style.IsKnownEffect(c.Transition.Effect) {
		add(fmt.Errorf("unknown transition effect %q (use %s)", c.Transition.Effect, strings.Join(style.Effects, ", ")))
	}
	for _, e := range c.Transition.Effects {
		if !style.IsKnownEffect(e) {
			add(fmt.Errorf("unknown transition effect %q in random set", e))
		}
	}

	if _, err := style.ParseHardwareMode(c.Hardware); err != nil {
		add(err)
	}
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		add(fmt.Errorf("invalid color mode %q (use auto, always or never)", c.ColorMode))
	}

	add(assets.CheckExtensions("video", c.Extensions.Video, assets.KindVideo, assets.KindAudio))
	add(assets.CheckExtensions("narration", c.Extensions.Narration, assets.KindVideo, assets.KindAudio))
	add(assets.CheckExtensions("music", c.Extensions.Music, assets.KindVideo, assets.KindAudio))
	add(naming.ValidPrefix(c.Output.Prefix))
	if assets.KindOf(c.Output.Ext) != assets.KindVideo {
		add(fmt.Errorf("output extension %q is not a video container", c.Output.Ext))
	}
	if c.Tools.RenderTimeout < 0 || c.Tools.ProbeTimeout < 0 {
		add(errors.New("timeouts must not be negative"))
	}
	return errs
}

func checkMode(name, mode string) error {
	switch mode {
	case ModeFixed, ModeRandom:
		return nil
	}
	return fmt.Errorf("invalid %s mode %q (use fixed or random)", name, mode)
}

// ValidatePaths ensures the output directory is not one of the pool
// directories, so a later run never picks up earlier outputs as inputs.
func (c *Config) ValidatePaths() error {
	out, err := filepath.Abs(c.Paths.Output)
	if err != nil {
		return err
	}
	for _, p := range []string{c.Paths.Primary, c.Paths.Secondary, c.Paths.Narration, c.Paths.Music} {
		if p == "" {
			continue
		}
		in, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		if in == out {
			return fmt.Errorf("output directory %s must not be an input pool directory", c.Paths.Output)
		}
	}
	return nil
}

// StyleConfig builds the immutable style snapshot for a batch. Call only on
// a validated Config.
func (c *Config) StyleConfig() style.Config {
	hw, _ := style.ParseHardwareMode(c.Hardware)

	font := style.FontSpec{Mode: style.FontFixed, Fixed: style.Font{Name: c.Font.Name, File: c.Font.File}, Dir: c.Font.Dir}
	if c.Font.Mode == ModeRandom {
		font.Mode = style.FontRandomFromDir
	}

	pal := style.PaletteSpec{Mode: style.PaletteFixed, Fixed: style.Palette{
		Title:         normalizeHex(c.Colors.Title),
		TitleBorder:   normalizeHex(c.Colors.TitleBorder),
		Caption:       normalizeHex(c.Colors.Caption),
		CaptionBorder: normalizeHex(c.Colors.CaptionBorder),
	}}
	if c.Colors.Mode == ModeRandom {
		pal.Mode = style.PaletteRandomJob
	}

	tr := style.TransitionSpec{Mode: style.TransitionFixed, Effect: c.Transition.Effect, Effects: c.Transition.Effects}
	if c.Transition.Mode == ModeRandom {
		tr.Mode = style.TransitionRandomJob
	}

	return style.Config{
		Title:       c.Title.Text,
		TitleSize:   c.Title.Size,
		TitleBorder: c.Title.Border,
		Window:      style.Window{Start: c.Title.Start, End: c.Title.End},
		Font:        font,
		Palette:     pal,
		Transition:  tr,
		Captions: style.Captions{
			File:    c.Paths.Captions,
			Size:    c.Captions.Size,
			Outline: c.Captions.Outline,
			MarginV: c.Captions.MarginV,
		},
		Volumes:  style.Volumes{Primary: c.Mix.Primary, Narration: c.Mix.Narration, Music: c.Mix.Music},
		Hardware: hw,
	}
}

// normalizeHex returns #RRGGBB in upper case.
func normalizeHex(s string) string {
	return "#" + strings.ToUpper(strings.TrimPrefix(s, "#"))
}
