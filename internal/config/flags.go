package config

// This file defines the command-line flags and binds each one to its viper
// key. Flags are grouped into paths, title/style, audio, encoding, behavior
// and display.

import (
	"github.com/spf13/pflag"
)

// binding maps a flag name to the viper key it sets.
type binding struct {
	flag string
	key  string
}

var bindings = []binding{
	{"primary", "paths.primary"},
	{"secondary", "paths.secondary"},
	{"narration", "paths.narration"},
	{"music", "paths.music"},
	{"output", "paths.output"},
	{"captions", "paths.captions"},
	{"report", "paths.report"},

	{"title", "title.text"},
	{"title-size", "title.size"},
	{"title-border", "title.border"},
	{"title-start", "title.start"},
	{"title-end", "title.end"},

	{"font-mode", "font.mode"},
	{"font", "font.name"},
	{"font-file", "font.file"},
	{"font-dir", "font.dir"},

	{"color-mode", "colors.mode"},
	{"title-color", "colors.title"},
	{"title-border-color", "colors.title_border"},
	{"caption-color", "colors.caption"},
	{"caption-border-color", "colors.caption_border"},

	{"transition", "transition.mode"},
	{"effect", "transition.effect"},
	{"effects", "transition.effects"},

	{"caption-size", "captions.size"},
	{"caption-outline", "captions.outline"},
	{"caption-margin", "captions.margin_v"},

	{"primary-volume", "mix.primary"},
	{"narration-volume", "mix.narration"},
	{"music-volume", "mix.music"},

	{"video-ext", "extensions.video"},
	{"narration-ext", "extensions.narration"},
	{"music-ext", "extensions.music"},
	{"prefix", "output.prefix"},
	{"ext", "output.ext"},

	{"hardware", "hardware"},
	{"ffmpeg", "tools.ffmpeg"},
	{"ffprobe", "tools.ffprobe"},
	{"render-timeout", "tools.render_timeout"},
	{"probe-timeout", "tools.probe_timeout"},

	{"seed", "seed"},
	{"dry-run", "dry_run"},
	{"reap-all", "reap_all"},
	{"verbose", "verbose"},
	{"log", "log"},
}

// DefineFlags registers every configuration flag on fs with defaults from
// [DefaultConfig]. Persistent flags shared by subcommands go on the root.
func DefineFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()

	// Paths.
	fs.String("primary", "", "Primary clip directory (one output per clip)")
	fs.String("secondary", "", "Secondary clip directory (paired by index)")
	fs.String("narration", "", "Narration clip directory (sampled per job)")
	fs.String("music", "", "Background music directory (sampled per job)")
	fs.StringP("output", "o", "", "Output directory")
	fs.String("captions", "", "Caption file burned into every output")
	fs.String("report", "", "Write the JSON batch report to this file")

	// Title and style.
	fs.String("title", d.Title.Text, "Title text")
	fs.Int("title-size", d.Title.Size, "Title font size")
	fs.Int("title-border", d.Title.Border, "Title border width")
	fs.Float64("title-start", d.Title.Start, "Title display start (seconds)")
	fs.Float64("title-end", d.Title.End, "Title display end (seconds)")
	fs.String("font-mode", d.Font.Mode, "Font mode: fixed | random")
	fs.String("font", d.Font.Name, "Fixed font name")
	fs.String("font-file", "", "Fixed font file (overrides --font)")
	fs.String("font-dir", "", "Font directory for random font mode")
	fs.String("color-mode", d.Colors.Mode, "Color mode: fixed | random")
	fs.String("title-color", d.Colors.Title, "Title color (#RRGGBB)")
	fs.String("title-border-color", d.Colors.TitleBorder, "Title border color (#RRGGBB)")
	fs.String("caption-color", d.Colors.Caption, "Caption color (#RRGGBB)")
	fs.String("caption-border-color", d.Colors.CaptionBorder, "Caption outline color (#RRGGBB)")
	fs.String("transition", d.Transition.Mode, "Transition mode: fixed | random")
	fs.String("effect", d.Transition.Effect, "Fixed transition effect")
	fs.StringSlice("effects", nil, "Effect set for random transition mode (default: all)")
	fs.Int("caption-size", d.Captions.Size, "Caption font size")
	fs.Int("caption-outline", d.Captions.Outline, "Caption outline width")
	fs.Int("caption-margin", d.Captions.MarginV, "Caption vertical margin")

	// Audio.
	fs.Int("primary-volume", d.Mix.Primary, "Primary clip volume (%)")
	fs.Int("narration-volume", d.Mix.Narration, "Narration volume (%)")
	fs.Int("music-volume", d.Mix.Music, "Music volume (%)")

	// Encoding and tools.
	fs.String("hardware", d.Hardware, "Encoder: cpu | gpu")
	fs.String("ffmpeg", d.Tools.FFmpeg, "ffmpeg binary")
	fs.String("ffprobe", d.Tools.FFprobe, "ffprobe binary")
	fs.Duration("render-timeout", d.Tools.RenderTimeout, "Per-job render limit (0 disables)")
	fs.Duration("probe-timeout", d.Tools.ProbeTimeout, "Per-clip probe limit")
	fs.StringSlice("video-ext", d.Extensions.Video, "Primary/secondary extensions")
	fs.StringSlice("narration-ext", d.Extensions.Narration, "Narration extensions")
	fs.StringSlice("music-ext", d.Extensions.Music, "Music extensions")
	fs.String("prefix", d.Output.Prefix, "Output file prefix")
	fs.String("ext", d.Output.Ext, "Output container extension")

	// Behavior.
	fs.Uint64("seed", 0, "Random seed for sampling (0 = random)")
	fs.BoolP("dry-run", "d", false, "Plan and log commands without rendering")
	fs.Bool("reap-all", false, "On interrupt, kill every ffmpeg process on the host, not only our own")

	// Display and logging.
	fs.BoolP("verbose", "v", false, "Verbose output")
	fs.Bool("color", false, "Force colored logs")
	fs.Bool("no-color", false, "Disable colored logs")
	fs.StringP("log", "l", "", "Append JSON logs to file")
	fs.String("config", "", "Config file (yaml, toml or json)")
	fs.String("env-file", ".env", "Environment file loaded before REELMASTER_* variables")
}
