package ffmpeg

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/backmassage/reelmaster/internal/planner"
	"github.com/backmassage/reelmaster/internal/style"
)

// Encoder is a video encoder and its preset.
type Encoder struct {
	Codec  string
	Preset string
}

// EncoderFor returns the fixed encoder pair for a hardware mode.
func EncoderFor(hw style.HardwareMode) Encoder {
	if hw == style.HardwareGPU {
		return Encoder{Codec: "h264_nvenc", Preset: "p1"}
	}
	return Encoder{Codec: "libx264", Preset: "fast"}
}

// BuildOptions tweak argument assembly without touching the plan.
type BuildOptions struct {
	Bin     string // ffmpeg binary; defaults to "ffmpeg".
	Verbose bool   // info-level ffmpeg logging and per-second stats.
}

// Build constructs the complete ffmpeg argument slice for a plan, binary
// first. The skeleton is:
//
//	ffmpeg -hide_banner -nostdin -y -loglevel L
//	  -hwaccel auto -i primary -i secondary
//	  -stream_loop -1 -i narration -stream_loop -1 -i music
//	  -filter_complex G -map [v_out] -map [a_out]
//	  -c:v ENC -preset P -c:a aac [container opts] -t CAP output
func Build(plan *planner.RenderPlan, opts BuildOptions) []string {
	bin := opts.Bin
	if bin == "" {
		bin = "ffmpeg"
	}
	g := plan.Graph
	args := make([]string, 0, 48)

	// --- Preamble ---
	args = append(args, bin, "-hide_banner", "-nostdin", "-y")
	if opts.Verbose {
		args = append(args, "-loglevel", "info", "-stats", "-stats_period", "1")
	} else {
		args = append(args, "-loglevel", "error")
	}

	// --- Inputs ---
	// -hwaccel binds to the next input only: the primary clip.
	args = append(args, "-hwaccel", "auto")
	for _, in := range g.Inputs {
		if in.Loop {
			args = append(args, "-stream_loop", "-1")
		}
		args = append(args, "-i", in.Path)
	}

	// --- Graph and maps ---
	args = append(args, "-filter_complex", g.String())
	for _, out := range g.Outputs {
		args = append(args, "-map", "["+out+"]")
	}

	// --- Codecs ---
	enc := EncoderFor(plan.Hardware)
	args = append(args, "-c:v", enc.Codec, "-preset", enc.Preset, "-c:a", "aac")
	args = append(args, containerOpts(plan.Job.OutputPath)...)

	// --- Duration cap and output ---
	args = append(args, "-t", formatSeconds(g.DurationCap), plan.Job.OutputPath)
	return args
}

func containerOpts(output string) []string {
	switch strings.ToLower(filepath.Ext(output)) {
	case ".mp4", ".mov", ".m4v":
		return []string{"-movflags", "+faststart"}
	default:
		return nil
	}
}

func formatSeconds(s float64) string { return strconv.FormatFloat(s, 'f', 2, 64) }
