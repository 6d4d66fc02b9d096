package ffmpeg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/reelmaster/internal/planner"
	"github.com/backmassage/reelmaster/internal/style"
)

func testPlan(t *testing.T, hw style.HardwareMode, output string) *planner.RenderPlan {
	t.Helper()
	cfg := style.Default()
	cfg.Hardware = hw
	job := planner.RenderJob{
		Primary:    "in/a.mp4",
		Secondary:  "in/b.mp4",
		Narration:  "in/v.mp3",
		Music:      "in/m.mp3",
		Font:       style.DefaultFont,
		Palette:    cfg.Palette.Fixed,
		Effect:     "fade",
		OutputPath: output,
	}
	plan, err := planner.Plan(job, cfg, planner.Durations{Primary: 12, Secondary: 6})
	require.NoError(t, err)
	return plan
}

func TestEncoderFor(t *testing.T) {
	assert.Equal(t, Encoder{Codec: "libx264", Preset: "fast"}, EncoderFor(style.HardwareCPU))
	assert.Equal(t, Encoder{Codec: "h264_nvenc", Preset: "p1"}, EncoderFor(style.HardwareGPU))
}

func TestBuild(t *testing.T) {
	plan := testPlan(t, style.HardwareCPU, "out/reel_1.mp4")
	args := Build(plan, BuildOptions{})

	want := []string{
		"ffmpeg", "-hide_banner", "-nostdin", "-y", "-loglevel", "error",
		"-hwaccel", "auto",
		"-i", "in/a.mp4",
		"-i", "in/b.mp4",
		"-stream_loop", "-1", "-i", "in/v.mp3",
		"-stream_loop", "-1", "-i", "in/m.mp3",
		"-filter_complex", plan.Graph.String(),
		"-map", "[v_out]", "-map", "[a_out]",
		"-c:v", "libx264", "-preset", "fast", "-c:a", "aac",
		"-movflags", "+faststart",
		"-t", "13.50",
		"out/reel_1.mp4",
	}
	assert.Equal(t, want, args)
}

func TestBuildGPUVerbose(t *testing.T) {
	plan := testPlan(t, style.HardwareGPU, "out/reel_2.mkv")
	args := Build(plan, BuildOptions{Bin: "/opt/ffmpeg/bin/ffmpeg", Verbose: true})
	joined := strings.Join(args, " ")

	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", args[0])
	assert.Contains(t, joined, "-loglevel info -stats -stats_period 1")
	assert.Contains(t, joined, "-c:v h264_nvenc -preset p1")
	assert.NotContains(t, joined, "+faststart", "mkv gets no movflags")
	assert.Equal(t, "out/reel_2.mkv", args[len(args)-1])
}
