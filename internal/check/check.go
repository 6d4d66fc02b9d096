// Package check provides system diagnostics (the check command) and
// pre-batch dependency validation (CheckDeps) for ffmpeg, ffprobe, the
// selected H.264 encoder, AAC and the filters the renders need.
package check

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/backmassage/reelmaster/internal/config"
	"github.com/backmassage/reelmaster/internal/ffmpeg"
	"github.com/backmassage/reelmaster/internal/probe"
	"github.com/backmassage/reelmaster/internal/style"
)

// Sentinel errors for a missing tool, encoder or filter. A missing ffprobe
// is only a warning: durations fall back to [probe.FallbackDuration].
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found")
	ErrFfprobeNotFound = errors.New("ffprobe not found")
	ErrEncoderFailed   = errors.New("test encode failed for the selected hardware mode")
	ErrFilterMissing   = errors.New("ffmpeg lacks a required filter")
)

// RequiredFilters are the filters every render graph uses.
var RequiredFilters = []string{"xfade", "drawtext", "amix"}

// CaptionFilter burns in the caption file; it is only needed when one is set.
const CaptionFilter = "subtitles"

// requiredFilters returns the filters the configured renders will use.
func requiredFilters(cfg *config.Config) []string {
	names := append([]string(nil), RequiredFilters...)
	if cfg.Paths.Captions != "" {
		names = append(names, CaptionFilter)
	}
	return names
}

// testTimeout bounds each probe command; a hung GPU driver must not hang
// the check.
const testTimeout = 30 * time.Second

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the interactive check flow: versions, H.264 encoders, a
// test encode for both hardware modes, AAC and the required filters. It is
// informational only and returns whether everything the configured
// hardware mode needs is available.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")
	bin := cfg.Tools.FFmpeg

	if !checkVersion(ctx, bin, "ffmpeg", log) {
		return false
	}
	if _, err := exec.LookPath(cfg.Tools.FFprobe); err != nil {
		warnNoProbe(cfg, log)
	} else {
		checkVersion(ctx, cfg.Tools.FFprobe, "ffprobe", log)
	}
	ok := true

	checkH264Encoders(ctx, bin, log)

	selected, _ := style.ParseHardwareMode(cfg.Hardware)
	for _, hw := range []style.HardwareMode{style.HardwareCPU, style.HardwareGPU} {
		enc := ffmpeg.EncoderFor(hw)
		log.Info("Testing %s (%s)...", enc.Codec, hw.Label())
		if runSilent(ctx, bin, encodeTestArgs(enc)...) {
			log.Success("%s works", enc.Codec)
		} else if hw == selected {
			log.Error("%s test encode failed (selected mode)", enc.Codec)
			ok = false
		} else {
			log.Warn("%s test encode failed", enc.Codec)
		}
	}

	log.Info("Testing AAC encoder...")
	if runSilent(ctx, bin, aacTestArgs()...) {
		log.Success("AAC encoder works")
	} else {
		log.Error("AAC encoder test failed")
		ok = false
	}

	filters := requiredFilters(cfg)
	missing, err := missingFilters(ctx, bin, filters)
	switch {
	case err != nil:
		log.Warn("Could not list filters: %v", err)
	case len(missing) > 0:
		log.Error("Missing filters: %s", strings.Join(missing, ", "))
		ok = false
	default:
		log.Success("Filters: %s", strings.Join(filters, ", "))
	}
	return ok
}

// checkVersion verifies the tool runs and logs its version line.
func checkVersion(ctx context.Context, bin, name string, log Logger) bool {
	if _, err := exec.LookPath(bin); err != nil {
		log.Error("%s not found (%s)", name, bin)
		return false
	}
	out, err := output(ctx, bin, "-version")
	if err != nil {
		log.Warn("%s found but -version failed: %v", name, err)
		return false
	}
	firstLine, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	log.Success("%s: %s", name, firstLine)
	return true
}

// checkH264Encoders lists the H.264 encoders ffmpeg reports.
func checkH264Encoders(ctx context.Context, bin string, log Logger) {
	log.Info("H.264 encoders:")
	out, err := output(ctx, bin, "-hide_banner", "-encoders")
	if err != nil {
		log.Warn("Could not list encoders: %v", err)
		return
	}
	for _, line := range strings.Split(out, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "h264") || strings.Contains(lower, "264") {
			log.Info("  %s", strings.TrimSpace(line))
		}
	}
}

// CheckDeps is the pre-batch validation: ffmpeg must resolve, the encoder
// for the selected hardware mode must pass a short test encode and every
// filter the renders use must exist. A missing ffprobe is logged as a
// warning. Returns a sentinel error (wrapped with detail) on failure.
func CheckDeps(ctx context.Context, cfg *config.Config, log Logger) error {
	if _, err := exec.LookPath(cfg.Tools.FFmpeg); err != nil {
		return fmt.Errorf("%w: %s", ErrFfmpegNotFound, cfg.Tools.FFmpeg)
	}
	if _, err := exec.LookPath(cfg.Tools.FFprobe); err != nil {
		warnNoProbe(cfg, log)
	}

	hw, err := style.ParseHardwareMode(cfg.Hardware)
	if err != nil {
		return err
	}
	enc := ffmpeg.EncoderFor(hw)
	if !runSilent(ctx, cfg.Tools.FFmpeg, encodeTestArgs(enc)...) {
		return fmt.Errorf("%w: %s (%s)", ErrEncoderFailed, enc.Codec, hw.Label())
	}

	missing, err := missingFilters(ctx, cfg.Tools.FFmpeg, requiredFilters(cfg))
	if err != nil {
		return fmt.Errorf("list filters: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrFilterMissing, strings.Join(missing, ", "))
	}
	return nil
}

// --- internal helpers ---

func warnNoProbe(cfg *config.Config, log Logger) {
	log.Warn("%v (%s); every clip will use the %.0fs fallback duration",
		ErrFfprobeNotFound, cfg.Tools.FFprobe, probe.FallbackDuration)
}

// encodeTestArgs returns the ffmpeg arguments for a minimal test encode.
// The frame is the output canvas size so NVENC minimum-size limits hold.
func encodeTestArgs(enc ffmpeg.Encoder) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=1080x1920:d=0.1",
		"-c:v", enc.Codec, "-preset", enc.Preset,
		"-f", "null", "-",
	}
}

func aacTestArgs() []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=0.1",
		"-c:a", "aac", "-f", "null", "-",
	}
}

// missingFilters returns the filters in want that ffmpeg does not list.
func missingFilters(ctx context.Context, bin string, want []string) ([]string, error) {
	out, err := output(ctx, bin, "-hide_banner", "-filters")
	if err != nil {
		return nil, err
	}
	have := ParseFilters(out)
	var missing []string
	for _, f := range want {
		if !have[f] {
			missing = append(missing, f)
		}
	}
	return missing, nil
}

// ParseFilters extracts filter names from `ffmpeg -filters` output, whose
// rows look like " TSC xfade  VV->V  Cross fade one video with another".
func ParseFilters(out string) map[string]bool {
	names := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || !strings.Contains(fields[2], "->") {
			continue
		}
		names[fields[1]] = true
	}
	return names
}

func output(ctx context.Context, bin string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, testTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, bin, args...).Output()
	return string(out), err
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(ctx context.Context, name string, args ...string) bool {
	ctx, cancel := context.WithTimeout(ctx, testTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
