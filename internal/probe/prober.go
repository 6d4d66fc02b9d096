package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Prober runs ffprobe. The zero value uses "ffprobe" from PATH with no timeout.
type Prober struct {
	Bin     string        // ffprobe binary; defaults to "ffprobe".
	Timeout time.Duration // Per-call limit; 0 disables.
}

// New returns a Prober for bin with the given per-call timeout.
func New(bin string, timeout time.Duration) *Prober {
	return &Prober{Bin: bin, Timeout: timeout}
}

func (p *Prober) bin() string {
	if p == nil || p.Bin == "" {
		return "ffprobe"
	}
	return p.Bin
}

// Inspect runs one ffprobe JSON call against path.
func (p *Prober) Inspect(ctx context.Context, path string) (*Info, error) {
	if p != nil && p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, p.bin(),
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, &ProbeError{Path: path, Err: ctx.Err()}
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return nil, &ProbeError{Path: path, Err: err}
	}

	info, err := ParseJSON(out)
	if err != nil {
		return nil, &ProbeError{Path: path, Err: err}
	}
	info.Path = path
	return info, nil
}

// Duration returns path's duration in seconds. On any failure (missing
// tool, non-zero exit, malformed output, timeout, non-positive duration) it
// returns [FallbackDuration] together with a *ProbeError describing why.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	info, err := p.Inspect(ctx, path)
	if err != nil {
		return FallbackDuration, err
	}
	if info.Duration <= 0 {
		return FallbackDuration, &ProbeError{Path: path, Err: ErrNoDuration}
	}
	return info.Duration, nil
}

// Clip is what planning needs about one input, with fallbacks applied.
type Clip struct {
	Duration float64
	HasAudio bool // Assumed true when the clip could not be probed.
	Fallback bool // Duration is FallbackDuration because probing failed.

	Resolution string // "WxH", "unknown", or empty when probing failed.
}

// Clip probes path once and returns its duration and audio presence. Like
// [Prober.Duration] it never fails outright: the returned Clip is always
// usable and a non-nil error only explains the fallback.
func (p *Prober) Clip(ctx context.Context, path string) (Clip, error) {
	info, err := p.Inspect(ctx, path)
	if err != nil {
		return Clip{Duration: FallbackDuration, HasAudio: true, Fallback: true}, err
	}
	if info.Duration <= 0 {
		return Clip{Duration: FallbackDuration, HasAudio: info.HasAudio, Fallback: true, Resolution: info.Resolution()},
			&ProbeError{Path: path, Err: ErrNoDuration}
	}
	return Clip{Duration: info.Duration, HasAudio: info.HasAudio, Resolution: info.Resolution()}, nil
}

// IsToolMissing reports whether err came from a missing ffprobe binary.
func IsToolMissing(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// ParseJSON converts raw ffprobe JSON output into an Info.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*Info, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	info := &Info{Path: raw.Format.Filename, Duration: parseFloat(raw.Format.Duration)}
	for _, s := range raw.Streams {
		switch s.CodecType {
		case "video":
			if s.Disposition["attached_pic"] == 1 || info.HasVideo {
				continue
			}
			info.HasVideo = true
			info.Width, info.Height = s.Width, s.Height
			// Some containers only report duration per stream.
			if info.Duration <= 0 {
				info.Duration = parseFloat(s.Duration)
			}
		case "audio":
			info.HasAudio = true
			if info.Duration <= 0 {
				info.Duration = parseFloat(s.Duration)
			}
		}
	}
	return info, nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

type ffprobeStream struct {
	Index       int            `json:"index"`
	CodecType   string         `json:"codec_type"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Duration    string         `json:"duration"`
	Disposition map[string]int `json:"disposition"`
}

// ffprobe returns numbers as strings.
func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
