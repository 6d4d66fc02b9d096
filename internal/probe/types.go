package probe

import (
	"errors"
	"fmt"
)

// FallbackDuration is the duration, in seconds, assumed for a clip that
// could not be probed.
const FallbackDuration = 10.0

// Info is the subset of ffprobe output planning needs.
type Info struct {
	Path     string
	Duration float64 // Seconds; 0 when the container does not report one.
	Width    int     // First non-attached-pic video stream.
	Height   int
	HasVideo bool
	HasAudio bool
}

// Resolution returns "WxH" for the video stream, or "unknown".
func (i *Info) Resolution() string {
	if i == nil || i.Width <= 0 || i.Height <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%dx%d", i.Width, i.Height)
}

// ErrNoDuration is wrapped by ProbeError when ffprobe succeeded but the
// payload carried no positive duration.
var ErrNoDuration = errors.New("no duration in ffprobe output")

// ProbeError records why a probe fell back. It is informational: callers
// continue with [FallbackDuration].
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %q: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }
