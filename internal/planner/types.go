package planner

import "github.com/backmassage/reelmaster/internal/style"

// Fixed composition constants.
const (
	Speed            = 1.2  // Primary playback-speed multiplier.
	LeadIn           = 1.0  // Seconds trimmed from the start of the primary.
	XfadeDuration    = 0.5  // Crossfade length in seconds.
	MinOffset        = 0.1  // Earliest crossfade start.
	TransitionMargin = 1.5  // Crossfade starts this long before the sped-up primary ends.
	Overlap          = 2.5  // Subtracted from the summed durations to form the cap.
	CanvasWidth      = 1080 // Output frame width.
	CanvasHeight     = 1920 // Output frame height.
	FrameRate        = 30
	PixelFormat      = "yuv420p"
	TitleY           = 250 // Title baseline offset from the top edge, in pixels.
)

// Pad labels of the final graph outputs.
const (
	VideoOut = "v_out"
	AudioOut = "a_out"
)

// RenderJob is one fully resolved unit of work. It is immutable once planned.
type RenderJob struct {
	Index      int
	Primary    string
	Secondary  string
	Narration  string
	Music      string
	Font       style.Font
	Palette    style.Palette
	Effect     string
	OutputPath string

	// PrimarySilent is set when probing showed the primary clip has no audio
	// stream; its audio stage is then left out of the mix.
	PrimarySilent bool
}

// Durations are the probed input durations, in seconds.
type Durations struct {
	Primary   float64
	Secondary float64
}

// Timing is the arithmetic derived from the primary and secondary durations.
type Timing struct {
	Adjusted    float64 // Primary duration after the speed-up.
	Offset      float64 // Crossfade start in output time.
	DurationCap float64 // Explicit output length limit passed to the render.
}

// RenderPlan is everything the render step needs for one job.
type RenderPlan struct {
	Job      RenderJob
	Timing   Timing
	Graph    *Graph
	Hardware style.HardwareMode
}
