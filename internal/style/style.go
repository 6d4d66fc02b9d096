// Package style holds the immutable per-batch style snapshot handed to the
// batch engine by whatever front end collected it.
//
// Every "random" behavior is an explicit mode on this snapshot. Modes are
// decided once when the snapshot is built and are never re-derived later.
package style

import (
	"fmt"
	"strings"
)

// FontMode selects how each job's title font is chosen.
type FontMode int

const (
	FontFixed         FontMode = iota // Every job uses Config.Font.Fixed.
	FontRandomFromDir                 // Each job draws one font file from Config.Font.Dir.
)

func (m FontMode) String() string {
	switch m {
	case FontRandomFromDir:
		return "random"
	default:
		return "fixed"
	}
}

// PaletteMode selects how title and caption colors are chosen.
type PaletteMode int

const (
	PaletteFixed     PaletteMode = iota // Reuse Config.Palette.Fixed for every job.
	PaletteRandomJob                    // Draw fresh colors for every job.
)

func (m PaletteMode) String() string {
	switch m {
	case PaletteRandomJob:
		return "random"
	default:
		return "fixed"
	}
}

// TransitionMode selects how the crossfade effect is chosen.
type TransitionMode int

const (
	TransitionFixed     TransitionMode = iota // Every job uses Config.Transition.Effect.
	TransitionRandomJob                       // Each job draws from Config.Transition.Effects.
)

func (m TransitionMode) String() string {
	switch m {
	case TransitionRandomJob:
		return "random"
	default:
		return "fixed"
	}
}

// HardwareMode selects the encoder/preset pair used for rendering.
type HardwareMode string

const (
	HardwareCPU HardwareMode = "cpu" // Portable software encoder.
	HardwareGPU HardwareMode = "gpu" // NVIDIA NVENC encoder.
)

// Label returns the human-readable name used in reports.
func (h HardwareMode) Label() string {
	if h == HardwareGPU {
		return "NVIDIA GPU acceleration"
	}
	return "CPU compatible"
}

// ParseHardwareMode converts user input into a HardwareMode.
func ParseHardwareMode(s string) (HardwareMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpu":
		return HardwareCPU, nil
	case "gpu", "nvenc", "nvidia":
		return HardwareGPU, nil
	default:
		return "", fmt.Errorf("invalid hardware mode %q (use 'cpu' or 'gpu')", s)
	}
}

// Effects is the fixed set of crossfade effects random mode draws from.
var Effects = []string{"fade", "wipeleft", "wiperight", "slideleft", "slideright"}

// IsKnownEffect reports whether name is one of [Effects].
func IsKnownEffect(name string) bool {
	for _, e := range Effects {
		if e == name {
			return true
		}
	}
	return false
}

// Font identifies a title font. File, when set, wins over Name.
type Font struct {
	Name string // fontconfig family name, e.g. "Arial".
	File string // Absolute path to a .ttf/.otf/.ttc file.
}

// Label returns the font's display name.
func (f Font) Label() string {
	if f.File != "" {
		base := f.File
		if i := strings.LastIndexAny(base, `/\`); i >= 0 {
			base = base[i+1:]
		}
		if j := strings.LastIndex(base, "."); j > 0 {
			base = base[:j]
		}
		return base
	}
	return f.Name
}

// DefaultFont is the fixed font used when nothing else resolves.
var DefaultFont = Font{Name: "Arial"}

// FontSpec is the font selection rule.
type FontSpec struct {
	Mode  FontMode
	Fixed Font
	Dir   string // Scanned once per batch in FontRandomFromDir mode.
}

// Palette is one resolved set of colors, each "#RRGGBB".
type Palette struct {
	Title         string
	TitleBorder   string
	Caption       string
	CaptionBorder string
}

// PaletteSpec is the color selection rule.
type PaletteSpec struct {
	Mode  PaletteMode
	Fixed Palette
}

// TransitionSpec is the crossfade effect selection rule.
type TransitionSpec struct {
	Mode    TransitionMode
	Effect  string
	Effects []string
}

// Window is the title display window in output seconds.
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Captions configures optional subtitle burn-in. Captions are enabled when
// File is non-empty.
type Captions struct {
	File    string
	Size    int
	Outline int
	MarginV int
}

// Enabled reports whether captions are burned in.
func (c Captions) Enabled() bool { return c.File != "" }

// Volumes are percent gains for the three mixed audio sources.
type Volumes struct {
	Primary   int
	Narration int
	Music     int
}

// Config is the immutable style snapshot for one batch. It is passed by value.
type Config struct {
	Title       string
	TitleSize   int
	TitleBorder int
	Window      Window

	Font       FontSpec
	Palette    PaletteSpec
	Transition TransitionSpec
	Captions   Captions
	Volumes    Volumes
	Hardware   HardwareMode
}

// Default returns the snapshot used when the front end supplies nothing.
func Default() Config {
	return Config{
		Title:       "NelsonCreations",
		TitleSize:   80,
		TitleBorder: 3,
		Window:      Window{Start: 2, End: 8},
		Font:        FontSpec{Mode: FontFixed, Fixed: DefaultFont},
		Palette: PaletteSpec{
			Mode: PaletteFixed,
			Fixed: Palette{
				Title:         "#FF6B35",
				TitleBorder:   "#000000",
				Caption:       "#FFFFFF",
				CaptionBorder: "#000000",
			},
		},
		Transition: TransitionSpec{Mode: TransitionRandomJob, Effect: "fade", Effects: Effects},
		Captions:   Captions{Size: 24, Outline: 2, MarginV: 50},
		Volumes:    Volumes{Primary: 50, Narration: 100, Music: 30},
		Hardware:   HardwareCPU,
	}
}
