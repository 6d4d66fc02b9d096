package pipeline

import (
	"go.uber.org/multierr"

	"github.com/backmassage/reelmaster/internal/assets"
	"github.com/backmassage/reelmaster/internal/selection"
)

// Inputs are the four pool directories and the extensions each accepts.
type Inputs struct {
	PrimaryDir    string
	SecondaryDir  string
	NarrationDir  string
	MusicDir      string
	VideoExts     []string // Primary and secondary pools.
	NarrationExts []string
	MusicExts     []string
}

func (in Inputs) withDefaults() Inputs {
	if len(in.VideoExts) == 0 {
		in.VideoExts = assets.MediaExtensions
	}
	if len(in.NarrationExts) == 0 {
		in.NarrationExts = assets.MediaExtensions
	}
	if len(in.MusicExts) == 0 {
		in.MusicExts = assets.MediaExtensions
	}
	return in
}

// Discover scans every required pool once. Each empty or unreadable pool
// contributes an *assets.EmptyPoolError; all of them are returned combined
// so the user sees every problem in one run.
func Discover(in Inputs) (selection.Pools, error) {
	in = in.withDefaults()

	var errs error
	scan := func(name, dir string, exts []string) *assets.Pool {
		p, err := assets.Scan(name, dir, exts)
		errs = multierr.Append(errs, err)
		return p
	}

	pools := selection.Pools{
		Primary:   scan("primary", in.PrimaryDir, in.VideoExts),
		Secondary: scan("secondary", in.SecondaryDir, in.VideoExts),
		Narration: scan("narration", in.NarrationDir, in.NarrationExts),
		Music:     scan("music", in.MusicDir, in.MusicExts),
	}
	return pools, errs
}
