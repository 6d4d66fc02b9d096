// Package selection decides, per job index, which clips, font, colors and
// crossfade effect a render uses.
//
// Primary and secondary clips are paired deterministically by index.
// Narration, music, and every "random" style mode draw from a caller-supplied
// *rand.Rand so a fixed seed reproduces a batch exactly.
package selection

import (
	"fmt"
	"math/rand/v2"

	"github.com/backmassage/reelmaster/internal/assets"
	"github.com/backmassage/reelmaster/internal/style"
)

// Pools are the four clip pools of a batch. Primary and Secondary must be
// sorted; Narration and Music are sampled with replacement.
type Pools struct {
	Primary   *assets.Pool
	Secondary *assets.Pool
	Narration *assets.Pool
	Music     *assets.Pool
}

// Required returns the pools in validation order.
func (p Pools) Required() []*assets.Pool {
	return []*assets.Pool{p.Primary, p.Secondary, p.Narration, p.Music}
}

// Selection is everything resolved for one job before planning.
type Selection struct {
	Index     int
	Primary   string
	Secondary string
	Narration string
	Music     string
	Font      style.Font
	Palette   style.Palette
	Effect    string
}

// Policy resolves selections for a batch. It is not safe for concurrent use;
// the orchestrator calls it from a single goroutine.
type Policy struct {
	cfg   style.Config
	pools Pools
	rng   *rand.Rand
	fonts []string

	// FontFallback is true when random fonts were requested but the font
	// directory yielded nothing.
	FontFallback bool
}

// New builds a Policy. In random-font mode the font directory is scanned
// once here; an unreadable or empty directory degrades every job to
// [Policy.FixedFont].
func New(cfg style.Config, pools Pools, rng *rand.Rand) *Policy {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	p := &Policy{cfg: cfg, pools: pools, rng: rng}
	if cfg.Font.Mode == style.FontRandomFromDir {
		fp, err := assets.Scan("font", cfg.Font.Dir, assets.FontExtensions)
		if err != nil {
			p.FontFallback = true
		} else {
			p.fonts = fp.Entries
		}
	}
	return p
}

// NewSeeded returns a *rand.Rand for seed. Seed 0 means "seed from the runtime".
func NewSeeded(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// JobCount is the number of jobs in the batch: one per primary clip.
func (p *Policy) JobCount() int {
	if p.pools.Primary == nil {
		return 0
	}
	return p.pools.Primary.Len()
}

// Fonts returns the font files found at batch start (random-font mode only).
func (p *Policy) Fonts() []string { return p.fonts }

// Resolve returns the selection for job i. Random draws happen in a fixed
// order (font, title color, caption color, effect, narration, music) so a
// seeded generator reproduces the same sequence across runs.
func (p *Policy) Resolve(i int) (Selection, error) {
	if i < 0 || i >= p.JobCount() {
		return Selection{}, fmt.Errorf("job index %d out of range [0,%d)", i, p.JobCount())
	}
	if p.pools.Secondary.Empty() || p.pools.Narration.Empty() || p.pools.Music.Empty() {
		return Selection{}, fmt.Errorf("job %d: selection pools not validated", i)
	}

	sel := Selection{
		Index:     i,
		Primary:   p.pools.Primary.Entries[i],
		Secondary: p.pools.Secondary.Entries[i%p.pools.Secondary.Len()],
	}
	sel.Font = p.font()
	sel.Palette = p.palette()
	sel.Effect = p.effect()
	sel.Narration = p.pick(p.pools.Narration.Entries)
	sel.Music = p.pick(p.pools.Music.Entries)
	return sel, nil
}

// FixedFont is the configured fixed font, or [style.DefaultFont] when none
// is set. Random-font mode falls back to it when no font files were found.
func (p *Policy) FixedFont() style.Font {
	if p.cfg.Font.Fixed == (style.Font{}) {
		return style.DefaultFont
	}
	return p.cfg.Font.Fixed
}

func (p *Policy) font() style.Font {
	if p.cfg.Font.Mode == style.FontRandomFromDir && len(p.fonts) > 0 {
		return style.Font{File: p.pick(p.fonts)}
	}
	return p.FixedFont()
}

func (p *Policy) palette() style.Palette {
	pal := p.cfg.Palette.Fixed
	if p.cfg.Palette.Mode != style.PaletteRandomJob {
		return pal
	}
	pal.Title = p.randomColor()
	if p.cfg.Captions.Enabled() {
		pal.Caption = p.randomColor()
		pal.CaptionBorder = "#000000"
	}
	return pal
}

func (p *Policy) effect() string {
	if p.cfg.Transition.Mode != style.TransitionRandomJob {
		return p.cfg.Transition.Effect
	}
	set := p.cfg.Transition.Effects
	if len(set) == 0 {
		set = style.Effects
	}
	return p.pick(set)
}

func (p *Policy) randomColor() string {
	return fmt.Sprintf("#%06X", p.rng.IntN(0x1000000))
}

func (p *Policy) pick(from []string) string {
	return from[p.rng.IntN(len(from))]
}
