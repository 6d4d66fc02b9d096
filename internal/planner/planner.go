package planner

import (
	"fmt"
	"math"

	"github.com/backmassage/reelmaster/internal/style"
)

// ComputeTiming derives the sped-up primary length, the crossfade offset and
// the output duration cap from the probed durations.
func ComputeTiming(d Durations) Timing {
	adjusted := d.Primary / Speed
	return Timing{
		Adjusted:    adjusted,
		Offset:      math.Max(MinOffset, adjusted-TransitionMargin),
		DurationCap: adjusted + d.Secondary - Overlap,
	}
}

// Plan produces the complete RenderPlan for one job. This is the central
// decision point the orchestrator calls once per job.
//
// Flow:
//  1. Timing: adjusted duration, crossfade offset, duration cap
//  2. Video: speed-up, normalize, lead-in trim, crossfade, pixel format
//  3. Overlay: title drawtext with the opacity envelope, optional captions
//  4. Audio: primary trim + gains, looped narration and music, amix
func Plan(job RenderJob, cfg style.Config, d Durations) (*RenderPlan, error) {
	if job.Effect == "" {
		return nil, fmt.Errorf("job %d: no transition effect resolved", job.Index)
	}

	// --- 1. Timing ---
	t := ComputeTiming(d)
	if t.DurationCap <= 0 {
		return nil, fmt.Errorf("job %d: clips too short (primary %.2fs, secondary %.2fs) give a non-positive duration cap %.2fs",
			job.Index, d.Primary, d.Secondary, t.DurationCap)
	}

	// --- 2. Video ---
	g := &Graph{
		Inputs: []Input{
			{Path: job.Primary},
			{Path: job.Secondary},
			{Path: job.Narration, Loop: true},
			{Path: job.Music, Loop: true},
		},
		Outputs:     []string{VideoOut, AudioOut},
		DurationCap: t.DurationCap,
	}
	g.Chains = append(g.Chains, primaryVideo(), secondaryVideo(), crossfade(job.Effect, t.Offset))

	// --- 3. Overlay ---
	ov, err := overlay(job, cfg)
	if err != nil {
		return nil, fmt.Errorf("job %d: %w", job.Index, err)
	}
	g.Chains = append(g.Chains, ov)

	// --- 4. Audio ---
	g.Chains = append(g.Chains, audioChains(job, cfg.Volumes)...)

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("job %d: %w", job.Index, err)
	}

	return &RenderPlan{
		Job:      job,
		Timing:   t,
		Graph:    g,
		Hardware: cfg.Hardware,
	}, nil
}
