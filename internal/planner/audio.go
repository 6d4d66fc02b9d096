package planner

import "github.com/backmassage/reelmaster/internal/style"

// gain converts a percent volume to the filter's linear factor.
func gain(percent int) string { return fmt2(float64(percent) / 100) }

// audioChains trims the primary audio by the same lead-in as its video,
// applies the three gains and mixes the result. Narration and music are
// looped at the input level, so the mix never runs dry before the cap.
func audioChains(job RenderJob, v style.Volumes) []Chain {
	var chains []Chain
	var mixIn []string

	if !job.PrimarySilent {
		chains = append(chains, Chain{
			Inputs: []string{"0:a"},
			Filters: []Filter{
				filter("atrim", kv("start", fmtNum(LeadIn))),
				filter("asetpts", pos("PTS-STARTPTS")),
				filter("volume", pos(gain(v.Primary))),
			},
			Outputs: []string{"a0"},
		})
		mixIn = append(mixIn, "a0")
	}

	chains = append(chains,
		Chain{Inputs: []string{"2:a"}, Filters: []Filter{filter("volume", pos(gain(v.Narration)))}, Outputs: []string{"av"}},
		Chain{Inputs: []string{"3:a"}, Filters: []Filter{filter("volume", pos(gain(v.Music)))}, Outputs: []string{"am"}},
	)
	mixIn = append(mixIn, "av", "am")

	// dropout_transition=0 keeps the mix level steady when one input
	// underflows instead of ramping the others.
	chains = append(chains, Chain{
		Inputs: mixIn,
		Filters: []Filter{filter("amix",
			kv("inputs", fmtNum(float64(len(mixIn)))),
			kv("dropout_transition", "0"),
		)},
		Outputs: []string{AudioOut},
	})
	return chains
}
