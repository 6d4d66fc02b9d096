package planner

import (
	"strconv"
	"strings"
)

// Input is one ffmpeg input file in order. Loop repeats it indefinitely
// (-stream_loop -1), which is why every plan carries a duration cap.
type Input struct {
	Path string
	Loop bool
}

// Arg is one filter option. An empty Key is a positional value.
type Arg struct {
	Key   string
	Value string
}

// Filter is a single named filter with its options.
type Filter struct {
	Name string
	Args []Arg
}

// String renders the filter as name=opt:opt.
func (f Filter) String() string {
	if len(f.Args) == 0 {
		return f.Name
	}
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		if a.Key == "" {
			parts[i] = a.Value
		} else {
			parts[i] = a.Key + "=" + a.Value
		}
	}
	return f.Name + "=" + strings.Join(parts, ":")
}

// Chain is a linear run of filters from labeled input pads to labeled
// output pads.
type Chain struct {
	Inputs  []string
	Filters []Filter
	Outputs []string
}

// String renders the chain as [in]f1,f2[out].
func (c Chain) String() string {
	var b strings.Builder
	for _, in := range c.Inputs {
		b.WriteString("[" + in + "]")
	}
	for i, f := range c.Filters {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.String())
	}
	for _, out := range c.Outputs {
		b.WriteString("[" + out + "]")
	}
	return b.String()
}

// Graph is an ordered, pad-labeled filter graph plus the output duration cap.
type Graph struct {
	Inputs      []Input
	Chains      []Chain
	Outputs     []string // Pads mapped into the output file, in -map order.
	DurationCap float64
}

// String serializes the graph for -filter_complex.
func (g *Graph) String() string {
	parts := make([]string, len(g.Chains))
	for i, c := range g.Chains {
		parts[i] = c.String()
	}
	return strings.Join(parts, ";")
}

// Chain returns the chain producing the output pad label, or nil.
func (g *Graph) Chain(label string) *Chain {
	for i := range g.Chains {
		for _, out := range g.Chains[i].Outputs {
			if out == label {
				return &g.Chains[i]
			}
		}
	}
	return nil
}

// Validate checks that every consumed pad is either an input stream
// reference or produced by an earlier chain, and that every output pad is
// produced exactly once.
func (g *Graph) Validate() error {
	produced := make(map[string]bool)
	for _, c := range g.Chains {
		for _, in := range c.Inputs {
			if isStreamRef(in, len(g.Inputs)) {
				continue
			}
			if !produced[in] {
				return &GraphError{Pad: in, Reason: "consumed before it is produced"}
			}
		}
		for _, out := range c.Outputs {
			if produced[out] {
				return &GraphError{Pad: out, Reason: "produced twice"}
			}
			produced[out] = true
		}
	}
	for _, out := range g.Outputs {
		if !produced[out] {
			return &GraphError{Pad: out, Reason: "mapped but never produced"}
		}
	}
	return nil
}

// GraphError reports a malformed graph.
type GraphError struct {
	Pad    string
	Reason string
}

func (e *GraphError) Error() string {
	return "filter graph: pad [" + e.Pad + "] " + e.Reason
}

// isStreamRef reports whether label is "<n>:v" or "<n>:a" for an existing input.
func isStreamRef(label string, nInputs int) bool {
	idx, kind, ok := strings.Cut(label, ":")
	if !ok || (kind != "v" && kind != "a") {
		return false
	}
	n, err := strconv.Atoi(idx)
	return err == nil && n >= 0 && n < nInputs
}

// Small constructors keep graph assembly readable.

func filter(name string, args ...Arg) Filter { return Filter{Name: name, Args: args} }

func pos(v string) Arg { return Arg{Value: v} }

func kv(k, v string) Arg { return Arg{Key: k, Value: v} }

// fmt2 formats seconds and gains with two decimals, as ffmpeg expects them.
func fmt2(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }

// fmtNum formats a user-facing number without trailing zeros ("2", "2.5").
func fmtNum(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
