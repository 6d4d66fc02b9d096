package pipeline

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/reelmaster/internal/display"
	"github.com/backmassage/reelmaster/internal/planner"
	"github.com/backmassage/reelmaster/internal/probe"
	"github.com/backmassage/reelmaster/internal/style"
	"github.com/backmassage/reelmaster/internal/term"
)

// AnalyzeLogger adds the outlier level used by the timing preview.
type AnalyzeLogger interface {
	Logger
	Outlier(string, ...interface{})
}

// TimingRow is one job of the timing preview.
type TimingRow struct {
	Index     int
	Primary   string
	Secondary string
	Primary0  float64 // Probed primary duration.
	Second0   float64 // Probed secondary duration.
	Timing    planner.Timing
	Fallback  bool   // Either probe fell back to the default duration.
	Flag      string // "", "outlier", "extreme", "short" or "invalid".
}

// Preview probes every primary/secondary pairing the batch would render and
// computes its timing without planning or rendering anything. Primary
// durations are flagged with IQR outlier bounds; a cap that ends before the
// title window closes is flagged "short", a non-positive cap "invalid".
func Preview(ctx context.Context, in Inputs, win style.Window, prober Prober, progress io.Writer) ([]TimingRow, error) {
	pools, err := Discover(in)
	if err != nil {
		return nil, err
	}

	total := pools.Primary.Len()
	rows := make([]TimingRow, 0, total)
	durations := make([]float64, 0, total)
	cache := make(map[string]float64)
	fell := make(map[string]bool)

	dur := func(path string) float64 {
		if d, ok := cache[path]; ok {
			return d
		}
		c, _ := prober.Clip(ctx, path)
		cache[path] = c.Duration
		fell[path] = c.Fallback
		return c.Duration
	}

	for i, p := range pools.Primary.Entries {
		if err := ctx.Err(); err != nil {
			clearProgress(progress)
			return rows, err
		}
		printProgress(progress, i+1, total, filepath.Base(p))

		s := pools.Secondary.Entries[i%pools.Secondary.Len()]
		d := planner.Durations{Primary: dur(p), Secondary: dur(s)}
		rows = append(rows, TimingRow{
			Index:     i,
			Primary:   p,
			Secondary: s,
			Primary0:  d.Primary,
			Second0:   d.Secondary,
			Timing:    planner.ComputeTiming(d),
			Fallback:  fell[p] || fell[s],
		})
		if !fell[p] {
			durations = append(durations, d.Primary)
		}
	}
	clearProgress(progress)

	bounds := computeStats(durations)
	for i := range rows {
		rows[i].Flag = flagRow(rows[i], bounds, win)
	}
	return rows, nil
}

func flagRow(r TimingRow, b iqrBounds, win style.Window) string {
	switch {
	case r.Timing.DurationCap <= 0:
		return "invalid"
	case r.Timing.DurationCap < win.End:
		return "short"
	}
	if r.Fallback {
		return ""
	}
	return b.classify(r.Primary0)
}

// Analyze prints the timing preview as a table followed by a summary.
func Analyze(ctx context.Context, in Inputs, win style.Window, prober Prober, out io.Writer, log AnalyzeLogger) error {
	log.Info("Previewing timing for %s …", in.PrimaryDir)
	rows, err := Preview(ctx, in, win, prober, out)
	if err != nil {
		log.Error("Preview failed: %v", err)
		return err
	}
	printTimingTable(out, rows)
	printTimingSummary(log, rows, computeStats(primaryDurations(rows)))
	return nil
}

func primaryDurations(rows []TimingRow) []float64 {
	var vals []float64
	for _, r := range rows {
		if !r.Fallback {
			vals = append(vals, r.Primary0)
		}
	}
	return vals
}

// iqrBounds holds the IQR-based thresholds for outlier classification.
type iqrBounds struct {
	q1, q3    float64
	outlierLo float64 // Q1 - 1.5*IQR
	outlierHi float64 // Q3 + 1.5*IQR
	extremeLo float64 // Q1 - 3.0*IQR
	extremeHi float64 // Q3 + 3.0*IQR
	valid     bool
}

func computeStats(vals []float64) iqrBounds {
	if len(vals) < 4 {
		return iqrBounds{}
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)
	iqr := q3 - q1

	return iqrBounds{
		q1:        q1,
		q3:        q3,
		outlierLo: q1 - 1.5*iqr,
		outlierHi: q3 + 1.5*iqr,
		extremeLo: q1 - 3.0*iqr,
		extremeHi: q3 + 3.0*iqr,
		valid:     iqr > 0,
	}
}

// classify returns "" (normal), "outlier", or "extreme" for a value.
func (b *iqrBounds) classify(v float64) string {
	if !b.valid || v <= 0 {
		return ""
	}
	if v < b.extremeLo || v > b.extremeHi {
		return "extreme"
	}
	if v < b.outlierLo || v > b.outlierHi {
		return "outlier"
	}
	return ""
}

func printTimingTable(w io.Writer, rows []TimingRow) {
	heads := []string{"#", "Primary", "Dur", "Secondary", "Dur", "Offset", "Cap"}
	cells := make([][]string, len(rows))
	widths := make([]int, len(heads))
	for i, h := range heads {
		widths[i] = len(h)
	}
	for i, r := range rows {
		dp := fmtSeconds(r.Primary0)
		if r.Fallback {
			dp += "?"
		}
		cells[i] = []string{
			fmt.Sprint(r.Index + 1),
			truncate(filepath.Base(r.Primary), 40),
			dp,
			truncate(filepath.Base(r.Secondary), 40),
			fmtSeconds(r.Second0),
			fmtSeconds(r.Timing.Offset),
			fmtSeconds(r.Timing.DurationCap),
		}
		for j, c := range cells[i] {
			if n := len([]rune(c)); n > widths[j] {
				widths[j] = n
			}
		}
	}

	header := "  " + padRow(heads, widths)
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, "  "+strings.Repeat("─", len(header)-2))
	for i, r := range rows {
		c := cells[i]
		// Pad the plain text first, then wrap in ANSI color so escape bytes
		// never count toward the column width.
		c[2] = colorPad(c[2], widths[2], r.Flag)
		c[6] = colorPad(c[6], widths[6], capClass(r.Flag))
		line := fmt.Sprintf("  %*s  %-*s  %s  %-*s  %*s  %*s  %s  %s",
			widths[0], c[0], widths[1], c[1], c[2], widths[3], c[3],
			widths[4], c[4], widths[5], c[5], c[6], formatFlag(r.Flag))
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	fmt.Fprintln(w)
}

func padRow(cols []string, widths []int) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%-*s", widths[i], c)
	}
	return strings.Join(parts, "  ")
}

func printTimingSummary(log AnalyzeLogger, rows []TimingRow, b iqrBounds) {
	counts := map[string]int{}
	var fallbacks int
	var totalCap float64
	for _, r := range rows {
		counts[r.Flag]++
		if r.Fallback {
			fallbacks++
		}
		if r.Timing.DurationCap > 0 {
			totalCap += r.Timing.DurationCap
		}
	}

	log.Info("Previewed %d jobs, %s of output", len(rows), display.FormatSeconds(totalCap))
	if b.valid {
		log.Info("  Primary duration IQR: %.1f – %.1f s (outlier < %.1f or > %.1f)",
			b.q1, b.q3, b.outlierLo, b.outlierHi)
	}
	if fallbacks > 0 {
		log.Warn("  %d job(s) use the %.0fs fallback duration [?]", fallbacks, probe.FallbackDuration)
	}
	if n := counts["outlier"]; n > 0 {
		log.Outlier("  %d outlier(s) flagged [*]", n)
	}
	if n := counts["extreme"]; n > 0 {
		log.Error("  %d extreme outlier(s) flagged [!]", n)
	}
	if n := counts["short"]; n > 0 {
		log.Warn("  %d job(s) end before the title window closes [short]", n)
	}
	if n := counts["invalid"]; n > 0 {
		log.Error("  %d job(s) have a non-positive duration cap and will fail [x]", n)
	}
	if len(rows) == counts[""] {
		log.Success("  No timing problems detected")
	}
}

func capClass(flag string) string {
	switch flag {
	case "short":
		return "outlier"
	case "invalid":
		return "extreme"
	}
	return ""
}

func formatFlag(flag string) string {
	switch flag {
	case "extreme":
		return term.Red + "[!]" + term.NC
	case "outlier":
		return term.Orange + "[*]" + term.NC
	case "short":
		return term.Yellow + "[short]" + term.NC
	case "invalid":
		return term.Red + "[x]" + term.NC
	default:
		return ""
	}
}

// colorPad pads a plain string to width, then wraps in ANSI color.
func colorPad(s string, width int, class string) string {
	padded := fmt.Sprintf("%*s", width, s)
	switch class {
	case "extreme", "invalid":
		return term.Red + padded + term.NC
	case "outlier", "short":
		return term.Orange + padded + term.NC
	default:
		return padded
	}
}

func fmtSeconds(s float64) string { return fmt.Sprintf("%.2f", s) }

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// printProgress shows a live probe counter on a TTY; otherwise it is a no-op.
func printProgress(w io.Writer, current, total int, name string) {
	if !term.IsTerminal(w) {
		return
	}
	status := fmt.Sprintf("  Probing [%d/%d] %d%% %s", current, total, current*100/total, truncate(name, 40))
	if n := len([]rune(status)); n < 80 {
		status += strings.Repeat(" ", 80-n)
	}
	fmt.Fprintf(w, "\r%s", status)
}

// clearProgress erases the inline progress line on a TTY.
func clearProgress(w io.Writer) {
	if term.IsTerminal(w) {
		fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", 80))
	}
}

// percentile computes the p-th percentile using linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi || hi >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
