package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/backmassage/reelmaster/internal/display"
	"github.com/backmassage/reelmaster/internal/ffmpeg"
	"github.com/backmassage/reelmaster/internal/naming"
	"github.com/backmassage/reelmaster/internal/planner"
	"github.com/backmassage/reelmaster/internal/probe"
	"github.com/backmassage/reelmaster/internal/report"
	"github.com/backmassage/reelmaster/internal/selection"
	"github.com/backmassage/reelmaster/internal/style"
)

// Error kinds recorded for failures that happen before ffmpeg runs.
const (
	KindMissingInput = "missing-input"
	KindPlan         = "plan"
	KindSelection    = "selection"
)

// Prober reports a clip's duration and audio presence. Implementations
// must always return a usable Clip; the error only explains a fallback.
type Prober interface {
	Clip(ctx context.Context, path string) (probe.Clip, error)
}

// Renderer executes one plan synchronously.
type Renderer interface {
	Args(plan *planner.RenderPlan) []string
	Render(ctx context.Context, plan *planner.RenderPlan) ffmpeg.Outcome
}

// Logger is the minimal logging interface the orchestrator needs.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Render(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// Output controls where and how results are named.
type Output struct {
	Dir    string
	Prefix string // Default "reel".
	Ext    string // Default "mp4".
}

// Options configure one batch. Style is copied by value and never re-read
// from anywhere else during the run.
type Options struct {
	Style   style.Config
	Inputs  Inputs
	Output  Output
	Rand    *rand.Rand // Seeded sampler for selection; nil seeds from the runtime.
	BatchID string     // Defaults to a random UUID.
	DryRun  bool
	Verbose bool

	// Progress, when set, is called from the batch goroutine after every job.
	Progress func(Progress)

	now func() time.Time
}

// Orchestrator drives a single batch from validation to completion.
type Orchestrator struct {
	opts     Options
	prober   Prober
	renderer Renderer
	log      Logger

	mu       sync.Mutex
	state    State
	progress Progress
	agg      *report.Aggregator

	// Set once the probe tool is known to be missing; batch goroutine only.
	probeMissing bool
}

// New returns an Orchestrator in [StateNotStarted].
func New(opts Options, prober Prober, renderer Renderer, log Logger) *Orchestrator {
	if opts.BatchID == "" {
		opts.BatchID = uuid.NewString()
	}
	if opts.now == nil {
		opts.now = time.Now
	}
	return &Orchestrator{
		opts:     opts,
		prober:   prober,
		renderer: renderer,
		log:      log,
		state:    StateNotStarted,
		progress: Progress{State: StateNotStarted},
	}
}

// State returns the current batch state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Progress returns the latest progress snapshot.
func (o *Orchestrator) Progress() Progress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progress
}

// Snapshot returns a copy of the report so far. Before validation finishes
// it has no results.
func (o *Orchestrator) Snapshot() report.Report {
	o.mu.Lock()
	agg := o.agg
	o.mu.Unlock()
	if agg == nil {
		return report.Report{BatchID: o.opts.BatchID, State: string(o.State())}
	}
	return agg.Snapshot()
}

func (o *Orchestrator) setState(to State) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !isValidTransition(o.state, to) {
		return &transitionError{From: o.state, To: to}
	}
	o.state = to
	o.progress.State = to
	return nil
}

// Handle is the future returned by [Orchestrator.Start].
type Handle struct {
	g   errgroup.Group
	rep report.Report
}

// Wait blocks until the batch finishes and returns its report. The error is
// non-nil only when the batch was aborted or cancelled; per-job failures are
// in the report (see [report.Report.Err]).
func (h *Handle) Wait() (report.Report, error) {
	err := h.g.Wait()
	return h.rep, err
}

// Start runs the batch on its own goroutine and returns immediately.
func (o *Orchestrator) Start(ctx context.Context) *Handle {
	h := &Handle{}
	h.g.Go(func() error {
		rep, err := o.Run(ctx)
		h.rep = rep
		return err
	})
	return h
}

// Run executes the batch synchronously: validate pools, then process every
// job in order. Job i's result is recorded before job i+1 starts.
//
// It returns an error when validation fails (an *assets.EmptyPoolError,
// possibly several combined; no job runs) or when ctx is cancelled between
// jobs. A batch in which some jobs failed still completes with a nil error.
func (o *Orchestrator) Run(ctx context.Context) (report.Report, error) {
	if err := o.setState(StateValidating); err != nil {
		return report.Report{}, err
	}
	started := o.opts.now()

	pools, err := Discover(o.opts.Inputs)
	if err != nil {
		_ = o.setState(StateAborted)
		o.log.Error("Input validation failed: %v", err)
		return report.Report{BatchID: o.opts.BatchID, State: string(StateAborted), Started: started, Finished: o.opts.now()}, err
	}
	if err := o.checkCaptions(); err != nil {
		_ = o.setState(StateAborted)
		o.log.Error("Input validation failed: %v", err)
		return report.Report{BatchID: o.opts.BatchID, State: string(StateAborted), Started: started, Finished: o.opts.now()}, err
	}

	policy := selection.New(o.opts.Style, pools, o.opts.Rand)
	if policy.FontFallback {
		o.log.Warn("No font files in %s; using %s for every job", o.opts.Style.Font.Dir, policy.FixedFont().Label())
	}

	total := policy.JobCount()
	agg := report.NewAggregator(o.opts.BatchID, total, started)
	agg.SetDryRun(o.opts.DryRun)
	o.mu.Lock()
	o.agg = agg
	o.progress.Total = total
	o.mu.Unlock()

	if err := o.setState(StateRunning); err != nil {
		return agg.Snapshot(), err
	}
	o.logBatchHeader(pools, total)

	for i := 0; i < total; i++ {
		if ctx.Err() != nil {
			o.log.Warn("Interrupted after %d of %d jobs", i, total)
			_ = o.setState(StateCancelled)
			return agg.Finish(string(StateCancelled), o.opts.now()), ctx.Err()
		}

		jr := o.processJob(ctx, policy, i, total)
		if err := agg.Add(jr); err != nil {
			return agg.Snapshot(), err
		}
		o.advance(jr)
	}

	_ = o.setState(StateCompleted)
	rep := agg.Finish(string(StateCompleted), o.opts.now())
	o.logSummary(rep)
	return rep, nil
}

// checkCaptions validates the single caption file up front: a missing
// caption file would fail every job the same way.
func (o *Orchestrator) checkCaptions() error {
	c := o.opts.Style.Captions
	if !c.Enabled() {
		return nil
	}
	if _, err := os.Stat(c.File); err != nil {
		return &MissingInputError{Index: -1, Role: "captions", Path: c.File, Err: err}
	}
	return nil
}

func (o *Orchestrator) advance(jr report.JobResult) {
	o.mu.Lock()
	o.progress.Done++
	if jr.Succeeded {
		o.progress.Succeeded++
	} else {
		o.progress.Failed++
	}
	o.progress.Index = jr.Index
	o.progress.Name = jr.Name()
	o.progress.LastOK = jr.Succeeded
	o.progress.LastErr = jr.ErrorKind
	p := o.progress
	o.mu.Unlock()

	if o.opts.Progress != nil {
		o.opts.Progress(p)
	}
}

// processJob handles one primary clip: resolve → verify inputs → probe →
// plan → render. Every failure is converted into a failed JobResult.
func (o *Orchestrator) processJob(ctx context.Context, policy *selection.Policy, i, total int) report.JobResult {
	jr := report.JobResult{
		Index:      i,
		OutputPath: naming.OutputPath(o.opts.Output.Dir, o.opts.Output.Prefix, i, o.opts.Output.Ext),
	}

	// --- Resolve selection ---
	sel, err := policy.Resolve(i)
	if err != nil {
		o.log.Error("[%d/%d] Selection failed: %v", i+1, total, err)
		return failed(jr, KindSelection, err.Error())
	}
	jr.Primary, jr.Secondary, jr.Narration, jr.Music = sel.Primary, sel.Secondary, sel.Narration, sel.Music
	jr.Style = report.NewStyleSnapshot(o.opts.Style, sel.Font, sel.Palette, sel.Effect)

	o.log.Info("[%d/%d] %s", i+1, total, filepath.Base(sel.Primary))
	o.log.Debug(o.opts.Verbose, "  Secondary: %s | Narration: %s | Music: %s",
		filepath.Base(sel.Secondary), filepath.Base(sel.Narration), filepath.Base(sel.Music))
	o.log.Debug(o.opts.Verbose, "  Font: %s | Title: %s | Effect: %s",
		jr.Style.Font, sel.Palette.Title, sel.Effect)

	// --- Verify inputs ---
	if err := verifyInputs(i, sel); err != nil {
		o.log.Error("%v", err)
		return failed(jr, KindMissingInput, err.Error())
	}

	// --- Probe ---
	primary := o.probeClip(ctx, sel.Primary)
	secondary := o.probeClip(ctx, sel.Secondary)

	// --- Plan ---
	job := planner.RenderJob{
		Index:         i,
		Primary:       sel.Primary,
		Secondary:     sel.Secondary,
		Narration:     sel.Narration,
		Music:         sel.Music,
		Font:          sel.Font,
		Palette:       sel.Palette,
		Effect:        sel.Effect,
		OutputPath:    jr.OutputPath,
		PrimarySilent: !primary.HasAudio,
	}
	if job.PrimarySilent {
		o.log.Warn("  Primary clip has no audio; mixing narration and music only")
	}
	plan, err := planner.Plan(job, o.opts.Style, planner.Durations{Primary: primary.Duration, Secondary: secondary.Duration})
	if err != nil {
		o.log.Error("  Planning failed: %v", err)
		return failed(jr, KindPlan, err.Error())
	}
	jr.DurationCap = plan.Timing.DurationCap
	o.log.Debug(o.opts.Verbose, "  Offset %.2fs, cap %.2fs", plan.Timing.Offset, plan.Timing.DurationCap)
	o.log.Debug(o.opts.Verbose, "  Command: %s", strings.Join(o.renderer.Args(plan), " "))

	// --- Dry-run ---
	if o.opts.DryRun {
		o.log.Success("  [DRY] Would render -> %s", filepath.Base(jr.OutputPath))
		jr.Succeeded = true
		return jr
	}

	// --- Render ---
	o.log.Render("  Rendering -> %s", filepath.Base(jr.OutputPath))
	out := o.renderer.Render(ctx, plan)
	jr.Elapsed = out.Elapsed
	if !out.Succeeded {
		o.log.Error("  Render failed (%s)", out.Kind)
		for _, l := range strings.Split(out.Diagnostic, "\n") {
			o.log.Error("    %s", l)
		}
		diag := out.Diagnostic
		if diag == "" && out.Err != nil {
			diag = out.Err.Error()
		}
		return failed(jr, string(out.Kind), diag)
	}

	jr.Succeeded = true
	jr.OutputSize = out.OutputSize
	o.log.Success("  Rendered in %s (%s)", display.FormatDuration(out.Elapsed), display.FormatBytes(out.OutputSize))
	return jr
}

// probeClip never fails: a clip that cannot be probed falls back to the
// default duration and may still render.
func (o *Orchestrator) probeClip(ctx context.Context, path string) probe.Clip {
	c, err := o.prober.Clip(ctx, path)
	switch {
	case err != nil && probe.IsToolMissing(err):
		if !o.probeMissing {
			o.probeMissing = true
			o.log.Warn("  Probe tool not found; every clip uses the %.0fs fallback duration", probe.FallbackDuration)
		}
	case err != nil:
		o.log.Warn("  Probe fell back to %.1fs for %s: %v", c.Duration, filepath.Base(path), err)
	default:
		o.log.Debug(o.opts.Verbose, "  Probed %s: %.2fs, %s", filepath.Base(path), c.Duration, c.Resolution)
	}
	return c
}

func verifyInputs(i int, sel selection.Selection) error {
	inputs := []struct{ role, path string }{
		{"primary", sel.Primary},
		{"secondary", sel.Secondary},
		{"narration", sel.Narration},
		{"music", sel.Music},
	}
	if sel.Font.File != "" {
		inputs = append(inputs, struct{ role, path string }{"font", sel.Font.File})
	}
	for _, in := range inputs {
		if _, err := os.Stat(in.path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return &MissingInputError{Index: i, Role: in.role, Path: in.path, Err: err}
			}
			return fmt.Errorf("job %d: %s input unreadable: %w", i+1, in.role, err)
		}
	}
	return nil
}

func failed(jr report.JobResult, kind, diag string) report.JobResult {
	jr.Succeeded = false
	jr.ErrorKind = kind
	if diag == "" {
		diag = kind
	}
	jr.Diagnostic = diag
	return jr
}

// --- Logging helpers ---

func (o *Orchestrator) logBatchHeader(pools selection.Pools, total int) {
	s := o.opts.Style
	o.log.Info("Batch %s: %d jobs", o.opts.BatchID, total)
	o.log.Info("Pools: %d primary, %d secondary, %d narration, %d music",
		pools.Primary.Len(), pools.Secondary.Len(), pools.Narration.Len(), pools.Music.Len())
	o.log.Info("Hardware: %s (%s)", s.Hardware.Label(), ffmpeg.EncoderFor(s.Hardware).Codec)
	o.log.Info("Title: %q at %gs-%gs, font %s, colors %s", s.Title, s.Window.Start, s.Window.End, s.Font.Mode, s.Palette.Mode)
	o.log.Info("Transition: %s", describeTransition(s.Transition))
	if s.Captions.Enabled() {
		o.log.Info("Captions: %s", s.Captions.File)
	}
	o.log.Info("Mix: primary %d%%, narration %d%%, music %d%%", s.Volumes.Primary, s.Volumes.Narration, s.Volumes.Music)
	if o.opts.DryRun {
		o.log.Warn("DRY RUN")
	}
}

func describeTransition(t style.TransitionSpec) string {
	if t.Mode == style.TransitionRandomJob {
		return "random per job"
	}
	return t.Effect
}

func (o *Orchestrator) logSummary(rep report.Report) {
	elapsed := rep.Finished.Sub(rep.Started)
	o.log.Info("=== Batch complete in %s ===", display.FormatDuration(elapsed))
	o.log.Info("Total: %d", rep.Total)
	o.log.Success("Succeeded: %d", rep.Succeeded())
	if n := rep.Failed(); n > 0 {
		o.log.Error("Failed: %d", n)
	} else {
		o.log.Info("Failed: 0")
	}
}
