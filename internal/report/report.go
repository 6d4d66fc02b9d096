// Package report collects per-job outcomes of a batch into an ordered,
// immutable report the front end reads once the batch completes.
package report

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/backmassage/reelmaster/internal/style"
)

// StyleSnapshot is the resolved style a job was rendered with.
type StyleSnapshot struct {
	Font            string       `json:"font"`
	TitleColor      string       `json:"title_color"`
	TitleBorder     string       `json:"title_border"`
	Window          style.Window `json:"window"`
	CaptionsEnabled bool         `json:"captions_enabled"`
	CaptionColor    string       `json:"caption_color,omitempty"`
	CaptionBorder   string       `json:"caption_border,omitempty"`
	CaptionMarginV  int          `json:"caption_margin_v,omitempty"`
	Effect          string       `json:"effect"`
	Hardware        string       `json:"hardware"`
}

// NewStyleSnapshot captures the batch-level style plus a job's resolved font,
// palette and effect.
func NewStyleSnapshot(cfg style.Config, font style.Font, pal style.Palette, effect string) StyleSnapshot {
	s := StyleSnapshot{
		Font:            font.Label(),
		TitleColor:      pal.Title,
		TitleBorder:     pal.TitleBorder,
		Window:          cfg.Window,
		CaptionsEnabled: cfg.Captions.Enabled(),
		Effect:          effect,
		Hardware:        cfg.Hardware.Label(),
	}
	if s.CaptionsEnabled {
		s.CaptionColor = pal.Caption
		s.CaptionBorder = pal.CaptionBorder
		s.CaptionMarginV = cfg.Captions.MarginV
	}
	return s
}

// JobResult is one job's outcome. It is never mutated after being added.
type JobResult struct {
	Index       int           `json:"index"`
	Primary     string        `json:"primary"`
	Secondary   string        `json:"secondary,omitempty"`
	Narration   string        `json:"narration,omitempty"`
	Music       string        `json:"music,omitempty"`
	OutputPath  string        `json:"output_path"`
	Succeeded   bool          `json:"succeeded"`
	ErrorKind   string        `json:"error_kind,omitempty"`
	Diagnostic  string        `json:"diagnostic,omitempty"`
	DurationCap float64       `json:"duration_cap,omitempty"`
	OutputSize  int64         `json:"output_size,omitempty"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	Style       StyleSnapshot `json:"style"`
}

// Name returns the primary clip's file name.
func (r JobResult) Name() string { return filepath.Base(r.Primary) }

// Report is the ordered outcome of a batch.
type Report struct {
	BatchID  string      `json:"batch_id"`
	State    string      `json:"state"`
	Started  time.Time   `json:"started"`
	Finished time.Time   `json:"finished,omitzero"`
	Total    int         `json:"total"`
	DryRun   bool        `json:"dry_run,omitempty"`
	Results  []JobResult `json:"results"`
}

// Succeeded counts successful jobs.
func (r Report) Succeeded() int {
	n := 0
	for _, jr := range r.Results {
		if jr.Succeeded {
			n++
		}
	}
	return n
}

// Failed counts failed jobs.
func (r Report) Failed() int { return len(r.Results) - r.Succeeded() }

// Err combines every job failure into one error, or nil when all succeeded.
func (r Report) Err() error {
	var errs error
	for _, jr := range r.Results {
		if jr.Succeeded {
			continue
		}
		kind := jr.ErrorKind
		if kind == "" {
			kind = "failed"
		}
		errs = multierr.Append(errs, fmt.Errorf("job %d (%s): %s", jr.Index+1, jr.Name(), kind))
	}
	return errs
}

// Aggregator accumulates results for one batch. Add is called from the
// orchestrator goroutine; Snapshot may be called concurrently from anywhere.
type Aggregator struct {
	mu  sync.Mutex
	rep Report
}

// NewAggregator starts a report for batchID with total expected jobs.
func NewAggregator(batchID string, total int, started time.Time) *Aggregator {
	return &Aggregator{rep: Report{
		BatchID: batchID,
		State:   "running",
		Started: started,
		Total:   total,
		Results: make([]JobResult, 0, total),
	}}
}

// SetDryRun marks the report as produced without rendering.
func (a *Aggregator) SetDryRun(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rep.DryRun = v
}

// Add appends a job result. Results must arrive in job order.
func (a *Aggregator) Add(jr JobResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n := len(a.rep.Results); n > 0 && jr.Index <= a.rep.Results[n-1].Index {
		return fmt.Errorf("result for job %d added after job %d", jr.Index, a.rep.Results[n-1].Index)
	}
	a.rep.Results = append(a.rep.Results, jr)
	return nil
}

// Snapshot returns a copy of the report as it stands.
func (a *Aggregator) Snapshot() Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.copyLocked()
}

// Finish stamps the final state and finish time and returns the report.
func (a *Aggregator) Finish(state string, finished time.Time) Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rep.State = state
	a.rep.Finished = finished
	return a.copyLocked()
}

func (a *Aggregator) copyLocked() Report {
	r := a.rep
	r.Results = append([]JobResult(nil), a.rep.Results...)
	return r
}
