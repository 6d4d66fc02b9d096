package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/backmassage/reelmaster/internal/style"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func result(i int, ok bool) JobResult {
	jr := JobResult{
		Index:      i,
		Primary:    filepath.Join("in", "clip"+string(rune('a'+i))+".mp4"),
		OutputPath: filepath.Join("out", "reel.mp4"),
		Succeeded:  ok,
	}
	if !ok {
		jr.ErrorKind = "filter-graph"
		jr.Diagnostic = "No such filter: 'xfadee'"
	}
	return jr
}

func TestAggregatorOrderAndCounts(t *testing.T) {
	a := NewAggregator("batch-1", 3, t0)
	require.NoError(t, a.Add(result(0, true)))
	require.NoError(t, a.Add(result(1, false)))
	require.NoError(t, a.Add(result(2, true)))

	r := a.Finish("completed", t0.Add(time.Minute))
	require.Len(t, r.Results, 3)
	for i, jr := range r.Results {
		assert.Equal(t, i, jr.Index)
	}
	assert.Equal(t, 2, r.Succeeded())
	assert.Equal(t, 1, r.Failed())
	assert.Equal(t, "completed", r.State)
	assert.Equal(t, t0.Add(time.Minute), r.Finished)
}

func TestAggregatorRejectsOutOfOrder(t *testing.T) {
	a := NewAggregator("b", 2, t0)
	require.NoError(t, a.Add(result(1, true)))
	assert.Error(t, a.Add(result(0, true)))
	assert.Error(t, a.Add(result(1, true)))
}

func TestSnapshotIsACopy(t *testing.T) {
	a := NewAggregator("b", 2, t0)
	require.NoError(t, a.Add(result(0, true)))

	snap := a.Snapshot()
	snap.Results[0].Succeeded = false
	require.NoError(t, a.Add(result(1, true)))

	assert.Len(t, snap.Results, 1)
	assert.True(t, a.Snapshot().Results[0].Succeeded)
}

func TestSnapshotConcurrentReads(t *testing.T) {
	a := NewAggregator("b", 100, t0)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = a.Add(result(i, i%2 == 0))
		}
	}()
	for i := 0; i < 50; i++ {
		snap := a.Snapshot()
		assert.LessOrEqual(t, len(snap.Results), 100)
	}
	wg.Wait()
	assert.Len(t, a.Snapshot().Results, 100)
}

func TestReportErr(t *testing.T) {
	a := NewAggregator("b", 3, t0)
	require.NoError(t, a.Add(result(0, true)))
	assert.NoError(t, a.Snapshot().Err())

	require.NoError(t, a.Add(result(1, false)))
	require.NoError(t, a.Add(result(2, false)))
	err := a.Snapshot().Err()
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	assert.Equal(t, "job 2 (clipb.mp4): filter-graph", errs[0].Error())
}

func TestNewStyleSnapshot(t *testing.T) {
	cfg := style.Default()
	pal := cfg.Palette.Fixed

	s := NewStyleSnapshot(cfg, style.Font{File: "/fonts/Impact.ttf"}, pal, "wipeleft")
	assert.Equal(t, "Impact", s.Font)
	assert.Equal(t, "#FF6B35", s.TitleColor)
	assert.False(t, s.CaptionsEnabled)
	assert.Empty(t, s.CaptionColor)
	assert.Equal(t, "CPU compatible", s.Hardware)

	cfg.Captions.File = "subs.srt"
	s = NewStyleSnapshot(cfg, style.DefaultFont, pal, "fade")
	assert.True(t, s.CaptionsEnabled)
	assert.Equal(t, "#FFFFFF", s.CaptionColor)
	assert.Equal(t, 50, s.CaptionMarginV)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"window":{"start":2,"end":8}`)
}

func TestWriteFile(t *testing.T) {
	a := NewAggregator("batch-9", 2, t0)
	require.NoError(t, a.Add(result(0, true)))
	require.NoError(t, a.Add(result(1, false)))
	r := a.Finish("completed", t0.Add(time.Second))

	path := filepath.Join(t.TempDir(), "reports", "batch.json")
	require.NoError(t, WriteFile(path, r))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "batch-9", got.BatchID)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "No such filter: 'xfadee'", got.Results[1].Diagnostic)
}

func TestText(t *testing.T) {
	a := NewAggregator("b", 2, t0)
	ok := result(0, true)
	ok.Style = NewStyleSnapshot(style.Default(), style.DefaultFont, style.Default().Palette.Fixed, "fade")
	require.NoError(t, a.Add(ok))
	require.NoError(t, a.Add(result(1, false)))

	out := Text(a.Snapshot())
	assert.Contains(t, out, "Sequence: #1\nFilename: clipa.mp4\nHardware: CPU compatible\n")
	assert.Contains(t, out, "  - Display Time: 2s - 8s\n")
	assert.Contains(t, out, "Result: OK -> reel.mp4")
	assert.Contains(t, out, "Sequence: #2\n")
	assert.Contains(t, out, "Result: FAILED [filter-graph]\n  No such filter: 'xfadee'\n")
}
