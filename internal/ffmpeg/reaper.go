package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/multierr"
)

// Registry tracks the PIDs of running render processes. A nil *Registry
// is valid and tracks nothing.
type Registry struct {
	mu   sync.Mutex
	pids map[int]struct{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{pids: make(map[int]struct{})}
}

// Track records a running process.
func (r *Registry) Track(pid int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pids == nil {
		r.pids = make(map[int]struct{})
	}
	r.pids[pid] = struct{}{}
}

// Untrack forgets a process that has exited.
func (r *Registry) Untrack(pid int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pids, pid)
}

// PIDs returns the tracked PIDs in ascending order.
func (r *Registry) PIDs() []int {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, 0, len(r.pids))
	for pid := range r.pids {
		out = append(out, pid)
	}
	sort.Ints(out)
	return out
}

// Reaper forcibly terminates leftover render processes at shutdown.
type Reaper struct {
	Tool     string    // Process name to match, e.g. "ffmpeg".
	Registry *Registry // Processes started by this program.

	// AllMatching widens the scan from this program's children to every
	// process on the host whose name contains Tool.
	AllMatching bool
}

// Reap kills every tracked process, then scans the live process list for
// processes named like Tool that are children of this program (or any
// process, with AllMatching). It returns the PIDs it killed.
func (r *Reaper) Reap(ctx context.Context) ([]int32, error) {
	var (
		killed []int32
		errs   error
		seen   = make(map[int32]bool)
	)

	for _, pid := range r.Registry.PIDs() {
		p, err := process.NewProcessWithContext(ctx, int32(pid))
		if err != nil {
			// Already gone.
			r.Registry.Untrack(pid)
			continue
		}
		if err := p.KillWithContext(ctx); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		seen[p.Pid] = true
		killed = append(killed, p.Pid)
		r.Registry.Untrack(pid)
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return killed, multierr.Append(errs, err)
	}

	tool := "ffmpeg"
	if r.Tool != "" {
		tool = strings.TrimSuffix(strings.ToLower(filepath.Base(r.Tool)), ".exe")
	}
	self := int32(os.Getpid())
	for _, p := range procs {
		if seen[p.Pid] || p.Pid == self {
			continue
		}
		name, err := p.NameWithContext(ctx)
		if err != nil || !strings.Contains(strings.ToLower(name), tool) {
			continue
		}
		if !r.AllMatching {
			ppid, err := p.PpidWithContext(ctx)
			if err != nil || ppid != self {
				continue
			}
		}
		if err := p.KillWithContext(ctx); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		killed = append(killed, p.Pid)
	}
	return killed, errs
}
