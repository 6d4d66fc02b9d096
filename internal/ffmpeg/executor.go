package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/backmassage/reelmaster/internal/planner"
)

// waitDelay bounds how long Wait blocks on stderr after the process is
// killed (ffmpeg may leave grandchildren holding the pipe).
const waitDelay = 5 * time.Second

// Outcome is the classified result of one render.
type Outcome struct {
	Args       []string
	Succeeded  bool
	ExitCode   int // -1 when the process never ran or was killed.
	Kind       FailureKind
	Diagnostic string // Trimmed stderr excerpt; empty on success.
	Err        error  // *ToolMissingError or *TranscodeError on failure.
	Elapsed    time.Duration
	OutputSize int64
}

// Executor runs ffmpeg synchronously, one plan at a time.
type Executor struct {
	Bin      string        // ffmpeg binary; defaults to "ffmpeg".
	Timeout  time.Duration // Per-render limit; 0 disables.
	Verbose  bool
	Stream   io.Writer // When set, stderr is tee'd here in real time.
	Registry *Registry // When set, running processes are tracked for the reaper.
}

func (e *Executor) bin() string {
	if e.Bin == "" {
		return "ffmpeg"
	}
	return e.Bin
}

// Args returns the command line Render would run for plan.
func (e *Executor) Args(plan *planner.RenderPlan) []string {
	return Build(plan, BuildOptions{Bin: e.bin(), Verbose: e.Verbose})
}

// Render runs ffmpeg for plan and blocks until it exits, the timeout fires,
// or ctx is cancelled. Exit status 0 and a non-empty output file is success;
// anything else leaves no partial output behind.
func (e *Executor) Render(ctx context.Context, plan *planner.RenderPlan) Outcome {
	start := time.Now()
	args := e.Args(plan)
	out := Outcome{Args: args, ExitCode: -1}
	output := plan.Job.OutputPath

	fail := func(kind FailureKind, diag string, err error) Outcome {
		out.Kind = kind
		out.Diagnostic = diag
		out.Err = err
		out.Elapsed = time.Since(start)
		os.Remove(output)
		return out
	}

	if _, err := exec.LookPath(args[0]); err != nil {
		tm := &ToolMissingError{Tool: args[0], Err: err}
		out.Kind = KindToolMissing
		out.Diagnostic = tm.Error()
		out.Err = tm
		out.Elapsed = time.Since(start)
		return out
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fail(KindUnknown, err.Error(), &TranscodeError{ExitCode: -1, Kind: KindUnknown, Err: err})
	}

	rctx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(rctx, args[0], args[1:]...)
	cmd.WaitDelay = waitDelay
	var stderrBuf bytes.Buffer
	if e.Stream != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, e.Stream)
	} else {
		cmd.Stderr = &stderrBuf
	}

	if err := cmd.Start(); err != nil {
		return fail(KindUnknown, err.Error(), &TranscodeError{ExitCode: -1, Kind: KindUnknown, Err: err})
	}
	e.Registry.Track(cmd.Process.Pid)
	err := cmd.Wait()
	e.Registry.Untrack(cmd.Process.Pid)

	stderr := stderrBuf.String()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
		}

		kind := Classify(stderr)
		switch {
		case ctx.Err() != nil:
			kind = KindCancelled
			err = fmt.Errorf("%w: %w", ctx.Err(), err)
		case rctx.Err() != nil:
			kind = KindTimeout
			err = fmt.Errorf("render exceeded %s: %w", e.Timeout, err)
		}

		diag := Excerpt(stderr, MaxDiagnostic)
		if diag == "" {
			diag = err.Error()
		}
		return fail(kind, diag, &TranscodeError{ExitCode: out.ExitCode, Kind: kind, Diagnostic: diag, Err: err})
	}
	out.ExitCode = 0

	fi, statErr := os.Stat(output)
	if statErr != nil || fi.Size() == 0 {
		diag := Excerpt(stderr, MaxDiagnostic)
		if diag == "" {
			diag = "ffmpeg exited 0 but wrote no output: " + output
		}
		err := statErr
		if err == nil {
			err = errors.New("empty output file")
		}
		return fail(KindEmptyOutput, diag, &TranscodeError{ExitCode: 0, Kind: KindEmptyOutput, Diagnostic: diag, Err: err})
	}

	out.Succeeded = true
	out.OutputSize = fi.Size()
	out.Elapsed = time.Since(start)
	return out
}
