// Command reelmaster batch-renders short composite videos: one output per
// primary clip, paired with a secondary clip, narration, music, a timed
// title and optional captions.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/backmassage/reelmaster/internal/check"
	"github.com/backmassage/reelmaster/internal/config"
	"github.com/backmassage/reelmaster/internal/display"
	"github.com/backmassage/reelmaster/internal/ffmpeg"
	"github.com/backmassage/reelmaster/internal/logging"
	"github.com/backmassage/reelmaster/internal/pipeline"
	"github.com/backmassage/reelmaster/internal/probe"
	"github.com/backmassage/reelmaster/internal/report"
	"github.com/backmassage/reelmaster/internal/selection"
)

// version and commit are set at build time via -ldflags.
var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

// errReported marks a failure that has already been logged.
var errReported = errors.New("reported")

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "reelmaster: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "reelmaster",
		Short:         "Batch-render composite short videos with ffmpeg",
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, stdout)
		},
	}
	config.DefineFlags(root.PersistentFlags())

	root.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Check ffmpeg, ffprobe, encoders and filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Close()
			if !check.RunCheck(cmd.Context(), cfg, log) {
				return errReported
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "analyze",
		Short: "Probe the pools and preview per-job timing without rendering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Close()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			prober := probe.New(cfg.Tools.FFprobe, cfg.Tools.ProbeTimeout)
			win := cfg.StyleConfig().Window
			if err := pipeline.Analyze(ctx, inputs(cfg), win, prober, stdout, log); err != nil {
				return errReported
			}
			return nil
		},
	})
	return root
}

// setup loads configuration and opens the logger.
func setup(cmd *cobra.Command) (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func inputs(cfg *config.Config) pipeline.Inputs {
	return pipeline.Inputs{
		PrimaryDir:    cfg.Paths.Primary,
		SecondaryDir:  cfg.Paths.Secondary,
		NarrationDir:  cfg.Paths.Narration,
		MusicDir:      cfg.Paths.Music,
		VideoExts:     cfg.Extensions.Video,
		NarrationExts: cfg.Extensions.Narration,
		MusicExts:     cfg.Extensions.Music,
	}
}

func runBatch(cmd *cobra.Command, stdout io.Writer) error {
	// 1. Load and validate config; every problem is reported at once.
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	log, err := logging.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	display.PrintBanner(stdout)
	log.Info("=== Reelmaster v%s ===", version)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Fail fast when the selected encoder or a required filter is missing.
	if !cfg.DryRun {
		if err := check.CheckDeps(ctx, cfg, log); err != nil {
			log.Error("%v", err)
			return errReported
		}
	}
	if err := os.MkdirAll(cfg.Paths.Output, 0o755); err != nil {
		log.Error("Cannot create output directory: %s", cfg.Paths.Output)
		return errReported
	}

	// 3. Run the batch.
	registry := ffmpeg.NewRegistry()
	executor := &ffmpeg.Executor{
		Bin:      cfg.Tools.FFmpeg,
		Timeout:  cfg.Tools.RenderTimeout,
		Verbose:  cfg.Verbose,
		Registry: registry,
	}
	if cfg.Verbose {
		executor.Stream = os.Stderr
	}
	orch := pipeline.New(pipeline.Options{
		Style:  cfg.StyleConfig(),
		Inputs: inputs(cfg),
		Output: pipeline.Output{Dir: cfg.Paths.Output, Prefix: cfg.Output.Prefix, Ext: cfg.Output.Ext},
		Rand:   selection.NewSeeded(cfg.Seed),
		DryRun: cfg.DryRun,
		Progress: func(p pipeline.Progress) {
			log.Debug(cfg.Verbose, "Progress: %d/%d (%d%%)", p.Done, p.Total, p.Percent())
		},
		Verbose: cfg.Verbose,
	}, probe.New(cfg.Tools.FFprobe, cfg.Tools.ProbeTimeout), executor, log)

	rep, runErr := orch.Start(ctx).Wait()

	// 4. On interrupt, make sure no transcoder outlives us.
	if ctx.Err() != nil {
		reap(cfg, registry, log)
	}

	// 5. Report.
	if len(rep.Results) > 0 {
		fmt.Fprintln(stdout)
		fmt.Fprint(stdout, report.Text(rep))
	}
	if cfg.Paths.Report != "" {
		if err := report.WriteFile(cfg.Paths.Report, rep); err != nil {
			log.Error("Cannot write report: %v", err)
			return errReported
		}
		log.Info("Report written to %s", cfg.Paths.Report)
	}

	if runErr != nil || rep.Err() != nil {
		return errReported
	}
	return nil
}

func reap(cfg *config.Config, registry *ffmpeg.Registry, log *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r := &ffmpeg.Reaper{Tool: cfg.Tools.FFmpeg, Registry: registry, AllMatching: cfg.ReapAll}
	killed, err := r.Reap(ctx)
	if len(killed) > 0 {
		log.Warn("Terminated %d leftover %s process(es)", len(killed), cfg.Tools.FFmpeg)
	}
	if err != nil {
		log.Warn("Cleanup: %v", err)
	}
}
