// Package pipeline orchestrates a batch: pool validation, then for every
// primary clip selection, probing, planning, rendering and reporting.
//
// Jobs run strictly one after another on a single goroutine. A failed job is
// recorded and the batch moves on. Only an empty input pool or a missing
// caption file aborts a batch, and that happens before any render starts.
//
// Files:
//   - state.go: batch state machine
//   - discover.go: input pool scanning and validation
//   - errors.go: MissingInputError
//   - runner.go: Orchestrator, per-job processing, async handle
//   - stats.go: progress snapshots
//   - analyze.go: timing preview table (no rendering)
package pipeline
