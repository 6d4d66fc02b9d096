// Package ffmpeg renders one plan with a single ffmpeg invocation and
// classifies the outcome.
//
// Files:
//   - builder.go: argument assembly (inputs, loops, filter graph, maps,
//     encoder pair, duration cap)
//   - executor.go: synchronous execution with timeout and stderr capture
//   - errors.go: typed errors, stderr classification, diagnostic excerpts
//   - reaper.go: process registry and shutdown reaper
package ffmpeg
