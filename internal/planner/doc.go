// Package planner turns one resolved job into a render plan: the timing
// arithmetic, the title opacity envelope, caption styling and the complete
// ffmpeg filter graph with its output duration cap.
//
// Planning is pure. Nothing here touches the filesystem or runs a process,
// so every decision is testable from durations alone.
package planner
