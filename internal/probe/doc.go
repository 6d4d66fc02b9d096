// Package probe asks ffprobe for clip metadata. Only the duration and the
// presence of video/audio streams matter to planning, so a single JSON call
// per clip is enough.
//
// Probing never aborts a batch: [Prober.Duration] always returns a usable
// value and reports problems through a [*ProbeError] the caller may log.
package probe
