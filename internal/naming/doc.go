// Package naming builds deterministic output paths: job i of a batch is
// always written to <prefix>_<i+1>.<ext> in the output directory, so a rerun
// overwrites the same files instead of accumulating copies.
package naming
