package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultPrefix and DefaultExt name outputs reel_1.mp4, reel_2.mp4, ...
const (
	DefaultPrefix = "reel"
	DefaultExt    = "mp4"
)

// OutputPath builds the deterministic output file path for job index
// (zero-based): <outputDir>/<prefix>_<index+1>.<ext>.
func OutputPath(outputDir, prefix string, index int, ext string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = DefaultExt
	}
	return filepath.Join(outputDir, fmt.Sprintf("%s_%d.%s", prefix, index+1, ext))
}

// ValidPrefix reports whether prefix can be used as a file name stem.
func ValidPrefix(prefix string) error {
	if prefix == "" {
		return nil
	}
	if strings.ContainsAny(prefix, `/\:*?"<>|`) {
		return fmt.Errorf("output prefix %q contains a path or reserved character", prefix)
	}
	if strings.TrimSpace(prefix) != prefix {
		return fmt.Errorf("output prefix %q has leading or trailing spaces", prefix)
	}
	return nil
}
