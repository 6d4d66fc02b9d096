package ffmpeg

import (
	"fmt"
	"regexp"
	"strings"
)

// FailureKind names why a render failed.
type FailureKind string

const (
	KindNone               FailureKind = ""
	KindToolMissing        FailureKind = "tool-missing"
	KindEncoderUnavailable FailureKind = "encoder-unavailable"
	KindFont               FailureKind = "font"
	KindCaptions           FailureKind = "captions"
	KindInput              FailureKind = "input"
	KindFilterGraph        FailureKind = "filter-graph"
	KindTimeout            FailureKind = "timeout"
	KindCancelled          FailureKind = "cancelled"
	KindEmptyOutput        FailureKind = "empty-output"
	KindUnknown            FailureKind = "unknown"
)

// MaxDiagnostic caps the stderr excerpt kept per failed job, in bytes.
const MaxDiagnostic = 1500

// ToolMissingError is returned when the ffmpeg binary cannot be found.
type ToolMissingError struct {
	Tool string
	Err  error
}

func (e *ToolMissingError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Tool, e.Err)
}

func (e *ToolMissingError) Unwrap() error { return e.Err }

// TranscodeError describes a render that ran but did not produce output.
type TranscodeError struct {
	ExitCode   int
	Kind       FailureKind
	Diagnostic string
	Err        error
}

func (e *TranscodeError) Error() string {
	msg := fmt.Sprintf("ffmpeg failed (%s", e.Kind)
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(", exit %d", e.ExitCode)
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// Pre-compiled regexes for classifying ffmpeg stderr. Checked in order by
// [Classify]; the first match wins.
var (
	reEncoderUnavailable = regexp.MustCompile(
		`(?i)Unknown encoder|No NVENC capable devices|Cannot load (nvcuda|libnvidia-encode)|` +
			`OpenEncodeSessionEx failed|Driver does not support the required nvenc API|` +
			`Error while opening encoder`)

	reFont = regexp.MustCompile(
		`(?i)Cannot find a valid font|Could not load font|Cannot load font|Fontconfig error`)

	reCaptions = regexp.MustCompile(
		`(?i)Unable to open .*\.(srt|ass|ssa|vtt)|Error initializing filter 'subtitles'|` +
			`\[Parsed_subtitles[^\]]*\].*(error|fail|unable)`)

	reInput = regexp.MustCompile(
		`(?i)No such file or directory|Invalid data found when processing input|moov atom not found|` +
			`Stream specifier .* matches no streams|does not contain any stream|Error opening input`)

	reFilterGraph = regexp.MustCompile(
		`(?i)No such filter|Error (initializing|reinitializing) filter|Error parsing (a )?filter|` +
			`Error configuring (complex )?filters|Failed to configure (input|output) pad|` +
			`Invalid (argument|option).*filter`)

	reErrorLine = regexp.MustCompile(
		`(?i)error|invalid|failed|cannot|unable|no such|not found|unknown|matches no`)
)

// Classify maps stderr text to the most specific FailureKind.
func Classify(stderr string) FailureKind {
	switch {
	case reEncoderUnavailable.MatchString(stderr):
		return KindEncoderUnavailable
	case reFont.MatchString(stderr):
		return KindFont
	case reCaptions.MatchString(stderr):
		return KindCaptions
	case reInput.MatchString(stderr):
		return KindInput
	case reFilterGraph.MatchString(stderr):
		return KindFilterGraph
	default:
		return KindUnknown
	}
}

// Excerpt returns at most limit bytes of stderr worth showing in a report.
// Lines that look like errors are preferred; without any, the tail is used.
// When trimming, the newest lines are kept.
func Excerpt(stderr string, limit int) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" || limit <= 0 {
		return ""
	}

	lines := strings.Split(stderr, "\n")
	var picked []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" && reErrorLine.MatchString(l) {
			picked = append(picked, l)
		}
	}
	if len(picked) == 0 {
		picked = lines
	}

	out := strings.Join(picked, "\n")
	if len(out) <= limit {
		return out
	}
	const marker = "...\n"
	if limit <= len(marker) {
		return out[len(out)-limit:]
	}
	tail := out[len(out)-(limit-len(marker)):]
	if i := strings.IndexByte(tail, '\n'); i >= 0 && i < len(tail)-1 {
		tail = tail[i+1:]
	}
	return marker + tail
}
