// Package assets scans the input directories of a batch into asset pools.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/h2non/filetype"
)

// Extension sets (lowercase, leading dot).
var (
	// MediaExtensions is what every clip pool accepts by default. Narration
	// and music may be either video containers or plain audio.
	MediaExtensions = []string{".mp4", ".mov", ".mp3", ".wav", ".m4a"}

	// VideoExtensions are the containers accepted for primary/secondary
	// pools when a stricter set is configured.
	VideoExtensions = []string{".mp4", ".mov", ".mkv", ".avi", ".webm", ".m4v"}

	// AudioExtensions are the audio-only formats.
	AudioExtensions = []string{".mp3", ".wav", ".m4a", ".aac", ".flac", ".ogg"}

	// FontExtensions are the font files a random font directory may hold.
	FontExtensions = []string{".ttf", ".otf", ".ttc"}
)

// Pool is an immutable, scanned set of asset files.
type Pool struct {
	Name       string   // "primary", "secondary", "narration", "music", "font".
	Root       string   // Directory that was scanned.
	Extensions []string // Normalized extension filter.
	Entries    []string // Absolute-or-root-joined file paths.
}

// Len returns the number of entries. A nil pool has none.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Entries)
}

// Empty reports whether the pool has no entries.
func (p *Pool) Empty() bool { return p.Len() == 0 }

// EmptyPoolError is returned when a required pool yields no matching files.
type EmptyPoolError struct {
	Pool string
	Dir  string
	Err  error // Underlying read error, if the directory could not be listed.
}

func (e *EmptyPoolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s pool %q is empty: %v", e.Pool, e.Dir, e.Err)
	}
	return fmt.Sprintf("%s pool %q is empty: no matching files", e.Pool, e.Dir)
}

func (e *EmptyPoolError) Unwrap() error { return e.Err }

// Scan lists dir (non-recursively) and keeps regular files whose extension
// case-insensitively matches exts. Entries come back sorted so pools that
// are paired by index are deterministic; sampled pools simply ignore the order.
//
// An unreadable directory or zero matches returns an [*EmptyPoolError]
// together with the (empty) pool.
func Scan(name, dir string, exts []string) (*Pool, error) {
	p := &Pool{Name: name, Root: dir, Extensions: NormalizeExtensions(exts)}

	want := make(map[string]bool, len(p.Extensions))
	for _, e := range p.Extensions {
		want[e] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return p, &EmptyPoolError{Pool: name, Dir: dir, Err: err}
	}
	for _, d := range entries {
		if d.IsDir() {
			continue
		}
		if want[strings.ToLower(filepath.Ext(d.Name()))] {
			p.Entries = append(p.Entries, filepath.Join(dir, d.Name()))
		}
	}
	sort.Strings(p.Entries)

	if p.Empty() {
		return p, &EmptyPoolError{Pool: name, Dir: dir}
	}
	return p, nil
}

// NormalizeExtensions lowercases exts, adds a leading dot and drops
// duplicates while keeping the first-seen order.
func NormalizeExtensions(exts []string) []string {
	seen := make(map[string]bool, len(exts))
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

// Kind is the media class an extension belongs to.
type Kind int

const (
	KindUnknown Kind = iota
	KindVideo
	KindAudio
	KindFont
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindFont:
		return "font"
	default:
		return "unknown"
	}
}

// KindOf classifies an extension by its registered MIME type.
func KindOf(ext string) Kind {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	t := filetype.GetType(ext)
	if t == filetype.Unknown {
		return KindUnknown
	}
	switch t.MIME.Type {
	case "video":
		return KindVideo
	case "audio":
		return KindAudio
	case "font", "application":
		if t.MIME.Subtype == "font-sfnt" || t.MIME.Type == "font" {
			return KindFont
		}
	}
	return KindUnknown
}

// CheckExtensions verifies every extension in exts is a known media type of
// one of the allowed kinds.
func CheckExtensions(pool string, exts []string, allowed ...Kind) error {
	if len(NormalizeExtensions(exts)) == 0 {
		return fmt.Errorf("%s extensions: empty set", pool)
	}
	for _, e := range NormalizeExtensions(exts) {
		k := KindOf(e)
		ok := false
		for _, a := range allowed {
			if k == a {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%s extensions: %q is %s, want %s", pool, e, k, kindList(allowed))
		}
	}
	return nil
}

func kindList(ks []Kind) string {
	parts := make([]string, len(ks))
	for i, k := range ks {
		parts[i] = k.String()
	}
	return strings.Join(parts, " or ")
}
