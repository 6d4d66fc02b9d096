package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteFile writes r as JSON to path, creating parent directories.
func WriteFile(path string, r Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return f.Close()
}

// Text renders the per-job blocks shown to the user after a batch.
func Text(r Report) string {
	var b strings.Builder
	for i, jr := range r.Results {
		if i > 0 {
			b.WriteString("\n")
		}
		s := jr.Style
		fmt.Fprintf(&b, "Sequence: #%d\n", jr.Index+1)
		fmt.Fprintf(&b, "Filename: %s\n", jr.Name())
		fmt.Fprintf(&b, "Hardware: %s\n", s.Hardware)
		b.WriteString("Title:\n")
		fmt.Fprintf(&b, "  - Font: %s\n", s.Font)
		fmt.Fprintf(&b, "  - Color: %s\n", s.TitleColor)
		fmt.Fprintf(&b, "  - Border: %s\n", s.TitleBorder)
		fmt.Fprintf(&b, "  - Display Time: %gs - %gs\n", s.Window.Start, s.Window.End)
		b.WriteString("Captions:\n")
		if s.CaptionsEnabled {
			fmt.Fprintf(&b, "  - Color: %s\n", s.CaptionColor)
			fmt.Fprintf(&b, "  - Border: %s\n", s.CaptionBorder)
			fmt.Fprintf(&b, "  - Vertical Margin: %dpx\n", s.CaptionMarginV)
		} else {
			b.WriteString("  - Disabled\n")
		}
		fmt.Fprintf(&b, "Effect: %s\n", s.Effect)
		if jr.Succeeded {
			fmt.Fprintf(&b, "Result: OK -> %s (%s)\n", filepath.Base(jr.OutputPath), jr.Elapsed.Round(time.Second))
		} else {
			fmt.Fprintf(&b, "Result: FAILED [%s]\n", jr.ErrorKind)
			for _, l := range strings.Split(jr.Diagnostic, "\n") {
				fmt.Fprintf(&b, "  %s\n", l)
			}
		}
	}
	return b.String()
}
