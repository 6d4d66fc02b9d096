package planner

import "strings"

// optionValue renders s as one filter option value. ffmpeg unescapes it
// twice: the graph parser strips one level of quoting and backslashes, then
// the option parser splits on ':' and strips another. The option level gets
// a backslash before \ ' : and =; the graph level then sees a single-quoted
// run in which each literal quote is closed, escaped and reopened.
func optionValue(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '\'', ':', '=':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return "'" + strings.ReplaceAll(b.String(), "'", `'\''`) + "'"
}

// pathValue is optionValue for a file path. Backslash separators become
// forward slashes so Windows paths need no further escaping.
func pathValue(p string) string {
	return optionValue(strings.ReplaceAll(p, `\`, "/"))
}
