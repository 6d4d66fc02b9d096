package display

import (
	"fmt"
	"io"

	"github.com/backmassage/reelmaster/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	if term.Enabled() {
		fmt.Fprint(w, term.Magenta)
	}
	fmt.Fprint(w, ` ____           _                     _
|  _ \ ___  ___| |_ __ ___   __ _ ___| |_ ___ _ __
| |_) / _ \/ _ \ | '_ `+"`"+` _ \ / _`+"`"+` / __| __/ _ \ '__|
|  _ <  __/  __/ | | | | | | (_| \__ \ ||  __/ |
|_| \_\___|\___|_|_| |_| |_|\__,_|___/\__\___|_|
`)
	if term.Enabled() {
		fmt.Fprintln(w, term.NC)
	}
}
