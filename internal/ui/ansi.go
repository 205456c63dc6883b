package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/x/ansi"
)

func OK(w io.Writer, msg string) {
	fmt.Fprintln(w, current.Success.Render(current.SymOK+" "+msg))
}

func Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, current.Error.Render(current.SymFail+" "+msg))
}

// Truncate cuts s to n terminal cells, marking the cut with "...".
// Wide runes and ANSI styling are measured the way the terminal shows them.
func Truncate(s string, n int) string {
	if n < 4 {
		return s
	}
	return ansi.Truncate(s, n, "...")
}

// Clip cuts s to n cells without a marker.
func Clip(s string, n int) string {
	return ansi.Truncate(s, n, "")
}
