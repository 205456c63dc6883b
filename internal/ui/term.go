//go:build unix

package ui

import (
	"os"

	"golang.org/x/sys/unix"
)

// TermWidth is the stdout terminal width, 80 when it is not a terminal.
func TermWidth() int {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 80
	}
	return int(ws.Col)
}
