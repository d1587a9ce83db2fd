package stats

import (
	"os"

	"golang.org/x/term"
)

const terminalWidthBackup = 80

// TerminalWidth returns the width of f when it is a terminal, or 0 when
// output is redirected and should not be clipped.
func TerminalWidth(f *os.File) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
