package ui

import (
	"io"
	"os"

	"golang.org/x/term"
)

const defaultWidth = 100

// Width returns the column count of w when it is a terminal, else a default.
func Width(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			return cols
		}
	}
	return defaultWidth
}
