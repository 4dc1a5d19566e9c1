package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/width"
)

const (
	minColumn = 10
	separator = " │ "
)

// RenderComparison prints before and after side by side within total columns.
// Widths follow East Asian display rules, so full-width Japanese text lines up.
func RenderComparison(w io.Writer, before, after string, total int) {
	col := (total - StringWidth(separator)) / 2
	if col < minColumn {
		col = minColumn
	}

	left := Wrap(before, col)
	right := Wrap(after, col)

	bold := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.FgHiBlack)

	fmt.Fprint(w, bold.Sprint(pad("元のテキスト", col)))
	fmt.Fprint(w, dim.Sprint(separator))
	fmt.Fprintln(w, bold.Sprint("校閲後の提案"))
	fmt.Fprint(w, dim.Sprint(strings.Repeat("─", col)))
	fmt.Fprint(w, dim.Sprint("─┼─"))
	fmt.Fprintln(w, dim.Sprint(strings.Repeat("─", col)))

	rows := max(len(left), len(right))
	for i := 0; i < rows; i++ {
		var l, r string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		fmt.Fprint(w, pad(l, col))
		fmt.Fprint(w, dim.Sprint(separator))
		fmt.Fprintln(w, strings.TrimRight(r, " "))
	}
}

// RuneWidth returns the number of terminal cells r occupies.
func RuneWidth(r rune) int {
	if r < 0x20 || r == 0x7f {
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

// StringWidth returns the number of terminal cells s occupies.
func StringWidth(s string) int {
	n := 0
	for _, r := range s {
		n += RuneWidth(r)
	}
	return n
}

// Wrap breaks text into lines no wider than cols cells. Existing line breaks
// are kept; blank lines stay blank.
func Wrap(text string, cols int) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		var cur strings.Builder
		curWidth := 0
		for _, r := range para {
			if r == '\t' {
				r = ' '
			}
			rw := RuneWidth(r)
			if curWidth+rw > cols && curWidth > 0 {
				lines = append(lines, cur.String())
				cur.Reset()
				curWidth = 0
			}
			cur.WriteRune(r)
			curWidth += rw
		}
		lines = append(lines, cur.String())
	}
	return lines
}

func pad(s string, cols int) string {
	if gap := cols - StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
