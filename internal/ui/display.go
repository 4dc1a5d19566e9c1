package ui

import (
	"fmt"
	"io"
	"strings"
)

// Display is a replaceable output region on a terminal. Terminals cannot
// rewrite scrolled-off text, so a new value that extends what is already shown
// prints only the extension; anything else reprints the whole value.
type Display struct {
	w       io.Writer
	shown   string
	onFirst func()
	started bool
}

// NewDisplay creates a display writing to w.
func NewDisplay(w io.Writer) *Display {
	return &Display{w: w}
}

// OnFirst registers fn to run once, right before the first content is shown.
// Commands use it to stop the waiting spinner.
func (d *Display) OnFirst(fn func()) *Display {
	d.onFirst = fn
	return d
}

// Show replaces the displayed content with text.
func (d *Display) Show(text string) {
	if !d.started {
		d.started = true
		if d.onFirst != nil {
			d.onFirst()
		}
	}

	if strings.HasPrefix(text, d.shown) {
		fmt.Fprint(d.w, text[len(d.shown):])
	} else {
		if d.shown != "" && !strings.HasSuffix(d.shown, "\n") {
			fmt.Fprintln(d.w)
		}
		fmt.Fprint(d.w, text)
	}
	d.shown = text
}

// Sink returns Show as a Sink.
func (d *Display) Sink() Sink {
	return d.Show
}

// Content returns what the display currently holds.
func (d *Display) Content() string {
	return d.shown
}

// Finish ends the region with a blank line.
func (d *Display) Finish() {
	if d.shown != "" && !strings.HasSuffix(d.shown, "\n") {
		fmt.Fprintln(d.w)
	}
	fmt.Fprintln(d.w)
}
