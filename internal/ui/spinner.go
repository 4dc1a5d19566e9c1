package ui

import (
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Spinner wraps a terminal spinner for loading states.
type Spinner struct {
	s    *spinner.Spinner
	w    io.Writer
	once sync.Once
}

// NewSpinner creates a spinner writing to w with the given message.
func NewSpinner(w io.Writer, msg string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = "  " + msg
	s.Color("cyan")
	return &Spinner{s: s, w: w}
}

// Start begins the spinner animation.
func (sp *Spinner) Start() {
	sp.s.Start()
}

// Stop halts the spinner and clears the line. Only the first call has an
// effect, so Stop can be wired to both the first fragment and command exit.
func (sp *Spinner) Stop() {
	sp.once.Do(sp.s.Stop)
}

// Success stops the spinner if it is still running and prints a green check.
func (sp *Spinner) Success(msg string) {
	sp.Stop()
	color.New(color.FgGreen).Fprintf(sp.w, "  ✓ %s\n", msg)
}

// Fail stops the spinner if it is still running and prints a red cross.
func (sp *Spinner) Fail(msg string) {
	sp.Stop()
	color.New(color.FgRed).Fprintf(sp.w, "  ✗ %s\n", msg)
}
