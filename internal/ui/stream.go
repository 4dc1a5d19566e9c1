// Package ui renders completion output to the terminal.
package ui

import (
	"context"
	"strings"

	"github.com/arin/penman/internal/ai"
)

// Sink replaces the currently displayed content with text. It receives the
// whole text every time, never just the newest fragment.
type Sink func(text string)

// Accumulate drains ch one fragment at a time. After each non-empty fragment
// it appends to the buffer and hands the full buffer to sink. It returns the
// buffer once the stream is exhausted.
//
// A fault delta ends the drain at once with that error and no text: a
// partial buffer is never reported as a result. ctx is checked between
// fragment reads.
func Accumulate(ctx context.Context, ch <-chan ai.StreamDelta, sink Sink) (string, error) {
	var buf strings.Builder

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		var (
			delta ai.StreamDelta
			ok    bool
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case delta, ok = <-ch:
		}

		if !ok {
			// A producer that gave up because ctx ended closes without Done.
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return buf.String(), nil
		}
		if delta.Err != nil {
			return "", delta.Err
		}
		if delta.Token != "" {
			buf.WriteString(delta.Token)
			if sink != nil {
				sink(buf.String())
			}
		}
		if delta.Done {
			return buf.String(), nil
		}
	}
}
