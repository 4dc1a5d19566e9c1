package ai

import "context"

// StreamDelta represents a single fragment from a streaming completion.
type StreamDelta struct {
	// Token is the text fragment. Empty string is valid (heartbeat).
	Token string
	// Done is true when the stream is complete.
	Done bool
	// Err is non-nil if the stream failed. No further deltas follow it.
	Err error
}

// StreamingProvider extends Provider with fragment-by-fragment streaming.
// Providers that don't support streaming can omit this interface;
// the Client falls back to Complete automatically.
type StreamingProvider interface {
	Provider
	// CompleteStream sends the request and returns a channel that emits
	// fragments in arrival order. The channel is closed when the response is
	// complete, after an error delta, or when ctx is done.
	CompleteStream(ctx context.Context, req Request) <-chan StreamDelta
}

// send delivers d unless ctx is done first, so an abandoned consumer never
// leaves the producing goroutine blocked.
func send(ctx context.Context, ch chan<- StreamDelta, d StreamDelta) bool {
	select {
	case ch <- d:
		return true
	case <-ctx.Done():
		return false
	}
}

// collectStream reads all fragments from a stream channel and returns the
// concatenated result.
func collectStream(ch <-chan StreamDelta) (string, error) {
	var result string
	for delta := range ch {
		if delta.Err != nil {
			return result, delta.Err
		}
		result += delta.Token
	}
	return result, nil
}
