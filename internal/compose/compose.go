// Package compose runs one generate or proofread request end to end: it
// validates input, builds the prompt, calls the model in the configured call
// shape and feeds the display sink.
package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arin/penman/internal/ai"
	"github.com/arin/penman/internal/prompt"
	"github.com/arin/penman/internal/ui"
)

// Service issues completion requests through one ai.Client.
type Service struct {
	client *ai.Client
	logger *slog.Logger
}

// New creates a Service. A nil logger discards log output.
func New(client *ai.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{client: client, logger: logger}
}

// Generate writes new text for opts. Missing input returns a
// *prompt.ValidationError before any request is made.
func (s *Service) Generate(ctx context.Context, opts prompt.GenerateOptions, sink ui.Sink) (string, error) {
	text, err := prompt.Generate(opts)
	if err != nil {
		return "", err
	}
	s.logger.Debug("generate", "kind", opts.Kind, "length", opts.Length)
	return s.run(ctx, text, sink)
}

// Proofread reviews opts.Text. Missing input returns a
// *prompt.ValidationError before any request is made.
func (s *Service) Proofread(ctx context.Context, opts prompt.ProofreadOptions, sink ui.Sink) (string, error) {
	text, err := prompt.Proofread(opts)
	if err != nil {
		return "", err
	}
	s.logger.Debug("proofread", "checks", len(opts.Checks), "chars", len([]rune(opts.Text)))
	return s.run(ctx, text, sink)
}

// run sends one user message. In streaming mode every non-empty fragment
// reaches sink as the text so far; otherwise sink is called exactly once
// with the full reply. Either way the returned string is the model output,
// unmodified.
func (s *Service) run(ctx context.Context, text string, sink ui.Sink) (string, error) {
	timeout := s.client.Timeout()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := s.client.NewRequest([]ai.Message{{Role: ai.RoleUser, Content: text}})
	start := time.Now()

	var (
		out string
		err error
	)
	if req.Stream {
		out, err = ui.Accumulate(ctx, s.client.Stream(ctx, req), sink)
	} else {
		out, err = s.client.Complete(ctx, req)
		if err == nil && sink != nil {
			sink(out)
		}
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("no complete reply within %s: %w", timeout, err)
		}
		return "", err
	}

	s.logger.Debug("reply complete", "stream", req.Stream, "elapsed", time.Since(start), "chars", len([]rune(out)))
	return out, nil
}
