package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/arin/penman/internal/config"
)

// Client issues completion requests with the settings from one Config.
// The same Client serves both call shapes; cfg.Stream picks which one
// Run-style callers use.
type Client struct {
	cfg      *config.Config
	provider Provider
	logger   *slog.Logger
}

// NewClient builds a Client for the provider named in cfg.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	var p Provider
	switch cfg.Provider {
	case config.ProviderOllama:
		p = NewOllamaProvider(cfg.BaseURL)
	default:
		p = NewOpenAIProvider(cfg.APIKey, cfg.BaseURL)
	}
	return NewClientWithProvider(cfg, p, logger)
}

// NewClientWithProvider builds a Client around an explicit provider.
// A nil logger discards log output.
func NewClientWithProvider(cfg *config.Config, p Provider, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{cfg: cfg, provider: p, logger: logger}
}

// NewRequest builds a request for messages using the configured model,
// temperature and stream mode.
func (c *Client) NewRequest(messages []Message) Request {
	return NewRequest(c.cfg.Model, messages, c.cfg.Temperature, c.cfg.Stream)
}

// Timeout is the per-request deadline callers should apply.
func (c *Client) Timeout() time.Duration {
	return c.cfg.Timeout
}

// Complete performs a single-shot call and returns the full reply.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	c.logger.Debug("completion request",
		"provider", c.provider.Name(),
		"model", req.Model,
		"stream", false,
		"messages", len(req.Messages))

	text, err := c.provider.Complete(ctx, req)
	if err != nil {
		c.logger.Debug("completion failed", "provider", c.provider.Name(), "elapsed", time.Since(start), "err", err)
		return "", err
	}

	c.logger.Debug("completion done", "provider", c.provider.Name(), "elapsed", time.Since(start), "bytes", len(text))
	return text, nil
}

// Stream performs a streaming call. Providers without streaming support are
// served by a single-fragment stream built from Complete.
func (c *Client) Stream(ctx context.Context, req Request) <-chan StreamDelta {
	c.logger.Debug("completion request",
		"provider", c.provider.Name(),
		"model", req.Model,
		"stream", true,
		"messages", len(req.Messages))
	return c.streamOrFallback(ctx, req)
}

func (c *Client) streamOrFallback(ctx context.Context, req Request) <-chan StreamDelta {
	if sp, ok := c.provider.(StreamingProvider); ok {
		return sp.CompleteStream(ctx, req)
	}

	ch := make(chan StreamDelta, 2)
	go func() {
		defer close(ch)
		text, err := c.provider.Complete(ctx, req)
		if err != nil {
			ch <- StreamDelta{Err: err}
			return
		}
		ch <- StreamDelta{Token: text}
		ch <- StreamDelta{Done: true}
	}()
	return ch
}
