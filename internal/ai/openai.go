package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultOpenAIURL = "https://api.openai.com/v1"
	providerOpenAI   = "openai"
	maxSSELine       = 256 * 1024
	maxErrorBody     = 64 * 1024
)

// OpenAIProvider implements StreamingProvider for the OpenAI chat completions
// API and compatible endpoints.
type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIProvider creates a provider for the given key. An empty baseURL
// selects api.openai.com.
//
// The HTTP client carries no timeout of its own: a client timeout would also
// cut off a long stream body, so deadlines come from the request context.
func NewOpenAIProvider(apiKey, baseURL string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	return &OpenAIProvider{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

func (o *OpenAIProvider) Name() string { return providerOpenAI }

// Complete sends a non-streaming request and returns the first choice's text.
func (o *OpenAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := o.post(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RemoteError{Provider: providerOpenAI, Message: "failed to read response", Err: err}
	}

	var parsed openaiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &RemoteError{Provider: providerOpenAI, Message: "failed to parse response", Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", &RemoteError{Provider: providerOpenAI, Message: "response contained no choices"}
	}

	return parsed.Choices[0].Message.Content, nil
}

// CompleteStream sends a streaming request and emits each content delta.
func (o *OpenAIProvider) CompleteStream(ctx context.Context, req Request) <-chan StreamDelta {
	ch := make(chan StreamDelta)
	go func() {
		defer close(ch)

		resp, err := o.post(ctx, req, true)
		if err != nil {
			send(ctx, ch, StreamDelta{Err: err})
			return
		}
		defer resp.Body.Close()

		o.readSSE(ctx, resp.Body, ch)
	}()
	return ch
}

func (o *OpenAIProvider) readSSE(ctx context.Context, body io.Reader, ch chan<- StreamDelta) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELine)

	for scanner.Scan() {
		if ctx.Err() != nil {
			send(ctx, ch, StreamDelta{Err: ctx.Err()})
			return
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			send(ctx, ch, StreamDelta{Done: true})
			return
		}

		var chunk openaiChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			send(ctx, ch, StreamDelta{Err: &RemoteError{Provider: providerOpenAI, Message: "malformed stream chunk", Err: err}})
			return
		}
		if chunk.Error != nil {
			msg := chunk.Error.Message
			if msg == "" {
				msg = "stream failed: " + chunk.Error.Type
			}
			send(ctx, ch, StreamDelta{Err: &RemoteError{Provider: providerOpenAI, Message: msg}})
			return
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == nil {
			continue
		}
		if !send(ctx, ch, StreamDelta{Token: *chunk.Choices[0].Delta.Content}) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		send(ctx, ch, StreamDelta{Err: &RemoteError{Provider: providerOpenAI, Message: "stream interrupted", Err: err}})
		return
	}
	// Body ended without [DONE]; the server closed a complete response.
	send(ctx, ch, StreamDelta{Done: true})
}

func (o *OpenAIProvider) post(ctx context.Context, req Request, stream bool) (*http.Response, error) {
	msgs := make([]openaiMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = openaiMessage{Role: m.Role, Content: m.Content}
	}

	body, err := json.Marshal(openaiRequest{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: req.Temperature,
		Stream:      stream,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, &RemoteError{Provider: providerOpenAI, Message: "could not reach " + o.baseURL, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &RemoteError{Provider: providerOpenAI, StatusCode: resp.StatusCode, Message: openaiErrorMessage(raw)}
	}

	return resp, nil
}

func openaiErrorMessage(raw []byte) string {
	var env openaiError
	if err := json.Unmarshal(raw, &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
