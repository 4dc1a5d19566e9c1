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
	defaultOllamaURL = "http://localhost:11434"
	providerOllama   = "ollama"
)

// OllamaProvider implements StreamingProvider for the Ollama local API.
type OllamaProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewOllamaProvider creates a provider that talks to an Ollama instance.
// An empty baseURL selects localhost:11434.
func NewOllamaProvider(baseURL string) *OllamaProvider {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	return &OllamaProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

func (o *OllamaProvider) Name() string { return providerOllama }

// Complete sends messages to Ollama and returns the response text.
func (o *OllamaProvider) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := o.post(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RemoteError{Provider: providerOllama, Message: "failed to read response", Err: err}
	}

	var ollamaResp ollamaResponse
	if err := json.Unmarshal(respBody, &ollamaResp); err != nil {
		return "", &RemoteError{Provider: providerOllama, Message: "failed to parse response", Err: err}
	}
	if ollamaResp.Error != "" {
		return "", &RemoteError{Provider: providerOllama, Message: ollamaResp.Error}
	}

	return ollamaResp.Message.Content, nil
}

// CompleteStream reads Ollama's newline-delimited JSON stream.
func (o *OllamaProvider) CompleteStream(ctx context.Context, req Request) <-chan StreamDelta {
	ch := make(chan StreamDelta)
	go func() {
		defer close(ch)

		resp, err := o.post(ctx, req, true)
		if err != nil {
			send(ctx, ch, StreamDelta{Err: err})
			return
		}
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), maxSSELine)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var chunk ollamaResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				send(ctx, ch, StreamDelta{Err: &RemoteError{Provider: providerOllama, Message: "malformed stream chunk", Err: err}})
				return
			}
			if chunk.Error != "" {
				send(ctx, ch, StreamDelta{Err: &RemoteError{Provider: providerOllama, Message: chunk.Error}})
				return
			}
			if !send(ctx, ch, StreamDelta{Token: chunk.Message.Content}) {
				return
			}
			if chunk.Done {
				send(ctx, ch, StreamDelta{Done: true})
				return
			}
		}
		if err := scanner.Err(); err != nil {
			send(ctx, ch, StreamDelta{Err: &RemoteError{Provider: providerOllama, Message: "stream interrupted", Err: err}})
			return
		}
		send(ctx, ch, StreamDelta{Err: &RemoteError{Provider: providerOllama, Message: "stream ended before completion"}})
	}()
	return ch
}

func (o *OllamaProvider) post(ctx context.Context, req Request, stream bool) (*http.Response, error) {
	// Convert provider-agnostic messages to Ollama format.
	msgs := make([]ollamaMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = ollamaMessage{Role: m.Role, Content: m.Content}
	}

	body, err := json.Marshal(ollamaRequest{
		Model:    req.Model,
		Messages: msgs,
		Stream:   stream,
		Options:  ollamaOptions{Temperature: req.Temperature},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := o.baseURL + "/api/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, &RemoteError{Provider: providerOllama, Message: fmt.Sprintf("could not reach Ollama at %s, is it running? (start with: ollama serve)", o.baseURL), Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		errMsg := strings.TrimSpace(string(raw))
		if strings.Contains(errMsg, "model") && strings.Contains(errMsg, "not found") {
			errMsg = fmt.Sprintf("model %q not found, run: ollama pull %s", req.Model, req.Model)
		}
		return nil, &RemoteError{Provider: providerOllama, StatusCode: resp.StatusCode, Message: errMsg}
	}

	return resp, nil
}
