package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Checker probes an endpoint without generating anything. penman doctor uses it.
type Checker interface {
	// Ping verifies the endpoint is reachable and accepts our credentials.
	Ping(ctx context.Context) error
	// HasModel reports whether model can be served.
	HasModel(ctx context.Context, model string) (bool, error)
}

// Ping lists models, which needs a valid key but costs no tokens.
func (o *OpenAIProvider) Ping(ctx context.Context) error {
	resp, err := o.get(ctx, "/models")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// HasModel looks the model up by id.
func (o *OpenAIProvider) HasModel(ctx context.Context, model string) (bool, error) {
	resp, err := o.get(ctx, "/models/"+url.PathEscape(model))
	if err != nil {
		var re *RemoteError
		if errors.As(err, &re) && re.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	resp.Body.Close()
	return true, nil
}

func (o *OpenAIProvider) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
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

// Ping checks that the Ollama server answers.
func (o *OllamaProvider) Ping(ctx context.Context) error {
	_, err := o.tags(ctx)
	return err
}

// HasModel checks the locally pulled models. A bare name matches any tag.
func (o *OllamaProvider) HasModel(ctx context.Context, model string) (bool, error) {
	names, err := o.tags(ctx)
	if err != nil {
		return false, err
	}
	base := strings.Split(model, ":")[0]
	for _, n := range names {
		if n == model || (!strings.Contains(model, ":") && strings.Split(n, ":")[0] == base) {
			return true, nil
		}
	}
	return false, nil
}

func (o *OllamaProvider) tags(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, &RemoteError{Provider: providerOllama, Message: "could not connect, run: ollama serve", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{Provider: providerOllama, StatusCode: resp.StatusCode, Message: "unexpected status"}
	}

	var body struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &RemoteError{Provider: providerOllama, Message: "failed to parse model list", Err: err}
	}
	names := make([]string, len(body.Models))
	for i, m := range body.Models {
		names[i] = m.Name
	}
	return names, nil
}

// Checker returns the provider's Checker, if it has one.
func (c *Client) Checker() (Checker, bool) {
	ch, ok := c.provider.(Checker)
	return ch, ok
}

// ProviderName names the backend this client talks to.
func (c *Client) ProviderName() string {
	return c.provider.Name()
}
