package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func sseServer(t *testing.T, lines []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, l := range lines {
			fmt.Fprintf(w, "%s\n\n", l)
			w.(http.Flusher).Flush()
		}
	}))
}

func chunk(content string) string {
	return fmt.Sprintf(`data: {"choices":[{"delta":{"content":%q},"finish_reason":null}]}`, content)
}

func TestOpenAI_CompleteStream(t *testing.T) {
	srv := sseServer(t, []string{
		`data: {"choices":[{"delta":{"role":"assistant"},"finish_reason":null}]}`,
		chunk("こんにちは"),
		chunk("、世界"),
		chunk("。"),
		`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`,
		"data: [DONE]",
	})
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", srv.URL)
	got, err := collectStream(p.CompleteStream(context.Background(), Request{Model: "gpt-4o-mini", Stream: true}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "こんにちは、世界。" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestOpenAI_CompleteStream_MalformedChunk(t *testing.T) {
	srv := sseServer(t, []string{chunk("ok"), "data: {not json"})
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", srv.URL)
	_, err := collectStream(p.CompleteStream(context.Background(), Request{}))
	if err == nil {
		t.Fatal("expected error for malformed chunk")
	}
	if !IsRemote(err) {
		t.Errorf("expected RemoteError, got %T", err)
	}
}

func TestOpenAI_CompleteStream_ErrorEvent(t *testing.T) {
	srv := sseServer(t, []string{
		chunk("途中"),
		`data: {"error":{"message":"The server had an error while processing your request.","type":"server_error"}}`,
		"data: [DONE]",
	})
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", srv.URL)
	var sawDone bool
	var err error
	for delta := range p.CompleteStream(context.Background(), Request{Stream: true}) {
		if delta.Done {
			sawDone = true
		}
		if delta.Err != nil {
			err = delta.Err
		}
	}
	if err == nil {
		t.Fatal("expected the error event to end the stream with an error")
	}
	if sawDone {
		t.Error("stream must not report completion after an error event")
	}
	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected RemoteError, got %T", err)
	}
	if !strings.Contains(re.Message, "The server had an error") {
		t.Errorf("expected server message, got %q", re.Message)
	}
}

func TestOpenAI_CompleteStream_ErrorEventWithoutMessage(t *testing.T) {
	srv := sseServer(t, []string{`data: {"error":{"type":"server_error"}}`})
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", srv.URL)
	_, err := collectStream(p.CompleteStream(context.Background(), Request{Stream: true}))
	if err == nil || !strings.Contains(err.Error(), "server_error") {
		t.Fatalf("expected error naming the type, got %v", err)
	}
}

func TestOpenAI_CompleteStream_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"message":"Rate limit reached","type":"requests"}}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", srv.URL)
	_, err := collectStream(p.CompleteStream(context.Background(), Request{}))
	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if re.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", re.StatusCode)
	}
	if re.Message != "Rate limit reached" {
		t.Errorf("expected message from error envelope, got %q", re.Message)
	}
}

func TestOpenAI_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body openaiRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad request body: %v", err)
			return
		}
		if body.Stream {
			t.Error("non-streaming call must not set stream")
		}
		if body.Temperature != 0.7 {
			t.Errorf("expected temperature 0.7, got %v", body.Temperature)
		}
		if len(body.Messages) != 1 || body.Messages[0].Role != RoleUser {
			t.Errorf("unexpected messages: %+v", body.Messages)
		}
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"こんにちは、世界。"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", srv.URL)
	got, err := p.Complete(context.Background(), NewRequest("gpt-4o-mini", []Message{{Role: RoleUser, Content: "hi"}}, 0.7, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "こんにちは、世界。" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestOpenAI_Complete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	_, err := NewOpenAIProvider("sk-test", srv.URL).Complete(context.Background(), Request{})
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Fatalf("expected no choices error, got %v", err)
	}
}

func TestOpenAI_Complete_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"Incorrect API key provided"}}`)
	}))
	defer srv.Close()

	_, err := NewOpenAIProvider("sk-test", srv.URL).Complete(context.Background(), Request{})
	if err == nil || !strings.Contains(err.Error(), "authentication failed") {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestOpenAI_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewOpenAIProvider("sk-test", url).Complete(context.Background(), Request{})
	if !IsRemote(err) {
		t.Fatalf("expected RemoteError for unreachable endpoint, got %v", err)
	}
}
