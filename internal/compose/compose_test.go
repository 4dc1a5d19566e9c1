package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/arin/penman/internal/ai"
	"github.com/arin/penman/internal/config"
	"github.com/arin/penman/internal/prompt"
)

// mockProvider returns a canned reply and counts calls.
type mockProvider struct {
	response string
	err      error
	calls    int
	lastReq  ai.Request
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Complete(_ context.Context, req ai.Request) (string, error) {
	m.calls++
	m.lastReq = req
	return m.response, m.err
}

// mockStreamProvider emits tokens, optionally failing after failAfter of them.
type mockStreamProvider struct {
	mockProvider
	tokens    []string
	failAfter int // -1 means never fail
	hang      bool
}

func (m *mockStreamProvider) CompleteStream(ctx context.Context, req ai.Request) <-chan ai.StreamDelta {
	m.calls++
	m.lastReq = req
	ch := make(chan ai.StreamDelta)
	go func() {
		defer close(ch)
		for i, tok := range m.tokens {
			if m.failAfter >= 0 && i == m.failAfter {
				ch <- ai.StreamDelta{Err: &ai.RemoteError{Provider: "mock", Message: "connection reset"}}
				return
			}
			ch <- ai.StreamDelta{Token: tok}
		}
		if m.hang {
			<-ctx.Done()
			return
		}
		ch <- ai.StreamDelta{Done: true}
	}()
	return ch
}

func newService(p ai.Provider, stream bool) *Service {
	cfg := config.Default()
	cfg.APIKey = "sk-test"
	cfg.Stream = stream
	return New(ai.NewClientWithProvider(cfg, p, nil), nil)
}

func recorder() (*[]string, func(string)) {
	var calls []string
	return &calls, func(s string) { calls = append(calls, s) }
}

func TestGenerate_MissingTopic_NoRequest(t *testing.T) {
	for _, stream := range []bool{true, false} {
		mock := &mockStreamProvider{failAfter: -1}
		calls, sink := recorder()

		_, err := newService(mock, stream).Generate(context.Background(), prompt.GenerateOptions{}, sink)
		var ve *prompt.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("stream=%v: expected ValidationError, got %v", stream, err)
		}
		if mock.calls != 0 {
			t.Errorf("stream=%v: expected zero requests, got %d", stream, mock.calls)
		}
		if len(*calls) != 0 {
			t.Errorf("stream=%v: sink should not be called", stream)
		}
	}
}

func TestProofread_MissingText_NoRequest(t *testing.T) {
	mock := &mockStreamProvider{failAfter: -1}

	_, err := newService(mock, true).Proofread(context.Background(), prompt.ProofreadOptions{Checks: []prompt.Check{prompt.CheckGrammar}}, nil)
	var ve *prompt.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if mock.calls != 0 {
		t.Errorf("expected zero requests, got %d", mock.calls)
	}
}

func TestGenerate_Streaming(t *testing.T) {
	mock := &mockStreamProvider{tokens: []string{"こんにちは", "", "、世界", "。"}, failAfter: -1}
	calls, sink := recorder()

	out, err := newService(mock, true).Generate(context.Background(), prompt.GenerateOptions{Topic: "挨拶"}, sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "こんにちは、世界。" {
		t.Errorf("unexpected result %q", out)
	}
	want := []string{"こんにちは", "こんにちは、世界", "こんにちは、世界。"}
	if strings.Join(*calls, "|") != strings.Join(want, "|") {
		t.Errorf("sink calls = %q, want %q", *calls, want)
	}
	if !mock.lastReq.Stream {
		t.Error("request should be marked as streaming")
	}
	if len(mock.lastReq.Messages) != 1 || !strings.Contains(mock.lastReq.Messages[0].Content, "挨拶") {
		t.Errorf("prompt not sent as the single user message: %+v", mock.lastReq.Messages)
	}
}

func TestGenerate_NonStreaming_SinkOnce(t *testing.T) {
	mock := &mockProvider{response: "こんにちは、世界。"}
	calls, sink := recorder()

	out, err := newService(mock, false).Generate(context.Background(), prompt.GenerateOptions{Topic: "挨拶"}, sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*calls) != 1 || (*calls)[0] != out {
		t.Errorf("expected exactly one sink call with the full text, got %q", *calls)
	}
	if mock.lastReq.Stream {
		t.Error("request should not be marked as streaming")
	}
}

func TestStreamingAndNonStreaming_Identical(t *testing.T) {
	tokens := []string{"  先頭に空白", "\n本文", "\n末尾に改行\n"}
	streamer := &mockStreamProvider{tokens: tokens, failAfter: -1}
	single := &mockProvider{response: strings.Join(tokens, "")}
	opts := prompt.ProofreadOptions{Text: "確認用テキスト"}

	streamed, err := newService(streamer, true).Proofread(context.Background(), opts, nil)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	whole, err := newService(single, false).Proofread(context.Background(), opts, nil)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if streamed != whole {
		t.Errorf("results differ:\nstream:   %q\ncomplete: %q", streamed, whole)
	}
}

func TestGenerate_FaultMidStream(t *testing.T) {
	mock := &mockStreamProvider{tokens: []string{"一", "二", "三", "四"}, failAfter: 2}
	calls, sink := recorder()

	out, err := newService(mock, true).Generate(context.Background(), prompt.GenerateOptions{Topic: "数"}, sink)
	if err == nil {
		t.Fatal("expected error from a failed stream")
	}
	if !ai.IsRemote(err) {
		t.Errorf("expected RemoteError, got %T: %v", err, err)
	}
	if out != "" {
		t.Errorf("failed stream must not return text, got %q", out)
	}
	if len(*calls) != 2 {
		t.Errorf("expected 2 sink calls before the fault, got %d", len(*calls))
	}
	if mock.calls != 1 {
		t.Errorf("no retry expected, got %d calls", mock.calls)
	}
}

func TestGenerate_NonStreamingError(t *testing.T) {
	mock := &mockProvider{err: fmt.Errorf("rate limited")}
	calls, sink := recorder()

	_, err := newService(mock, false).Generate(context.Background(), prompt.GenerateOptions{Topic: "x"}, sink)
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected provider error, got %v", err)
	}
	if len(*calls) != 0 {
		t.Error("sink must not be called on failure")
	}
	if mock.calls != 1 {
		t.Errorf("no retry expected, got %d calls", mock.calls)
	}
}

func TestRun_Timeout(t *testing.T) {
	cfg := config.Default()
	cfg.APIKey = "sk-test"
	cfg.Timeout = 30 * time.Millisecond
	mock := &mockStreamProvider{tokens: []string{"slow"}, failAfter: -1, hang: true}
	svc := New(ai.NewClientWithProvider(cfg, mock, nil), nil)

	out, err := svc.Generate(context.Background(), prompt.GenerateOptions{Topic: "x"}, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if out != "" {
		t.Errorf("timed out request must not return text, got %q", out)
	}
}
