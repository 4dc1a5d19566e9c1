// Package ai talks to hosted chat-completion endpoints (OpenAI-compatible or
// a local Ollama server) in either streaming or single-shot form.
package ai

// RoleUser is the only role penman sends; every request is a single user turn.
const RoleUser = "user"

// Request is one chat-completion call. Build it with NewRequest and treat it as
// read-only afterwards.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	Stream      bool
}

// NewRequest builds a Request. The message slice is copied so later changes by
// the caller do not leak into an in-flight request.
func NewRequest(model string, messages []Message, temperature float64, stream bool) Request {
	msgs := make([]Message, len(messages))
	copy(msgs, messages)
	return Request{
		Model:       model,
		Messages:    msgs,
		Temperature: temperature,
		Stream:      stream,
	}
}

// openaiRequest is the request body sent to /chat/completions.
type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	Stream      bool            `json:"stream,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openaiResponse is the non-streaming response body.
type openaiResponse struct {
	Choices []struct {
		Message      openaiMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
}

// openaiChunk is a single SSE chunk from the streaming API. A fault raised
// after the response has started arrives as a chunk carrying Error.
type openaiChunk struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
	Choices []struct {
		Delta struct {
			Content *string `json:"content,omitempty"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// openaiError is the error envelope returned on non-2xx responses.
type openaiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// ollamaRequest is the request body sent to the Ollama API.
type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

// ollamaMessage is a single message in the Ollama chat format.
type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ollamaOptions controls generation parameters.
type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

// ollamaResponse is the response body from the Ollama API. In streaming mode
// each NDJSON line has this shape.
type ollamaResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}
