package ai

import "context"

// Message is one chat turn in an OpenAI-compatible request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body posted to /chat/completions.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	N           int       `json:"n,omitempty"`
}

// ChatResponse holds the subset of the completion response the relay reads.
type ChatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Index        int            `json:"index"`
	Message      *ChoiceMessage `json:"message"`
	FinishReason string         `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role string `json:"role"`
	// Content is a pointer so a null or missing content can be told apart
	// from an empty string.
	Content *string `json:"content"`
}

// CompletionClient sends one chat completion request.
// OpenAICompatClient is the production implementation; tests substitute stubs.
type CompletionClient interface {
	SendCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
