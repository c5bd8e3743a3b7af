package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the OpenRouter endpoint used when none is configured.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// ErrMalformedResponse is returned when the provider answers 2xx with a body
// that is not a chat completion.
var ErrMalformedResponse = errors.New("malformed completion response")

// APIError is a non-2xx answer from the provider.
type APIError struct {
	Status  int
	Message string
	Type    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("openai-compat api error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("openai-compat api error (status %d)", e.Status)
}

// OpenAICompatClient calls any OpenAI-compatible /chat/completions endpoint
// (OpenRouter, OpenAI, vLLM, LiteLLM, ...).
type OpenAICompatClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option customizes an OpenAICompatClient.
type Option func(*OpenAICompatClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *OpenAICompatClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewOpenAICompatClient builds a client bound to baseURL and apiKey.
// baseURL should include the /v1 prefix, e.g. "https://openrouter.ai/api/v1".
func NewOpenAICompatClient(baseURL, apiKey string, opts ...Option) (*OpenAICompatClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("openai-compat api key required")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &OpenAICompatClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		// Per-call deadlines come from the caller's context.
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SendCompletion implements CompletionClient.
func (c *OpenAICompatClient) SendCompletion(ctx context.Context, reqBody ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(reqBody.Model) == "" {
		return nil, fmt.Errorf("openai-compat model required")
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("openai-compat encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai-compat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errResp errorResponse
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); readErr == nil {
			if json.Unmarshal(data, &errResp) == nil {
				apiErr.Message = errResp.Error.Message
				apiErr.Type = errResp.Error.Type
			}
		}
		return nil, apiErr
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	slog.DebugContext(ctx, "completion received",
		"model", chatResp.Model,
		"choices", len(chatResp.Choices),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &chatResp, nil
}

// FirstContent returns the text of the first choice, or ErrMalformedResponse
// when the response carries no usable message.
func (r *ChatResponse) FirstContent() (string, error) {
	if r == nil || len(r.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	msg := r.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return "", fmt.Errorf("%w: first choice has no message content", ErrMalformedResponse)
	}
	return *msg.Content, nil
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
