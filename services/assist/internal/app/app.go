package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"studymate/pkg/ai"
	"studymate/pkg/domain"
	"studymate/pkg/prompt"
)

const (
	// Temperature is the sampling temperature sent with every completion.
	Temperature = 0.3

	defaultTimeout = 60 * time.Second
)

// Config holds runtime configuration for the relay.
type Config struct {
	Client ai.CompletionClient
	Model  string
	// Timeout bounds one provider call. Zero uses the default; negative disables it.
	Timeout time.Duration
	// StrictQuiz rejects mcq output that does not match the quiz schema.
	StrictQuiz bool
	// Now is overridable in tests.
	Now func() time.Time
}

// App turns a prompt and mode into one completion call.
// It holds no mutable state and is safe for concurrent use.
type App struct {
	client     ai.CompletionClient
	model      string
	timeout    time.Duration
	strictQuiz bool
	now        func() time.Time
}

// New validates cfg and constructs the relay.
func New(cfg Config) (*App, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("completion client required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("generation model required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &App{
		client:     cfg.Client,
		model:      model,
		timeout:    timeout,
		strictQuiz: cfg.StrictQuiz,
		now:        now,
	}, nil
}

// Model returns the configured completion model identifier.
func (a *App) Model() string { return a.model }

// Generate renders the instruction for req and relays it to the provider.
// Every failure is returned as a *GenerationError.
func (a *App) Generate(ctx context.Context, req domain.GenerationRequest) (domain.Generation, error) {
	instruction, err := prompt.Build(req.Prompt, req.Mode)
	if err != nil {
		return domain.Generation{}, fail(KindInvalidMode, err)
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	resp, err := a.client.SendCompletion(ctx, ai.ChatRequest{
		Model:       a.model,
		Messages:    []ai.Message{{Role: "user", Content: instruction}},
		Temperature: Temperature,
		N:           1,
	})
	if err != nil {
		if isTimeout(ctx, err) {
			return domain.Generation{}, fail(KindTimeout, err)
		}
		return domain.Generation{}, fail(KindProvider, err)
	}
	text, err := resp.FirstContent()
	if err != nil {
		return domain.Generation{}, fail(KindProvider, err)
	}
	if a.strictQuiz && req.Mode == domain.ModeMCQ {
		if err := checkQuiz(text); err != nil {
			return domain.Generation{}, fail(KindProvider, err)
		}
	}

	model := a.model
	if resp.Model != "" {
		model = resp.Model
	}
	slog.DebugContext(ctx, "generation complete", "mode", req.Mode, "model", model, "chars", len(text))
	return domain.Generation{
		ID:        uuid.NewString(),
		Mode:      req.Mode,
		Model:     model,
		Result:    text,
		CreatedAt: a.now().UTC(),
	}, nil
}

func checkQuiz(text string) error {
	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &quiz); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidQuiz, err)
	}
	return quiz.Validate()
}

// stripCodeFence removes a surrounding ```json fence, which models often add
// despite being asked for bare JSON.
func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
