package domain

import (
	"errors"
	"fmt"
	"time"
)

// Mode selects which instruction template is rendered for a prompt.
type Mode string

const (
	ModeExplain   Mode = "explain"
	ModeMCQ       Mode = "mcq"
	ModeSummarize Mode = "summarize"
	ModeImprove   Mode = "improve"
)

var modeOrder = []Mode{ModeExplain, ModeMCQ, ModeSummarize, ModeImprove}

// Modes returns the supported modes in display order.
func Modes() []Mode {
	out := make([]Mode, len(modeOrder))
	copy(out, modeOrder)
	return out
}

// Valid reports whether m is one of the supported modes.
func (m Mode) Valid() bool {
	for _, known := range modeOrder {
		if m == known {
			return true
		}
	}
	return false
}

// ParseMode converts raw user input into a Mode. Matching is exact.
func ParseMode(raw string) (Mode, bool) {
	m := Mode(raw)
	return m, m.Valid()
}

type GenerationRequest struct {
	Prompt string `json:"prompt"`
	Mode   Mode   `json:"mode"`
}

type Generation struct {
	ID        string    `json:"id"`
	Mode      Mode      `json:"mode"`
	Model     string    `json:"model"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"createdAt"`
}

// Quiz is the JSON document the mcq instruction asks the model to produce.
type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

const (
	QuizQuestionCount = 3
	QuizOptionCount   = 4
)

var ErrInvalidQuiz = errors.New("invalid quiz")

// Validate checks the quiz against the mcq schema. An empty question list is
// the model's "not enough information" answer and is accepted.
func (q Quiz) Validate() error {
	if q.Questions == nil {
		return fmt.Errorf("%w: questions missing", ErrInvalidQuiz)
	}
	if len(q.Questions) == 0 {
		return nil
	}
	if len(q.Questions) != QuizQuestionCount {
		return fmt.Errorf("%w: got %d questions, want %d", ErrInvalidQuiz, len(q.Questions), QuizQuestionCount)
	}
	for i, item := range q.Questions {
		if item.Question == "" {
			return fmt.Errorf("%w: question %d has no text", ErrInvalidQuiz, i+1)
		}
		if len(item.Options) != QuizOptionCount {
			return fmt.Errorf("%w: question %d has %d options", ErrInvalidQuiz, i+1, len(item.Options))
		}
		if item.CorrectAnswer == "" {
			return fmt.Errorf("%w: question %d has no correct answer", ErrInvalidQuiz, i+1)
		}
	}
	return nil
}
