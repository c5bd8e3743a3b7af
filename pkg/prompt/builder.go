// Package prompt renders the instruction sent to the completion provider for
// each supported mode.
package prompt

import (
	"errors"
	"fmt"

	"studymate/pkg/domain"
)

// ErrInvalidMode is returned when no template exists for the requested mode.
var ErrInvalidMode = errors.New("invalid mode selected")

// Fallback answers the templates tell the model to give when it is unsure.
const (
	ExplainFallback = "I am not certain about this topic."
	QuizFallback    = `{ "questions": [] }`
)

type renderFunc func(input string) string

var templates = map[domain.Mode]renderFunc{
	domain.ModeExplain:   explain,
	domain.ModeMCQ:       mcq,
	domain.ModeSummarize: summarize,
	domain.ModeImprove:   improve,
}

// Build returns the full instruction for input under mode. The input is
// appended verbatim after the template's label line.
func Build(input string, mode domain.Mode) (string, error) {
	render, ok := templates[mode]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, string(mode))
	}
	return render(input), nil
}

// Input is concatenated rather than formatted so that verbs and braces in
// user text are never interpreted.

func explain(input string) string {
	return `
You are an experienced university instructor.

Task:
Explain the following concept to a beginner student.

Rules:
- Use simple language
- Keep the explanation under 150 words
- If you are not confident about the topic, respond with:
  "` + ExplainFallback + `"

Concept:
` + input + "\n"
}

func mcq(input string) string {
	return `
You are an academic exam creator.

Task:
Generate exactly 3 multiple-choice questions.

Rules:
- Output MUST be valid JSON only
- Each question must have exactly 4 options
- Clearly specify the correct answer
- If reliable information is not available, return:
  ` + QuizFallback + `

Required JSON format:
{
  "questions": [
    {
      "question": "",
      "options": ["A", "B", "C", "D"],
      "correctAnswer": ""
    }
  ]
}

Topic:
` + input + "\n"
}

func summarize(input string) string {
	return `
You are a professional summarizer.

Task:
Summarize the following text.

Rules:
- Maximum 100 words
- Do NOT add new information
- If unsure, state uncertainty

Text:
` + input + "\n"
}

func improve(input string) string {
	return `
You are a professional writing editor.

Task:
Improve grammar, clarity, and tone.

Rules:
- Do NOT change the original meaning
- Do NOT add new information

Text:
` + input + "\n"
}
