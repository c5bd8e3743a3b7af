package domain

import (
	"errors"
	"testing"
)

func TestParseMode(t *testing.T) {
	for _, m := range Modes() {
		got, ok := ParseMode(string(m))
		if !ok || got != m {
			t.Fatalf("ParseMode(%q) = %q, %v", m, got, ok)
		}
	}
	for _, raw := range []string{"", "translate", "Explain", " mcq"} {
		if _, ok := ParseMode(raw); ok {
			t.Fatalf("ParseMode(%q) should be rejected", raw)
		}
	}
}

func TestModesReturnsCopy(t *testing.T) {
	modes := Modes()
	modes[0] = "bogus"
	if Modes()[0] != ModeExplain {
		t.Fatalf("Modes() exposed internal slice")
	}
}

func TestQuizValidate(t *testing.T) {
	question := QuizQuestion{
		Question:      "What does chlorophyll absorb?",
		Options:       []string{"Light", "Water", "Soil", "Oxygen"},
		CorrectAnswer: "Light",
	}
	tests := []struct {
		name    string
		quiz    Quiz
		wantErr bool
	}{
		{name: "three questions", quiz: Quiz{Questions: []QuizQuestion{question, question, question}}},
		{name: "empty fallback", quiz: Quiz{Questions: []QuizQuestion{}}},
		{name: "missing questions", quiz: Quiz{}, wantErr: true},
		{name: "too few questions", quiz: Quiz{Questions: []QuizQuestion{question}}, wantErr: true},
		{
			name: "three options",
			quiz: Quiz{Questions: []QuizQuestion{question, question, {
				Question:      "q",
				Options:       []string{"a", "b", "c"},
				CorrectAnswer: "a",
			}}},
			wantErr: true,
		},
		{
			name: "no answer",
			quiz: Quiz{Questions: []QuizQuestion{question, question, {
				Question: "q",
				Options:  []string{"a", "b", "c", "d"},
			}}},
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.quiz.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidQuiz) {
					t.Fatalf("Validate() = %v, want ErrInvalidQuiz", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
		})
	}
}
