package problemgen

import (
	"strings"
	"testing"

	"github.com/abhisek/adaptiq/internal/topics"
)

func validQuestion() *Question {
	return &Question{
		Text:        "What is 345 + 278?",
		Format:      FormatNumeric,
		Answer:      "623",
		AnswerType:  AnswerTypeInteger,
		Hint:        "Try adding column by column.",
		Level:       3,
		Explanation: "345 + 278 = 623",
		Topic:       "addition",
		Subtopic:    "regroup",
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Validator: "test-validator", Message: "something went wrong", Retryable: true}
	expected := `validator "test-validator": something went wrong`
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestDefaultConfig_ValidatorChain(t *testing.T) {
	cfg := DefaultConfig()
	names := []string{"structural", "subtopic", "answer-format", "math-check"}
	if len(cfg.Validators) != len(names) {
		t.Fatalf("expected %d validators, got %d", len(names), len(cfg.Validators))
	}
	for i, v := range cfg.Validators {
		if v.Name() != names[i] {
			t.Errorf("validator %d: expected %q, got %q", i, names[i], v.Name())
		}
	}
	if cfg.MaxTokens != 512 || cfg.Temperature != 0.7 || cfg.MaxPriorQuestions != 8 || cfg.MaxRecentErrors != 5 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestStructural(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Question)
		ok     bool
	}{
		{"valid", func(*Question) {}, true},
		{"empty text", func(q *Question) { q.Text = "" }, false},
		{"text too long", func(q *Question) { q.Text = strings.Repeat("a", 501) }, false},
		{"empty explanation", func(q *Question) { q.Explanation = "" }, false},
		{"explanation too long", func(q *Question) { q.Explanation = strings.Repeat("a", 1001) }, false},
		{"level too low", func(q *Question) { q.Level = 0 }, false},
		{"level too high", func(q *Question) { q.Level = 6 }, false},
		{"bad format", func(q *Question) { q.Format = "essay" }, false},
		{"bad answer type", func(q *Question) { q.AnswerType = "complex" }, false},
		{"text answer needs choices", func(q *Question) { q.AnswerType = AnswerTypeText }, false},
		{"text answer multiple choice", func(q *Question) {
			q.AnswerType = AnswerTypeText
			q.Format = FormatMultipleChoice
		}, true},
	}
	v := &StructuralValidator{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.mutate(q)
			err := v.Validate(q, GenerateInput{})
			if tt.ok && err != nil {
				t.Fatalf("expected nil, got %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("expected error")
				}
				if err.Validator != "structural" || !err.Retryable {
					t.Errorf("unexpected error: %+v", err)
				}
			}
		})
	}
}

func TestSubtopicValidator(t *testing.T) {
	addition, err := topics.Get("addition")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name     string
		subtopic string
		allowed  []string
		ok       bool
	}{
		{"unrestricted", "regroup", nil, true},
		{"allowed", "regroup", []string{"regroup", "no-regroup"}, true},
		{"not allowed", "regroup", []string{"no-regroup"}, false},
		{"foreign subtopic", "long-division", nil, false},
		{"empty unrestricted", "", nil, true},
		{"empty restricted", "", []string{"regroup"}, false},
	}
	v := &SubtopicValidator{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			q.Subtopic = tt.subtopic
			err := v.Validate(q, GenerateInput{Topic: addition, AllowedSubtopics: tt.allowed})
			if (err == nil) != tt.ok {
				t.Errorf("ok = %v, err = %v", tt.ok, err)
			}
		})
	}
}

func TestAnswerFormat(t *testing.T) {
	tests := []struct {
		name       string
		answer     string
		answerType AnswerType
		format     AnswerFormat
		choices    []string
		ok         bool
	}{
		{"integer", "623", AnswerTypeInteger, FormatNumeric, nil, true},
		{"integer leading zero", "0623", AnswerTypeInteger, FormatNumeric, nil, false},
		{"integer not a number", "six", AnswerTypeInteger, FormatNumeric, nil, false},
		{"decimal", "3.75", AnswerTypeDecimal, FormatNumeric, nil, true},
		{"decimal trailing zero", "3.50", AnswerTypeDecimal, FormatNumeric, nil, false},
		{"fraction", "3/4", AnswerTypeFraction, FormatNumeric, nil, true},
		{"fraction not reduced", "2/4", AnswerTypeFraction, FormatNumeric, nil, false},
		{"fraction bad pattern", "3 / 4", AnswerTypeFraction, FormatNumeric, nil, false},
		{"fraction zero denominator", "3/0", AnswerTypeFraction, FormatNumeric, nil, false},
		{"numeric with choices", "623", AnswerTypeInteger, FormatNumeric, []string{"1"}, false},
		{"mc", "3/4", AnswerTypeFraction, FormatMultipleChoice, []string{"1/2", "3/4", "2/3", "1/4"}, true},
		{"mc three choices", "3/4", AnswerTypeFraction, FormatMultipleChoice, []string{"1/2", "3/4", "2/3"}, false},
		{"mc duplicate", "3/4", AnswerTypeFraction, FormatMultipleChoice, []string{"1/2", "3/4", "3/4", "1/4"}, false},
		{"mc empty choice", "3/4", AnswerTypeFraction, FormatMultipleChoice, []string{"1/2", "3/4", " ", "1/4"}, false},
		{"mc answer missing", "3/4", AnswerTypeFraction, FormatMultipleChoice, []string{"1/2", "1/3", "2/3", "1/4"}, false},
		{"mc text", "greater", AnswerTypeText, FormatMultipleChoice, []string{"greater", "less", "equal", "unknown"}, true},
		{"mc answer case differs", "Greater", AnswerTypeText, FormatMultipleChoice, []string{"greater", "less", "equal", "unknown"}, true},
		{"text needs choices", "greater", AnswerTypeText, FormatNumeric, nil, false},
	}
	v := &AnswerFormatValidator{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			q.Answer = tt.answer
			q.AnswerType = tt.answerType
			q.Format = tt.format
			q.Choices = tt.choices
			err := v.Validate(q, GenerateInput{})
			if (err == nil) != tt.ok {
				t.Errorf("ok = %v, err = %v", tt.ok, err)
			}
		})
	}
}

func TestMathCheck(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		answer     string
		answerType AnswerType
		ok         bool
	}{
		{"addition", "What is 345 + 278?", "623", AnswerTypeInteger, true},
		{"addition wrong", "What is 345 + 278?", "613", AnswerTypeInteger, false},
		{"subtraction", "What is 300 - 147?", "153", AnswerTypeInteger, true},
		{"multiplication", "What is 12 * 11?", "132", AnswerTypeInteger, true},
		{"times sign", "What is 12 × 11?", "132", AnswerTypeInteger, true},
		{"division", "What is 144 / 12?", "12", AnswerTypeInteger, true},
		{"division wrong", "What is 144 / 12?", "11", AnswerTypeInteger, false},
		{"chain", "What is 12 + 34 + 56?", "102", AnswerTypeInteger, true},
		{"chain wrong", "What is 12 + 34 + 56?", "46", AnswerTypeInteger, false},
		{"chain mixed", "What is 100 - 30 + 5?", "75", AnswerTypeInteger, true},
		{"fraction add", "What is 2/7 + 3/7?", "5/7", AnswerTypeFraction, true},
		{"fraction add reduces", "What is 1/6 + 3/6?", "2/3", AnswerTypeFraction, true},
		{"fraction add wrong", "What is 2/7 + 3/7?", "5/14", AnswerTypeFraction, false},
		{"fraction subtract", "What is 5/8 - 1/8?", "1/2", AnswerTypeFraction, true},
		{"decimal", "What is 1.5 + 2.25?", "3.75", AnswerTypeDecimal, true},
		{"word problem passes", "Sam has some apples and eats a few. How many are left?", "4", AnswerTypeInteger, true},
		{"comparison passes", "Which fraction is the largest: 1/2, 3/8, 2/3, 5/12?", "2/3", AnswerTypeFraction, true},
		{"equivalent passes", "Complete the equivalent fraction: 2/3 = ?/12", "8", AnswerTypeInteger, true},
	}
	v := &MathCheckValidator{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			q.Text = tt.text
			q.Answer = tt.answer
			q.AnswerType = tt.answerType
			err := v.Validate(q, GenerateInput{})
			if (err == nil) != tt.ok {
				t.Errorf("ok = %v, err = %v", tt.ok, err)
			}
		})
	}
}
