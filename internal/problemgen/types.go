package problemgen

import (
	"github.com/abhisek/adaptiq/internal/quiz"
	"github.com/abhisek/adaptiq/internal/topics"
)

// Question represents a generated practice question.
type Question struct {
	// Text is the question prompt, in plain ASCII,
	// e.g. "What is 345 + 278?" or "Which fraction is larger: 3/4 or 2/3?"
	Text string

	// Format indicates how the learner answers this question.
	Format AnswerFormat

	// Answer is the canonical correct answer.
	// For numeric: "623", "0.75", "3/4".
	// For multiple choice: the text of the correct option.
	Answer string

	AnswerType AnswerType

	// Choices is populated only when Format is FormatMultipleChoice.
	Choices []string

	// Hint is optional.
	Hint string

	// Level is the difficulty on a 1-5 scale.
	Level int

	// Explanation is a brief worked solution shown after answering.
	Explanation string

	Topic    string
	Subtopic string
}

// AnswerType describes the representation of the correct answer.
type AnswerType string

const (
	AnswerTypeInteger  AnswerType = "integer"  // e.g. "623", "-15"
	AnswerTypeDecimal  AnswerType = "decimal"  // e.g. "3.75", "0.5"
	AnswerTypeFraction AnswerType = "fraction" // e.g. "3/4", "7/2"
	AnswerTypeText     AnswerType = "text"     // multiple choice only, e.g. "greater than"
)

// AnswerFormat describes how the learner provides their answer.
type AnswerFormat string

const (
	// FormatNumeric means the learner types the answer.
	FormatNumeric AnswerFormat = "numeric"

	// FormatMultipleChoice means the learner picks from 4 choices.
	FormatMultipleChoice AnswerFormat = "multiple_choice"
)

// GenerateInput holds all context needed to generate a question.
type GenerateInput struct {
	Topic topics.Topic

	// Difficulty is the requested complexity in [0, 1].
	Difficulty float64

	// AllowedSubtopics restricts the question to these subtopics. Empty
	// means any subtopic of Topic.
	AllowedSubtopics []string

	// PriorQuestions contains the text of questions already produced for
	// this topic, oldest first.
	PriorQuestions []string

	// RecentErrors describes the learner's recent mistakes on the topic,
	// e.g. "answered 623 for 345 + 289, correct was 634".
	RecentErrors []string
}

// LevelFor maps a complexity in [0, 1] to the 1-5 level scale.
func LevelFor(difficulty float64) int {
	d := min(1, max(0, difficulty))
	return 1 + int(d*4+0.5)
}

// ComplexityFor maps a 1-5 level back to [0, 1].
func ComplexityFor(level int) float64 {
	l := min(5, max(1, level))
	return float64(l-1) / 4
}

// Candidate converts q into a sampler candidate. Numeric questions carry
// no options.
func (q *Question) Candidate(grade int) quiz.Candidate {
	c := quiz.Candidate{
		Topic:         q.Topic,
		Subtopic:      q.Subtopic,
		Question:      q.Text,
		CorrectAnswer: q.Answer,
		Explanation:   q.Explanation,
		Hint:          q.Hint,
		Difficulty:    ComplexityFor(q.Level),
		Grade:         grade,
	}
	if q.Format == FormatMultipleChoice {
		c.Options = append([]string(nil), q.Choices...)
	}
	return c
}
