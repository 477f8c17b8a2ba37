// Package quiz assembles a fixed-size, non-repeating quiz from remotely
// supplied and locally generated candidate questions, biasing generated
// material toward what the learner has struggled with.
package quiz

import "context"

// SignatureSeparator joins question text and answer in a Signature.
const SignatureSeparator = "|||"

// Signature is the dedup key for a question: two candidates with the same
// text and correct answer are the same question, whatever their source.
func Signature(question, correctAnswer string) string {
	return question + SignatureSeparator + correctAnswer
}

// Source records where a candidate came from.
type Source string

const (
	SourceRemote    Source = "remote"
	SourceGenerated Source = "generated"
)

// Candidate is a question offered to the sampler. Once accepted into a
// quiz it is not modified.
type Candidate struct {
	ID            string   `json:"id"`
	Topic         string   `json:"topic"`
	Subtopic      string   `json:"subtopic,omitempty"`
	Question      string   `json:"question"`
	CorrectAnswer string   `json:"correct_answer"`
	Options       []string `json:"options,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
	Hint          string   `json:"hint,omitempty"`
	Difficulty    float64  `json:"difficulty"`
	Grade         int      `json:"grade,omitempty"`
	Source        Source   `json:"source"`
}

// Signature returns the candidate's dedup key.
func (c Candidate) Signature() string {
	return Signature(c.Question, c.CorrectAnswer)
}

// Generator synthesizes a fresh candidate for a topic. It returns a nil
// candidate (and nil error) when the constraints cannot be met; it must be
// safe to call repeatedly.
type Generator interface {
	Generate(ctx context.Context, difficulty float64, allowedSubtopics []string) (*Candidate, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, difficulty float64, allowedSubtopics []string) (*Candidate, error)

func (f GeneratorFunc) Generate(ctx context.Context, difficulty float64, allowedSubtopics []string) (*Candidate, error) {
	return f(ctx, difficulty, allowedSubtopics)
}
