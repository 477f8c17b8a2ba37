package problemgen

import (
	"fmt"
	"slices"
)

// SubtopicValidator checks that the question's subtopic belongs to the
// topic and, when the input restricts subtopics, is one of the allowed
// ones. A question with no subtopic passes only when unrestricted.
type SubtopicValidator struct{}

func (v *SubtopicValidator) Name() string { return "subtopic" }

func (v *SubtopicValidator) Validate(q *Question, input GenerateInput) *ValidationError {
	if q.Subtopic == "" {
		if len(input.AllowedSubtopics) > 0 {
			return &ValidationError{
				Validator: v.Name(),
				Message:   "subtopic is empty but the request is restricted",
				Retryable: true,
			}
		}
		return nil
	}
	if len(input.Topic.Subtopics) > 0 && !input.Topic.HasSubtopic(q.Subtopic) {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("subtopic %q is not part of topic %q", q.Subtopic, input.Topic.ID),
			Retryable: true,
		}
	}
	if len(input.AllowedSubtopics) > 0 && !slices.Contains(input.AllowedSubtopics, q.Subtopic) {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("subtopic %q is not allowed", q.Subtopic),
			Retryable: true,
		}
	}
	return nil
}
