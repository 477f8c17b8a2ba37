package problemgen

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var fractionPattern = regexp.MustCompile(`^-?\d+/\d+$`)

// answerCheckers holds the canonical-form check for each numeric answer
// type. Canonical answers keep CheckAnswer's comparisons exact.
var answerCheckers = map[AnswerType]func(string) error{
	AnswerTypeInteger:  validateInteger,
	AnswerTypeDecimal:  validateDecimal,
	AnswerTypeFraction: validateFraction,
}

// AnswerFormatValidator checks that the answer is in canonical form for
// its declared type and that the answer format is consistent: numeric
// questions carry no choices, multiple choice questions carry four
// distinct choices with the answer among them.
type AnswerFormatValidator struct{}

func (v *AnswerFormatValidator) Name() string { return "answer-format" }

func (v *AnswerFormatValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	if check, ok := answerCheckers[q.AnswerType]; ok {
		if err := check(q.Answer); err != nil {
			return v.reject("invalid %s answer %q: %s", q.AnswerType, q.Answer, err)
		}
	}

	switch q.Format {
	case FormatNumeric:
		if len(q.Choices) > 0 {
			return v.reject("numeric format must have empty choices")
		}
		if q.AnswerType == AnswerTypeText {
			return v.reject("text answers need multiple choice")
		}
	case FormatMultipleChoice:
		return v.checkChoices(q)
	}
	return nil
}

func (v *AnswerFormatValidator) checkChoices(q *Question) *ValidationError {
	if len(q.Choices) != 4 {
		return v.reject("multiple choice must have exactly 4 choices, got %d", len(q.Choices))
	}
	answer := normalizeChoice(q.Answer)
	seen := make(map[string]bool, len(q.Choices))
	for i, c := range q.Choices {
		key := normalizeChoice(c)
		if key == "" {
			return v.reject("choice %d is empty", i+1)
		}
		if seen[key] {
			return v.reject("duplicate choice %q", strings.TrimSpace(c))
		}
		seen[key] = true
	}
	if !seen[answer] {
		return v.reject("answer %q not found in choices", q.Answer)
	}
	return nil
}

func (v *AnswerFormatValidator) reject(format string, args ...any) *ValidationError {
	return &ValidationError{
		Validator: v.Name(),
		Message:   fmt.Sprintf(format, args...),
		Retryable: true,
	}
}

func normalizeChoice(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// validateInteger rejects leading zeros and signs other than a minus.
func validateInteger(s string) error {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return errors.New("not a valid integer")
	}
	if strconv.FormatInt(n, 10) != s {
		return errors.New("has leading zeros")
	}
	return nil
}

// validateDecimal rejects trailing zeros after the point.
func validateDecimal(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.New("not a valid decimal")
	}
	if normalized := strconv.FormatFloat(f, 'f', -1, 64); normalized != s {
		return fmt.Errorf("has trailing zeros or is not normalized (expected %q)", normalized)
	}
	return nil
}

// validateFraction requires a/b with a positive denominator in lowest terms.
func validateFraction(s string) error {
	if !fractionPattern.MatchString(s) {
		return errors.New("does not match fraction pattern a/b")
	}
	num, den, err := parseFraction(s)
	if err != nil {
		return err
	}
	if den <= 0 {
		return errors.New("denominator must be positive")
	}
	if gcd(abs(num), den) != 1 {
		return errors.New("fraction is not in lowest terms")
	}
	return nil
}
