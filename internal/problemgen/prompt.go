package problemgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a math tutor creating practice problems for children in grades 3-5.

Rules:
- Generate a single math problem for the given topic, grade and difficulty level.
- Difficulty is on a scale of 1 (easiest) to 5 (hardest). Aim for the requested level and report the level you produced.
- Pick the subtopic from the allowed list and report it in the "subtopic" field.
- Use plain ASCII text for all math. No LaTeX, no Unicode symbols. Use / for fractions, * for multiplication, and standard operators.
- The question text should be clear, self-contained, and age-appropriate.
- The answer must be correct and in the simplest form (reduce fractions, no trailing zeros on decimals).
- The explanation should show the solution step by step, suitable for a child.
- Choose "numeric" format for computation problems (the student types the answer).
- Choose "multiple_choice" format for conceptual, comparison, or identification problems (the student picks from 4 options).
- For multiple choice, provide exactly 4 options where exactly one is correct. Distractors should reflect common mistakes, not random values.
- Include a short hint when the level is 3 or below. Otherwise leave the hint empty.
- Do not repeat any question from the "already asked" list.`

// buildUserMessage constructs the user message from GenerateInput and Config limits.
func buildUserMessage(input GenerateInput, cfg Config) string {
	level := LevelFor(input.Difficulty)

	subtopics := input.AllowedSubtopics
	if len(subtopics) == 0 {
		subtopics = input.Topic.Subtopics
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", input.Topic.Name)
	fmt.Fprintf(&b, "Description: %s\n", input.Topic.Description)
	fmt.Fprintf(&b, "Grade: %d\n", input.Topic.Grade)
	fmt.Fprintf(&b, "Allowed subtopics: %s\n", strings.Join(subtopics, ", "))
	fmt.Fprintf(&b, "Difficulty level: %d\n", level)
	fmt.Fprintf(&b, "Hints allowed: %t\n", level <= 3)

	b.WriteString("\nAlready asked in this session:\n")
	b.WriteString(buildDedup(input.PriorQuestions, cfg.MaxPriorQuestions))

	b.WriteString("\nRecent errors by this student:\n")
	b.WriteString(buildErrors(input.RecentErrors, cfg.MaxRecentErrors))

	return b.String()
}

// buildErrors formats recent errors for the prompt, respecting the max limit.
func buildErrors(errors []string, max int) string {
	return numberedList(errors, max)
}

// buildDedup formats prior questions for the prompt, respecting the max limit.
func buildDedup(priorQuestions []string, max int) string {
	return numberedList(priorQuestions, max)
}

// numberedList keeps the last max items and numbers them. Returns "None"
// for an empty list.
func numberedList(items []string, max int) string {
	if len(items) == 0 {
		return "None"
	}
	if max > 0 && len(items) > max {
		items = items[len(items)-max:]
	}

	var b strings.Builder
	for i, s := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	return strings.TrimRight(b.String(), "\n")
}
