package problemgen

import (
	"fmt"
	"strings"
	"testing"

	"github.com/abhisek/adaptiq/internal/topics"
)

func TestBuildUserMessage_MinimalContext(t *testing.T) {
	tp, err := topics.Get("fractions")
	if err != nil {
		t.Fatal(err)
	}
	msg := buildUserMessage(GenerateInput{Topic: tp, Difficulty: 0.25}, DefaultConfig())

	for _, want := range []string{
		"Topic: Fractions",
		"Grade: 5",
		"Allowed subtopics: equivalent, compare, add-like, subtract-like",
		"Difficulty level: 2",
		"Hints allowed: true",
		"Already asked in this session:\nNone",
		"Recent errors by this student:\nNone",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestBuildUserMessage_RestrictedHard(t *testing.T) {
	tp, err := topics.Get("fractions")
	if err != nil {
		t.Fatal(err)
	}
	msg := buildUserMessage(GenerateInput{
		Topic:            tp,
		Difficulty:       0.9,
		AllowedSubtopics: []string{"compare"},
	}, DefaultConfig())

	if !strings.Contains(msg, "Allowed subtopics: compare\n") {
		t.Errorf("expected restricted subtopics:\n%s", msg)
	}
	if !strings.Contains(msg, "Difficulty level: 5") {
		t.Error("expected level 5")
	}
	if !strings.Contains(msg, "Hints allowed: false") {
		t.Error("expected hints not allowed")
	}
}

func TestNumberedList(t *testing.T) {
	if got := numberedList(nil, 3); got != "None" {
		t.Errorf("empty list: got %q", got)
	}

	var items []string
	for i := range 10 {
		items = append(items, fmt.Sprintf("q%d", i))
	}
	got := numberedList(items, 3)
	want := "1. q7\n2. q8\n3. q9"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if got := numberedList(items[:2], 0); got != "1. q0\n2. q1" {
		t.Errorf("unlimited: got %q", got)
	}
}

func TestBuildDedupAndErrorsRespectLimits(t *testing.T) {
	cfg := DefaultConfig()
	var prior, errs []string
	for i := range 20 {
		prior = append(prior, fmt.Sprintf("prior %d", i))
		errs = append(errs, fmt.Sprintf("error %d", i))
	}
	tp, _ := topics.Get("addition")
	msg := buildUserMessage(GenerateInput{Topic: tp, PriorQuestions: prior, RecentErrors: errs}, cfg)

	if strings.Contains(msg, "prior 11") || !strings.Contains(msg, "prior 12") {
		t.Errorf("expected only the last %d prior questions", cfg.MaxPriorQuestions)
	}
	if strings.Contains(msg, "error 14") || !strings.Contains(msg, "error 15") {
		t.Errorf("expected only the last %d errors", cfg.MaxRecentErrors)
	}
}
