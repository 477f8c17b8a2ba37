package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptiq/internal/config"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/practice"
	"github.com/abhisek/adaptiq/internal/quiz"
	"github.com/abhisek/adaptiq/internal/store"
	"github.com/abhisek/adaptiq/internal/topics"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(fmt.Sprintf("file:cmd_%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func additionQuiz() *practice.Quiz {
	return &practice.Quiz{
		ID:     "quiz-1",
		Topic:  "addition",
		Target: 0.5,
		Result: &quiz.Result{
			Questions: []quiz.Candidate{
				{ID: "q1", Topic: "addition", Subtopic: "no-regroup", Question: "What is 2 + 3?", CorrectAnswer: "5"},
				{ID: "q2", Topic: "addition", Subtopic: "no-regroup", Question: "What is 4 + 4?", CorrectAnswer: "8"},
			},
			Exit:        quiz.ExitQuotaReached,
			Diagnostics: quiz.Diagnostics{Requested: 2, Attempts: 2},
		},
	}
}

func TestWriteQuizzesJSON(t *testing.T) {
	q := additionQuiz()
	q.BankErr = errors.New("bank down")

	var out bytes.Buffer
	require.NoError(t, writeQuizzesJSON(&out, []*practice.Quiz{q}))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "quiz-1", got[0]["id"])
	assert.Equal(t, "addition", got[0]["topic"])
	assert.Equal(t, "bank down", got[0]["bank_error"])
	assert.Equal(t, string(quiz.ExitQuotaReached), got[0]["exit"])
	assert.Len(t, got[0]["questions"], 2)
}

func TestGeneratorFactory(t *testing.T) {
	log = logger.Nop()
	ctx := context.Background()

	f, err := generatorFactory(ctx, config.GeneratorNone, nil, 1)
	require.NoError(t, err)
	assert.Nil(t, f)

	_, err = generatorFactory(ctx, "dice", nil, 1)
	assert.Error(t, err)

	f, err = generatorFactory(ctx, config.GeneratorArithmetic, nil, 7)
	require.NoError(t, err)
	require.NotNil(t, f)

	topic, err := topics.Get("addition")
	require.NoError(t, err)
	c, err := f(topic, nil).Generate(ctx, 0.5, []string{"regroup"})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "addition", c.Topic)
	assert.Equal(t, "regroup", c.Subtopic)
	assert.NotEmpty(t, c.CorrectAnswer)
}

func TestBankEntryValidate(t *testing.T) {
	base := bankEntry{Topic: "addition", Subtopic: "regroup", Question: "What is 19 + 5?", CorrectAnswer: "24", Difficulty: 0.3}

	tests := []struct {
		name    string
		mutate  func(e *bankEntry)
		wantErr bool
	}{
		{"valid", func(e *bankEntry) {}, false},
		{"untagged subtopic", func(e *bankEntry) { e.Subtopic = "" }, false},
		{"unknown topic", func(e *bankEntry) { e.Topic = "calculus" }, true},
		{"foreign subtopic", func(e *bankEntry) { e.Subtopic = "long-division" }, true},
		{"missing question", func(e *bankEntry) { e.Question = "  " }, true},
		{"missing answer", func(e *bankEntry) { e.CorrectAnswer = "" }, true},
		{"difficulty above one", func(e *bankEntry) { e.Difficulty = 1.5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			tt.mutate(&e)
			err := e.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
