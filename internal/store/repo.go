package store

import (
	"context"
	"time"

	"github.com/abhisek/adaptiq/internal/history"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact match when non-empty
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// HistoryQuery filters answer history.
type HistoryQuery struct {
	Topic string    // exact match when non-empty
	Since time.Time // created_at >= Since when non-zero

	// Limit keeps only the most recent records (0 = unlimited). Results are
	// always returned oldest first.
	Limit int
}

// HistoryRepo stores the learner's answer history.
type HistoryRepo interface {
	// Append stores records, skipping any already present (same topic,
	// question ID and time). It returns how many were inserted.
	Append(ctx context.Context, records ...history.AnsweredRecord) (int, error)

	// List returns matching records ordered by CreatedAt ascending.
	List(ctx context.Context, q HistoryQuery) ([]history.AnsweredRecord, error)

	// Topics returns the distinct topics with history, sorted.
	Topics(ctx context.Context) ([]string, error)
}

// BankQuestion is a stored question bank entry.
type BankQuestion struct {
	ID            string
	Topic         string
	Subtopic      string
	Grade         int
	Question      string
	CorrectAnswer string
	Options       []string
	Explanation   string
	Hint          string
	Difficulty    float64
	CreatedAt     time.Time
}

// QuestionQuery filters the question bank.
type QuestionQuery struct {
	Topic     string
	Grade     int      // 0 = any grade
	Subtopics []string // empty = any subtopic
	Limit     int      // 0 = unlimited
}

// QuestionRepo manages the question bank.
type QuestionRepo interface {
	// Add stores q, assigning an ID when empty. It reports false without
	// error when a question with the same text and answer already exists.
	Add(ctx context.Context, q BankQuestion) (BankQuestion, bool, error)

	// Query returns matching questions, oldest first.
	Query(ctx context.Context, q QuestionQuery) ([]BankQuestion, error)

	// Count returns the number of questions for topic, or all questions
	// when topic is empty.
	Count(ctx context.Context, topic string) (int, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request.
type LLMRequestEvent struct {
	LLMRequestEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
}

// LLMUsage aggregates requests for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns the event with id, or nil if none exists.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates usage per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
