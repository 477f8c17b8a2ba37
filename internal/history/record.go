// Package history defines the canonical answered-question record consumed
// by the complexity engine and the adapters that produce it from the
// loosely shaped records older clients stored.
package history

import (
	"fmt"
	"time"
)

// AnsweredRecord is one answered question. Records are immutable once
// built; QuestionID is not unique across topics, so consumers join on
// (Topic, QuestionID, CreatedAt).
type AnsweredRecord struct {
	QuestionID  string
	Topic       string
	IsCorrect   bool
	TimeSpentMs float64
	CreatedAt   time.Time

	// Subtopic is optional; empty when the source did not track it.
	Subtopic string

	// Signature is the question's dedup key when known (see quiz.Signature).
	Signature string
}

// Key identifies a record for joins between derived tables.
type Key struct {
	Topic      string
	QuestionID string
	CreatedAt  int64 // unix nanoseconds
}

// KeyOf returns the join key for r.
func KeyOf(r AnsweredRecord) Key {
	var ns int64
	if !r.CreatedAt.IsZero() {
		ns = r.CreatedAt.UnixNano()
	}
	return Key{Topic: r.Topic, QuestionID: r.QuestionID, CreatedAt: ns}
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s@%d", k.Topic, k.QuestionID, k.CreatedAt)
}

// ByTopic groups records by topic, preserving input order within a topic.
func ByTopic(records []AnsweredRecord) map[string][]AnsweredRecord {
	groups := make(map[string][]AnsweredRecord)
	for _, r := range records {
		groups[r.Topic] = append(groups[r.Topic], r)
	}
	return groups
}

// FilterTopic returns the records belonging to topic.
func FilterTopic(records []AnsweredRecord, topic string) []AnsweredRecord {
	var out []AnsweredRecord
	for _, r := range records {
		if r.Topic == topic {
			out = append(out, r)
		}
	}
	return out
}
