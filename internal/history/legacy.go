package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LegacyRecord is the loosely shaped answer record written by older
// clients. Field names drifted over time, so several aliases are accepted.
type LegacyRecord struct {
	ID         string `json:"id,omitempty"`
	QuestionID string `json:"questionId,omitempty"`
	Topic      string `json:"topic"`
	Subtopic   string `json:"subtopic,omitempty"`
	Signature  string `json:"signature,omitempty"`

	IsCorrect *bool `json:"isCorrect,omitempty"`
	Correct   *bool `json:"correct,omitempty"`

	TimeSpentMs *float64 `json:"timeSpentMs,omitempty"`
	// TimeSpent is in seconds.
	TimeSpent *float64 `json:"timeSpent,omitempty"`

	CreatedAt Timestamp `json:"createdAt,omitempty"`
	Timestamp Timestamp `json:"timestamp,omitempty"`
	Date      Timestamp `json:"date,omitempty"`
}

// Timestamp accepts RFC 3339 strings, plain dates and unix epoch
// milliseconds (number or numeric string).
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := parseTimeString(s)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	}

	var ms float64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	t.Time = time.UnixMilli(int64(ms)).UTC()
	return nil
}

func parseTimeString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", time.DateOnly} {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ErrIncomplete is returned by Adapt for records missing a topic or a
// correctness flag.
type ErrIncomplete struct {
	Field string
}

func (e *ErrIncomplete) Error() string {
	return fmt.Sprintf("legacy record missing %s", e.Field)
}

// Adapt converts a legacy record to the canonical shape.
//
// Question ID precedence: questionId, id, signature. Time precedence:
// createdAt, timestamp, date. Latency prefers timeSpentMs over timeSpent
// (seconds); negative latencies become 0.
func Adapt(lr LegacyRecord) (AnsweredRecord, error) {
	topic := strings.TrimSpace(lr.Topic)
	if topic == "" {
		return AnsweredRecord{}, &ErrIncomplete{Field: "topic"}
	}

	var correct bool
	switch {
	case lr.IsCorrect != nil:
		correct = *lr.IsCorrect
	case lr.Correct != nil:
		correct = *lr.Correct
	default:
		return AnsweredRecord{}, &ErrIncomplete{Field: "isCorrect"}
	}

	var spent float64
	switch {
	case lr.TimeSpentMs != nil:
		spent = *lr.TimeSpentMs
	case lr.TimeSpent != nil:
		spent = *lr.TimeSpent * 1000
	}
	if spent < 0 {
		spent = 0
	}

	qid := firstNonEmpty(lr.QuestionID, lr.ID, lr.Signature)

	created := lr.CreatedAt.Time
	if created.IsZero() {
		created = lr.Timestamp.Time
	}
	if created.IsZero() {
		created = lr.Date.Time
	}

	return AnsweredRecord{
		QuestionID:  qid,
		Topic:       topic,
		Subtopic:    strings.TrimSpace(lr.Subtopic),
		Signature:   lr.Signature,
		IsCorrect:   correct,
		TimeSpentMs: spent,
		CreatedAt:   created,
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
