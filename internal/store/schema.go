package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	answerRecordsTable  = "answer_records"
	bankQuestionsTable  = "bank_questions"
	llmEventsTable      = "llm_request_events"
	globalSequenceTable = "global_sequence"
)

var (
	answerRecordsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "question_id", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString},
		{Name: "subtopic", Type: field.TypeString, Default: ""},
		{Name: "signature", Type: field.TypeString, Default: ""},
		{Name: "is_correct", Type: field.TypeBool},
		{Name: "time_spent_ms", Type: field.TypeFloat64, Default: 0},
		// Unix milliseconds; 0 when the source had no timestamp.
		{Name: "created_at", Type: field.TypeInt64},
	}
	answerRecordsTableDef = &schema.Table{
		Name:       answerRecordsTable,
		Columns:    answerRecordsColumns,
		PrimaryKey: []*schema.Column{answerRecordsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "answerrecord_topic_question_id_created_at",
				Unique:  true,
				Columns: []*schema.Column{answerRecordsColumns[3], answerRecordsColumns[2], answerRecordsColumns[8]},
			},
			{Name: "answerrecord_created_at", Columns: []*schema.Column{answerRecordsColumns[8]}},
		},
	}

	bankQuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString},
		{Name: "subtopic", Type: field.TypeString, Default: ""},
		{Name: "grade", Type: field.TypeInt, Default: 0},
		{Name: "question", Type: field.TypeString},
		{Name: "correct_answer", Type: field.TypeString},
		// JSON-encoded []string.
		{Name: "options", Type: field.TypeString, Default: "[]"},
		{Name: "explanation", Type: field.TypeString, Default: ""},
		{Name: "hint", Type: field.TypeString, Default: ""},
		{Name: "difficulty", Type: field.TypeFloat64, Default: 0.5},
		{Name: "signature", Type: field.TypeString, Unique: true},
		{Name: "created_at", Type: field.TypeInt64},
	}
	bankQuestionsTableDef = &schema.Table{
		Name:       bankQuestionsTable,
		Columns:    bankQuestionsColumns,
		PrimaryKey: []*schema.Column{bankQuestionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "bankquestion_topic_grade", Columns: []*schema.Column{bankQuestionsColumns[1], bankQuestionsColumns[3]}},
		},
	}

	llmEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Default: ""},
		{Name: "response_body", Type: field.TypeString, Default: ""},
	}
	llmEventsTableDef = &schema.Table{
		Name:       llmEventsTable,
		Columns:    llmEventsColumns,
		PrimaryKey: []*schema.Column{llmEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmEventsColumns[5]}},
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{llmEventsColumns[2]}},
		},
	}

	globalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	globalSequenceTableDef = &schema.Table{
		Name:       globalSequenceTable,
		Columns:    globalSequenceColumns,
		PrimaryKey: []*schema.Column{globalSequenceColumns[0]},
	}

	tables = []*schema.Table{
		answerRecordsTableDef,
		bankQuestionsTableDef,
		llmEventsTableDef,
		globalSequenceTableDef,
	}
)

// migrate creates or updates every table. Columns are never dropped.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	return m.Create(ctx, tables...)
}
