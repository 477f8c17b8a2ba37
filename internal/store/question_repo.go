package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/adaptiq/internal/quiz"
)

type questionRepo struct {
	db *sql.DB
}

var questionColumns = []string{
	"id", "topic", "subtopic", "grade", "question", "correct_answer",
	"options", "explanation", "hint", "difficulty", "created_at",
}

func (r *questionRepo) Add(ctx context.Context, q BankQuestion) (BankQuestion, bool, error) {
	if q.Topic == "" || q.Question == "" || q.CorrectAnswer == "" {
		return q, false, fmt.Errorf("bank question needs topic, question and answer")
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	if q.Options == nil {
		q.Options = []string{}
	}
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return q, false, fmt.Errorf("encode options: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(bankQuestionsTable).
		Columns(append(questionColumns, "signature")...).
		Values(
			q.ID, q.Topic, q.Subtopic, q.Grade, q.Question, q.CorrectAnswer,
			string(opts), q.Explanation, q.Hint, q.Difficulty, toMillis(q.CreatedAt),
			quiz.Signature(q.Question, q.CorrectAnswer),
		).
		OnConflict(entsql.DoNothing()).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return q, false, fmt.Errorf("insert bank question: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return q, false, fmt.Errorf("rows affected: %w", err)
	}
	return q, n > 0, nil
}

func (r *questionRepo) Query(ctx context.Context, q QuestionQuery) ([]BankQuestion, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(questionColumns...).
		From(entsql.Table(bankQuestionsTable)).
		Where(entsql.EQ("topic", q.Topic))
	if q.Grade > 0 {
		sel.Where(entsql.EQ("grade", q.Grade))
	}
	if len(q.Subtopics) > 0 {
		subs := make([]any, len(q.Subtopics))
		for i, s := range q.Subtopics {
			subs[i] = s
		}
		// Untagged questions are eligible everywhere.
		sel.Where(entsql.Or(entsql.In("subtopic", subs...), entsql.EQ("subtopic", "")))
	}
	sel.OrderBy("created_at", "id")
	if q.Limit > 0 {
		sel.Limit(q.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bank questions: %w", err)
	}
	defer rows.Close()

	var out []BankQuestion
	for rows.Next() {
		var (
			bq        BankQuestion
			opts      string
			createdMs int64
		)
		if err := rows.Scan(
			&bq.ID, &bq.Topic, &bq.Subtopic, &bq.Grade, &bq.Question, &bq.CorrectAnswer,
			&opts, &bq.Explanation, &bq.Hint, &bq.Difficulty, &createdMs,
		); err != nil {
			return nil, fmt.Errorf("scan bank question: %w", err)
		}
		if err := json.Unmarshal([]byte(opts), &bq.Options); err != nil {
			return nil, fmt.Errorf("decode options for %s: %w", bq.ID, err)
		}
		bq.CreatedAt = fromMillis(createdMs)
		out = append(out, bq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bank questions: %w", err)
	}
	return out, nil
}

func (r *questionRepo) Count(ctx context.Context, topic string) (int, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(entsql.Count("*")).
		From(entsql.Table(bankQuestionsTable))
	if topic != "" {
		sel.Where(entsql.EQ("topic", topic))
	}
	query, args := sel.Query()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bank questions: %w", err)
	}
	return n, nil
}
