package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/adaptiq/internal/history"
)

// insertBatch bounds rows per INSERT to stay under SQLite's variable limit.
const insertBatch = 500

type historyRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var historyColumns = []string{
	"sequence", "question_id", "topic", "subtopic", "signature",
	"is_correct", "time_spent_ms", "created_at",
}

func (r *historyRepo) Append(ctx context.Context, records ...history.AnsweredRecord) (int, error) {
	inserted := 0
	for batch := range slices.Chunk(records, insertBatch) {
		first, err := r.seq.Reserve(ctx, len(batch))
		if err != nil {
			return inserted, err
		}

		ib := entsql.Dialect(dialect.SQLite).Insert(answerRecordsTable).Columns(historyColumns...)
		for i, rec := range batch {
			ib.Values(
				first+int64(i),
				rec.QuestionID,
				rec.Topic,
				rec.Subtopic,
				rec.Signature,
				rec.IsCorrect,
				rec.TimeSpentMs,
				toMillis(rec.CreatedAt),
			)
		}
		query, args := ib.OnConflict(entsql.DoNothing()).Query()

		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, fmt.Errorf("insert answer records: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("rows affected: %w", err)
		}
		inserted += int(n)
	}
	return inserted, nil
}

func (r *historyRepo) List(ctx context.Context, q HistoryQuery) ([]history.AnsweredRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(historyColumns[1:]...).
		From(entsql.Table(answerRecordsTable))
	if q.Topic != "" {
		sel.Where(entsql.EQ("topic", q.Topic))
	}
	if !q.Since.IsZero() {
		sel.Where(entsql.GTE("created_at", toMillis(q.Since)))
	}
	sel.OrderBy(entsql.Desc("created_at"), entsql.Desc("sequence"))
	if q.Limit > 0 {
		sel.Limit(q.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answer records: %w", err)
	}
	defer rows.Close()

	var out []history.AnsweredRecord
	for rows.Next() {
		var (
			rec       history.AnsweredRecord
			createdMs int64
		)
		if err := rows.Scan(
			&rec.QuestionID,
			&rec.Topic,
			&rec.Subtopic,
			&rec.Signature,
			&rec.IsCorrect,
			&rec.TimeSpentMs,
			&createdMs,
		); err != nil {
			return nil, fmt.Errorf("scan answer record: %w", err)
		}
		rec.CreatedAt = fromMillis(createdMs)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answer records: %w", err)
	}

	slices.Reverse(out)
	return out, nil
}

func (r *historyRepo) Topics(ctx context.Context) ([]string, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("topic").
		Distinct().
		From(entsql.Table(answerRecordsTable)).
		OrderBy("topic").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
