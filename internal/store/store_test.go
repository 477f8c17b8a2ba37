package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/adaptiq/internal/history"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here. It is tested with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestFileDatabaseUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adaptiq.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adaptiq.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.HistoryRepo().Append(ctx, history.AnsweredRecord{
		QuestionID: "q1", Topic: "addition", TimeSpentMs: 1000, CreatedAt: time.UnixMilli(1000),
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	recs, err := s.HistoryRepo().List(ctx, HistoryQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("got %d records after reopen, want 1", len(recs))
	}
}

func TestWithPragmas(t *testing.T) {
	got := withPragmas("file:x.db?mode=ro")
	if !strings.HasPrefix(got, "file:x.db?mode=ro&_pragma=") {
		t.Errorf("withPragmas = %q", got)
	}
	got = withPragmas("x.db")
	if !strings.HasPrefix(got, "x.db?_pragma=journal_mode(WAL)&") {
		t.Errorf("withPragmas = %q", got)
	}
}

func TestHistoryAppendAndList(t *testing.T) {
	s := openTestStore(t)
	repo := s.HistoryRepo()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	recs := []history.AnsweredRecord{
		{QuestionID: "1", Topic: "addition", IsCorrect: true, TimeSpentMs: 1200, CreatedAt: base},
		{QuestionID: "2", Topic: "fractions", IsCorrect: false, TimeSpentMs: 4500.5, CreatedAt: base.Add(time.Minute), Subtopic: "compare", Signature: "1/2 or 1/3|||1/2"},
		{QuestionID: "3", Topic: "addition", IsCorrect: false, TimeSpentMs: 800, CreatedAt: base.Add(2 * time.Minute)},
	}

	n, err := repo.Append(ctx, recs...)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if n != 3 {
		t.Fatalf("inserted = %d, want 3", n)
	}

	all, err := repo.List(ctx, HistoryQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	for i := range recs {
		got := all[i]
		if !got.CreatedAt.Equal(recs[i].CreatedAt) {
			t.Errorf("record %d CreatedAt = %v, want %v", i, got.CreatedAt, recs[i].CreatedAt)
		}
		got.CreatedAt = recs[i].CreatedAt
		if got != recs[i] {
			t.Errorf("record %d = %+v, want %+v", i, got, recs[i])
		}
	}

	add, err := repo.List(ctx, HistoryQuery{Topic: "addition"})
	if err != nil {
		t.Fatalf("list topic: %v", err)
	}
	if len(add) != 2 || add[0].QuestionID != "1" || add[1].QuestionID != "3" {
		t.Errorf("topic filter = %+v", add)
	}

	recent, err := repo.List(ctx, HistoryQuery{Limit: 2})
	if err != nil {
		t.Fatalf("list limit: %v", err)
	}
	if len(recent) != 2 || recent[0].QuestionID != "2" || recent[1].QuestionID != "3" {
		t.Errorf("limit keeps most recent, oldest first: %+v", recent)
	}

	since, err := repo.List(ctx, HistoryQuery{Since: base.Add(time.Minute)})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(since) != 2 {
		t.Errorf("since filter = %d records, want 2", len(since))
	}

	topics, err := repo.Topics(ctx)
	if err != nil {
		t.Fatalf("topics: %v", err)
	}
	if strings.Join(topics, ",") != "addition,fractions" {
		t.Errorf("topics = %v", topics)
	}
}

func TestHistoryAppendSkipsDuplicates(t *testing.T) {
	s := openTestStore(t)
	repo := s.HistoryRepo()
	ctx := context.Background()

	rec := history.AnsweredRecord{QuestionID: "1", Topic: "addition", TimeSpentMs: 1, CreatedAt: time.UnixMilli(5000)}
	if _, err := repo.Append(ctx, rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	// Same question ID in a different topic is a different record.
	other := rec
	other.Topic = "fractions"
	n, err := repo.Append(ctx, rec, other)
	if err != nil {
		t.Fatalf("append again: %v", err)
	}
	if n != 1 {
		t.Errorf("inserted = %d, want 1", n)
	}
}

func TestHistoryAppendLargeBatch(t *testing.T) {
	s := openTestStore(t)
	repo := s.HistoryRepo()
	ctx := context.Background()

	recs := make([]history.AnsweredRecord, insertBatch*2+7)
	for i := range recs {
		recs[i] = history.AnsweredRecord{
			QuestionID: fmt.Sprint(i), Topic: "addition", TimeSpentMs: 1000, CreatedAt: time.UnixMilli(int64(i + 1)),
		}
	}
	n, err := repo.Append(ctx, recs...)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if n != len(recs) {
		t.Errorf("inserted = %d, want %d", n, len(recs))
	}
}

func TestHistoryImportKeylessUndatedRecords(t *testing.T) {
	s := openTestStore(t)
	repo := s.HistoryRepo()
	ctx := context.Background()

	input := `[
		{"topic": "fractions", "isCorrect": true, "timeSpentMs": 1200},
		{"topic": "fractions", "isCorrect": false, "timeSpentMs": 1200},
		{"topic": "fractions", "isCorrect": true, "timeSpentMs": 3400}
	]`
	res, err := history.Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	n, err := repo.Append(ctx, res.Records...)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if n != 3 {
		t.Errorf("inserted = %d, want 3", n)
	}

	// Importing the same file again adds nothing.
	res, err = history.Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("decode again: %v", err)
	}
	if n, err = repo.Append(ctx, res.Records...); err != nil || n != 0 {
		t.Errorf("re-import inserted = %d, err = %v; want 0, nil", n, err)
	}

	recs, err := repo.List(ctx, HistoryQuery{Topic: "fractions"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("stored = %d, want 3", len(recs))
	}
}

func TestHistoryZeroTimeRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.HistoryRepo()
	ctx := context.Background()

	if _, err := repo.Append(ctx, history.AnsweredRecord{QuestionID: "x", Topic: "t"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	recs, err := repo.List(ctx, HistoryQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 || !recs[0].CreatedAt.IsZero() {
		t.Errorf("got %+v, want zero CreatedAt", recs)
	}
}

func TestQuestionAddQueryCount(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuestionRepo()
	ctx := context.Background()

	add := func(q BankQuestion) BankQuestion {
		t.Helper()
		got, ok, err := repo.Add(ctx, q)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if !ok {
			t.Fatalf("add %q reported duplicate", q.Question)
		}
		return got
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := add(BankQuestion{Topic: "fractions", Subtopic: "compare", Grade: 5, Question: "Which is larger, 1/2 or 1/3?", CorrectAnswer: "1/2", Options: []string{"1/2", "1/3"}, Difficulty: 0.4, CreatedAt: base})
	add(BankQuestion{Topic: "fractions", Subtopic: "equivalent", Grade: 5, Question: "2/4 = ?/2", CorrectAnswer: "1", CreatedAt: base.Add(time.Second)})
	add(BankQuestion{Topic: "fractions", Grade: 4, Question: "Untagged", CorrectAnswer: "x", CreatedAt: base.Add(2 * time.Second)})
	add(BankQuestion{Topic: "addition", Grade: 3, Question: "1+1", CorrectAnswer: "2"})

	if a.ID == "" {
		t.Error("expected generated ID")
	}

	if _, ok, err := repo.Add(ctx, BankQuestion{Topic: "fractions", Question: "Which is larger, 1/2 or 1/3?", CorrectAnswer: "1/2"}); err != nil || ok {
		t.Errorf("duplicate add: ok=%v err=%v", ok, err)
	}

	if _, _, err := repo.Add(ctx, BankQuestion{Topic: "fractions"}); err == nil {
		t.Error("expected error for incomplete question")
	}

	all, err := repo.Query(ctx, QuestionQuery{Topic: "fractions"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].ID != a.ID || len(all[0].Options) != 2 || all[0].Difficulty != 0.4 {
		t.Errorf("first = %+v", all[0])
	}
	if all[1].Options == nil {
		t.Error("options should decode to an empty slice")
	}

	graded, err := repo.Query(ctx, QuestionQuery{Topic: "fractions", Grade: 5})
	if err != nil {
		t.Fatalf("query grade: %v", err)
	}
	if len(graded) != 2 {
		t.Errorf("grade filter = %d, want 2", len(graded))
	}

	sub, err := repo.Query(ctx, QuestionQuery{Topic: "fractions", Subtopics: []string{"compare"}})
	if err != nil {
		t.Fatalf("query subtopic: %v", err)
	}
	if len(sub) != 2 || sub[0].Subtopic != "compare" || sub[1].Subtopic != "" {
		t.Errorf("subtopic filter = %+v", sub)
	}

	limited, err := repo.Query(ctx, QuestionQuery{Topic: "fractions", Limit: 1})
	if err != nil {
		t.Fatalf("query limit: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit = %d, want 1", len(limited))
	}

	if n, _ := repo.Count(ctx, "fractions"); n != 3 {
		t.Errorf("Count(fractions) = %d, want 3", n)
	}
	if n, _ := repo.Count(ctx, ""); n != 4 {
		t.Errorf("Count() = %d, want 4", n)
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-x", Purpose: "question-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true, RequestBody: "[user]\nhi"},
		{Provider: "anthropic", Model: "claude-x", Purpose: "question-gen", InputTokens: 120, OutputTokens: 30, LatencyMs: 400, Success: false, ErrorMessage: "boom"},
		{Provider: "openai", Model: "gpt-y", Purpose: "explain", InputTokens: 10, OutputTokens: 5, LatencyMs: 100, Success: true},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Purpose != "explain" || got[0].Sequence <= got[1].Sequence {
		t.Errorf("expected newest first, got %+v", got[0])
	}

	filtered, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "question-gen", Limit: 1})
	if err != nil {
		t.Fatalf("query purpose: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ErrorMessage != "boom" || filtered[0].Success {
		t.Errorf("filtered = %+v", filtered)
	}

	one, err := repo.GetLLMEvent(ctx, got[2].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if one == nil || one.RequestBody != "[user]\nhi" || one.Timestamp.IsZero() {
		t.Errorf("get = %+v", one)
	}
	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("missing event: %v, %v", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("purposes = %d, want 2", len(byPurpose))
	}
	qg := byPurpose[0]
	if qg.Purpose != "question-gen" || qg.Calls != 2 || qg.InputTokens != 220 || qg.OutputTokens != 80 || qg.AvgLatencyMs != 300 {
		t.Errorf("question-gen usage = %+v", qg)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "claude-x" {
		t.Errorf("model usage = %+v", byModel)
	}
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.HistoryRepo().Append(ctx,
		history.AnsweredRecord{QuestionID: "a", Topic: "t", CreatedAt: time.UnixMilli(1)},
		history.AnsweredRecord{QuestionID: "b", Topic: "t", CreatedAt: time.UnixMilli(2)},
	); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: "x", Success: true}); err != nil {
		t.Fatalf("append event: %v", err)
	}

	events, err := s.EventRepo().QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if events[0].Sequence != 3 {
		t.Errorf("event sequence = %d, want 3", events[0].Sequence)
	}
}
