package complexity

import (
	"sort"
	"time"

	"github.com/abhisek/adaptiq/internal/history"
	"github.com/abhisek/adaptiq/internal/stats"
)

// TopicAggregate summarizes a learner's recent difficulty on one topic.
type TopicAggregate struct {
	Topic          string
	AvgComplexity  float64
	Count          int
	LastAnsweredAt time.Time
}

// PerTopic ranks records and aggregates them per topic.
func PerTopic(records []history.AnsweredRecord) []TopicAggregate {
	return Aggregate(Rank(records))
}

// Aggregate rolls already-ranked records into per-topic averages over the
// first HistoryWindow entries of each topic. Because the input is ranked,
// the window favours hard and recent items rather than the last N
// chronologically. Topics are ordered most recently practiced first;
// topics without timestamps sort last.
func Aggregate(ranked []ScoredRecord) []TopicAggregate {
	type acc struct {
		sum   float64
		count int
		last  time.Time
	}

	byTopic := make(map[string]*acc)
	for _, r := range ranked {
		a, ok := byTopic[r.Topic]
		if !ok {
			a = &acc{}
			byTopic[r.Topic] = a
		}
		if r.CreatedAt.After(a.last) {
			a.last = r.CreatedAt
		}
		if a.count < HistoryWindow {
			a.sum += r.ComplexityScore
			a.count++
		}
	}

	out := make([]TopicAggregate, 0, len(byTopic))
	for topic, a := range byTopic {
		avg := 0.0
		if a.count > 0 {
			avg = a.sum / float64(a.count)
		}
		out = append(out, TopicAggregate{
			Topic:          topic,
			AvgComplexity:  stats.Clamp01(avg),
			Count:          a.count,
			LastAnsweredAt: a.last,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].LastAnsweredAt, out[j].LastAnsweredAt
		switch {
		case ti.IsZero() != tj.IsZero():
			return !ti.IsZero()
		case !ti.Equal(tj):
			return ti.After(tj)
		}
		return out[i].Topic < out[j].Topic
	})

	return out
}

// Find returns the aggregate for topic.
func Find(aggs []TopicAggregate, topic string) (TopicAggregate, bool) {
	for _, a := range aggs {
		if a.Topic == topic {
			return a, true
		}
	}
	return TopicAggregate{}, false
}
