package complexity

import (
	"math"
	"sort"

	"github.com/abhisek/adaptiq/internal/history"
	"github.com/abhisek/adaptiq/internal/stats"
)

// NormalizeTimes maps every record to a [0,1] slowness value relative to
// the median latency of its topic. The median is taken after rejecting
// log-space outliers, so one abandoned tab does not shift a topic's
// baseline. Records sharing a join key share one entry; use Rank when
// such records must be scored individually.
func NormalizeTimes(records []history.AnsweredRecord) map[history.Key]float64 {
	times := normalizeAt(records)
	out := make(map[history.Key]float64, len(records))
	for i, r := range records {
		out[history.KeyOf(r)] = times[i]
	}
	return out
}

// normalizeAt returns the slowness of records[i] at index i.
func normalizeAt(records []history.AnsweredRecord) []float64 {
	byTopic := make(map[string][]int)
	for i, r := range records {
		byTopic[r.Topic] = append(byTopic[r.Topic], i)
	}

	out := make([]float64, len(records))
	for _, idx := range byTopic {
		latencies := make([]float64, len(idx))
		for j, i := range idx {
			latencies[j] = sanitizeLatency(records[i].TimeSpentMs)
		}

		median := topicMedian(latencies)
		for j, i := range idx {
			ratio := math.Min(latencies[j]/median, MaxTimeMultiplier)
			out[i] = stats.Clamp01(ratio / MaxTimeMultiplier)
		}
	}
	return out
}

// topicMedian returns the median of the inlier latencies, or 1 when there
// are none.
func topicMedian(latencies []float64) float64 {
	if len(latencies) == 0 {
		return 1
	}

	kept := latencies
	if len(latencies) > 2 {
		kept = rejectLogOutliers(latencies)
	}

	sorted := append([]float64(nil), kept...)
	sort.Float64s(sorted)

	median := stats.Percentile(sorted, 0.5)
	if median < MinLatencyMs {
		return 1
	}
	return median
}

// rejectLogOutliers keeps samples whose log-latency lies within
// OutlierStdDevs of the mean. Falls back to the input if nothing survives.
func rejectLogOutliers(latencies []float64) []float64 {
	logs := make([]float64, len(latencies))
	for i, l := range latencies {
		logs[i] = math.Log(l)
	}
	s := stats.MeanVariance(logs)
	limit := OutlierStdDevs * s.StdDev

	kept := make([]float64, 0, len(latencies))
	for i, l := range latencies {
		if math.Abs(logs[i]-s.Mean) <= limit {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		return latencies
	}
	return kept
}

func sanitizeLatency(ms float64) float64 {
	switch {
	case math.IsNaN(ms) || ms < MinLatencyMs:
		return MinLatencyMs
	case math.IsInf(ms, 1):
		return math.MaxFloat64
	}
	return ms
}
