// Package stats computes dashboard aggregates over the record set.
// Nothing is cached: every call recomputes from the records it is given.
package stats

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/hpungsan/kudos/internal/feedback"
)

// TrendThreshold is the mean rating at or above which the trend reads as up.
const TrendThreshold = 3.5

// DayCount is the number of submissions on one calendar date.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// Snapshot is the aggregate view of a record set.
type Snapshot struct {
	Count int `json:"count"`

	// MeanRating is NaN when Count is 0; check HasMean before using it.
	MeanRating float64 `json:"-"`
	HasMean    bool    `json:"has_mean"`

	PositiveCount int     `json:"positive_count"`
	NegativeCount int     `json:"negative_count"`
	PositivePct   float64 `json:"positive_pct"`
	NegativePct   float64 `json:"negative_pct"`

	// Histogram always has keys 1 through 5.
	Histogram map[int]int `json:"histogram"`

	// Timeline is ordered by date ascending.
	Timeline []DayCount `json:"timeline"`

	// PendingAnalysis counts records with no stored analysis.
	PendingAnalysis int `json:"pending_analysis"`
}

// TrendUp reports whether the mean rating meets TrendThreshold.
// An empty set never trends up.
func (s Snapshot) TrendUp() bool {
	return s.HasMean && s.MeanRating >= TrendThreshold
}

// MarshalJSON renders an undefined mean as null.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	type plain Snapshot
	var mean *float64
	if s.HasMean {
		m := s.MeanRating
		mean = &m
	}
	return json.Marshal(struct {
		plain
		MeanRating *float64 `json:"mean_rating"`
		TrendUp    bool     `json:"trend_up"`
	}{plain(s), mean, s.TrendUp()})
}

// Aggregate computes a Snapshot from records.
func Aggregate(records []feedback.Record) Snapshot {
	s := Snapshot{
		Count:      len(records),
		MeanRating: math.NaN(),
		Histogram:  map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		Timeline:   []DayCount{},
	}
	if len(records) == 0 {
		return s
	}

	var sum int
	days := map[string]int{}
	for i := range records {
		r := &records[i]
		sum += r.Rating
		switch feedback.BucketFor(r.Rating) {
		case feedback.Positive:
			s.PositiveCount++
		case feedback.Negative:
			s.NegativeCount++
		}
		if r.Rating >= 1 && r.Rating <= 5 {
			s.Histogram[r.Rating]++
		}
		if !r.HasAnalysis() {
			s.PendingAnalysis++
		}
		days[dateKey(r.Timestamp)]++
	}

	n := float64(len(records))
	s.MeanRating = float64(sum) / n
	s.HasMean = true
	s.PositivePct = 100 * float64(s.PositiveCount) / n
	s.NegativePct = 100 * float64(s.NegativeCount) / n

	for d, c := range days {
		s.Timeline = append(s.Timeline, DayCount{Date: d, Count: c})
	}
	// YYYY-MM-DD sorts lexically in date order.
	sort.Slice(s.Timeline, func(i, j int) bool { return s.Timeline[i].Date < s.Timeline[j].Date })

	return s
}

// dateKey is the calendar date of t in its own location.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
