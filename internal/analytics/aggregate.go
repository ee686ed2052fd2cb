// Package analytics computes read-only statistics over student score records:
// class averages, per-test group figures and per-student trends. Every
// function is pure and returns a "no data" value instead of failing on empty
// or malformed input.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/stemsi/testcraft-backend/internal/model"
)

// BandTolerance is the distance in percentage points from a student's
// cumulative average inside which an attempt counts as "near".
const BandTolerance = 5.0

// Band classifies an attempt against the student's cumulative average.
type Band string

const (
	BandAbove Band = "above"
	BandNear  Band = "near"
	BandBelow Band = "below"
)

// GroupStats summarises every attempt at one test.
type GroupStats struct {
	TestID                  string   `json:"test_id"`
	TestTitle               string   `json:"test_title"`
	Participants            int      `json:"participants"`
	AverageScore            *float64 `json:"average_score"`
	AverageQuestionCount    *float64 `json:"average_question_count"`
	AveragePercent          *float64 `json:"average_percent"`
	MostMissedQuestionIndex *int     `json:"most_missed_question_index,omitempty"`
	MostMissedCount         int      `json:"most_missed_count"`
}

// TrendPoint is one attempt on a student's trend chart.
type TrendPoint struct {
	RecordID  string     `json:"record_id"`
	TestID    string     `json:"test_id"`
	Label     string     `json:"label"`
	Percent   float64    `json:"percent"`
	Band      Band       `json:"color_class"`
	Correct   int        `json:"correct"`
	Total     int        `json:"total"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Trend is a student's attempts in one class in time order.
type Trend struct {
	StudentIdentifier string       `json:"student_identifier"`
	ClassID           string       `json:"class_id"`
	CumulativeAverage float64      `json:"cumulative_average"`
	Points            []TrendPoint `json:"points"`
}

// valid reports whether a record can take part in score aggregates.
func valid(r model.ScoreRecord) bool {
	return r.Score != nil && len(r.QuestionTimesMs) > 0 && r.ScoreInRange()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ptr[T any](v T) *T {
	return &v
}

// ClassAveragePercent returns the share of correct answers over all valid
// records, in percent with two decimals, or nil when no record qualifies.
func ClassAveragePercent(records []model.ScoreRecord) *float64 {
	var scoreSum, questionSum int
	for _, r := range records {
		if !valid(r) {
			continue
		}
		scoreSum += *r.Score
		questionSum += len(r.QuestionTimesMs)
	}
	if questionSum == 0 {
		return nil
	}
	return ptr(round2(float64(scoreSum) / float64(questionSum) * 100))
}

// ComputeGroupStats aggregates the attempts at testID. Participants counts
// every record for the test; the averages and the miss tally only use valid
// records. The most missed question is the one answered wrongly by the most
// records, ties going to the lowest index. It is left nil when nobody missed
// anything.
func ComputeGroupStats(records []model.ScoreRecord, testID string) GroupStats {
	stats := GroupStats{TestID: testID}

	var validCount, scoreSum, questionSum int
	misses := make(map[int]int)
	for _, r := range records {
		if r.TestID != testID {
			continue
		}
		stats.Participants++
		if stats.TestTitle == "" {
			stats.TestTitle = r.TestTitle
		}
		if !valid(r) {
			continue
		}
		validCount++
		scoreSum += *r.Score
		questionSum += len(r.QuestionTimesMs)
		for _, d := range r.AnswerDetails {
			if d.Missed() {
				misses[d.QuestionIndex]++
			}
		}
	}
	if stats.TestTitle == "" {
		stats.TestTitle = testID
	}

	if validCount > 0 {
		stats.AverageScore = ptr(round2(float64(scoreSum) / float64(validCount)))
		stats.AverageQuestionCount = ptr(round2(float64(questionSum) / float64(validCount)))
	}
	if questionSum > 0 {
		stats.AveragePercent = ptr(round2(float64(scoreSum) / float64(questionSum) * 100))
	}

	if idx, count, ok := mostMissed(misses); ok {
		stats.MostMissedQuestionIndex = ptr(idx)
		stats.MostMissedCount = count
	}
	return stats
}

// mostMissed finds the highest tally. An empty tally has a maximum of 0 and no index.
func mostMissed(tally map[int]int) (index, count int, ok bool) {
	indices := make([]int, 0, len(tally))
	for idx := range tally {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	for _, idx := range indices {
		if tally[idx] > count {
			index, count, ok = idx, tally[idx], true
		}
	}
	return index, count, ok
}

// StudentTrend lists the student's attempts in the class oldest first, each
// classified against the mean of all the listed percentages. Records without
// a timestamp sort first. Records without a score, or with a score outside
// the question count, are left out.
func StudentTrend(records []model.ScoreRecord, studentIdentifier, classID string) Trend {
	trend := Trend{
		StudentIdentifier: studentIdentifier,
		ClassID:           classID,
		Points:            []TrendPoint{},
	}

	var attempts []model.ScoreRecord
	for _, r := range records {
		if r.StudentIdentifier == studentIdentifier && r.ClassID == classID && r.Score != nil && r.ScoreInRange() {
			attempts = append(attempts, r)
		}
	}
	if len(attempts) == 0 {
		return trend
	}

	sort.SliceStable(attempts, func(i, j int) bool {
		return unixMilli(attempts[i].Timestamp) < unixMilli(attempts[j].Timestamp)
	})

	percents := make([]float64, len(attempts))
	var sum float64
	for i, r := range attempts {
		percents[i] = attemptPercent(r)
		sum += percents[i]
	}
	avg := sum / float64(len(percents))
	trend.CumulativeAverage = round2(avg)

	for i, r := range attempts {
		trend.Points = append(trend.Points, TrendPoint{
			RecordID:  r.ID,
			TestID:    r.TestID,
			Label:     label(r),
			Percent:   round2(percents[i]),
			Band:      classify(percents[i], avg),
			Correct:   *r.Score,
			Total:     r.QuestionCount(),
			Timestamp: r.Timestamp,
		})
	}
	return trend
}

func attemptPercent(r model.ScoreRecord) float64 {
	total := r.QuestionCount()
	if total == 0 || r.Score == nil {
		return 0
	}
	return float64(*r.Score) / float64(total) * 100
}

func classify(percent, avg float64) Band {
	switch {
	case percent >= avg+BandTolerance:
		return BandAbove
	case percent <= avg-BandTolerance:
		return BandBelow
	default:
		return BandNear
	}
}

func unixMilli(ts *time.Time) int64 {
	if ts == nil {
		return 0
	}
	return ts.UnixMilli()
}

func label(r model.ScoreRecord) string {
	if r.TestTitle != "" {
		return r.TestTitle
	}
	return "Test " + r.ID
}
