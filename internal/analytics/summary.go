package analytics

import (
	"strconv"

	"github.com/stemsi/testcraft-backend/internal/model"
)

const notAvailable = "N/A"

// TestRef identifies a test that appears in a set of records.
type TestRef struct {
	TestID    string `json:"test_id"`
	TestTitle string `json:"test_title"`
}

// AttemptRow is one question of an attempt as shown in the attempt breakdown.
type AttemptRow struct {
	QuestionNumber int    `json:"question_number"`
	TimeSpent      string `json:"time_spent_seconds"`
	SelectedText   string `json:"selected_text"`
	CorrectText    string `json:"correct_text"`
	Correct        bool   `json:"correct"`
}

// RecordRow is one line of the class results table.
type RecordRow struct {
	RecordID          string `json:"record_id"`
	StudentIdentifier string `json:"student_identifier"`
	TestID            string `json:"test_id"`
	TestTitle         string `json:"test_title"`
	Score             string `json:"score"`
}

// ClassSummary is the dashboard view of one class.
type ClassSummary struct {
	ClassID             string       `json:"class_id"`
	RecordCount         int          `json:"record_count"`
	ClassAveragePercent *float64     `json:"class_average_percent"`
	Tests               []TestRef    `json:"tests"`
	Students            []string     `json:"students"`
	Groups              []GroupStats `json:"groups"`
	Records             []RecordRow  `json:"records"`
}

// ClassTests lists the tests in records once each, in first-seen order.
func ClassTests(records []model.ScoreRecord) []TestRef {
	seen := make(map[string]bool)
	tests := []TestRef{}
	for _, r := range records {
		if seen[r.TestID] {
			continue
		}
		seen[r.TestID] = true
		title := r.TestTitle
		if title == "" {
			title = r.TestID
		}
		tests = append(tests, TestRef{TestID: r.TestID, TestTitle: title})
	}
	return tests
}

// Students lists the distinct student identifiers in first-seen order.
func Students(records []model.ScoreRecord) []string {
	seen := make(map[string]bool)
	students := []string{}
	for _, r := range records {
		if r.StudentIdentifier == "" || seen[r.StudentIdentifier] {
			continue
		}
		seen[r.StudentIdentifier] = true
		students = append(students, r.StudentIdentifier)
	}
	return students
}

// ScoreDisplay renders a record's score as "x / n", or "N/A" without a score.
func ScoreDisplay(r model.ScoreRecord) string {
	if r.Score == nil {
		return notAvailable
	}
	return strconv.Itoa(*r.Score) + " / " + strconv.Itoa(r.QuestionCount())
}

// AttemptDetails breaks an attempt down per answered question.
func AttemptDetails(r model.ScoreRecord) []AttemptRow {
	rows := make([]AttemptRow, 0, len(r.AnswerDetails))
	for _, d := range r.AnswerDetails {
		rows = append(rows, AttemptRow{
			QuestionNumber: d.QuestionIndex + 1,
			TimeSpent:      timeSpent(r, d.QuestionIndex),
			SelectedText:   orNA(d.SelectedText),
			CorrectText:    orNA(d.CorrectText),
			Correct:        !d.Missed(),
		})
	}
	return rows
}

// timeSpent is the time on a question in seconds with two decimals. Zero and
// missing times both read as unavailable.
func timeSpent(r model.ScoreRecord, questionIndex int) string {
	if questionIndex < 0 || questionIndex >= len(r.QuestionTimesMs) {
		return notAvailable
	}
	ms := r.QuestionTimesMs[questionIndex]
	if ms == 0 {
		return notAvailable
	}
	return strconv.FormatFloat(ms/1000, 'f', 2, 64)
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// Summarize builds the class dashboard from the records of one class.
func Summarize(classID string, records []model.ScoreRecord) ClassSummary {
	summary := ClassSummary{
		ClassID:             classID,
		RecordCount:         len(records),
		ClassAveragePercent: ClassAveragePercent(records),
		Tests:               ClassTests(records),
		Students:            Students(records),
		Records:             make([]RecordRow, 0, len(records)),
	}

	summary.Groups = make([]GroupStats, 0, len(summary.Tests))
	for _, t := range summary.Tests {
		summary.Groups = append(summary.Groups, ComputeGroupStats(records, t.TestID))
	}

	for _, r := range records {
		title := r.TestTitle
		if title == "" {
			title = r.TestID
		}
		summary.Records = append(summary.Records, RecordRow{
			RecordID:          r.ID,
			StudentIdentifier: r.StudentIdentifier,
			TestID:            r.TestID,
			TestTitle:         title,
			Score:             ScoreDisplay(r),
		})
	}
	return summary
}
