package model

import "time"

// AnswerDetail is how a student answered one question of an attempt.
type AnswerDetail struct {
	QuestionIndex int    `json:"question_index"`
	SelectedIndex int    `json:"selected_index"`
	CorrectIndex  int    `json:"correct_index"`
	SelectedText  string `json:"selected_text"`
	CorrectText   string `json:"correct_text"`
}

// Missed reports whether the student picked a wrong choice.
func (d AnswerDetail) Missed() bool {
	return d.SelectedIndex != d.CorrectIndex
}

// ScoreRecord is one student's completed attempt at a test. Records are written
// by the student-facing app and are read-only here. Score and Timestamp are
// pointers so that records missing them can be told apart and skipped.
type ScoreRecord struct {
	ID                string         `json:"id,omitempty"`
	StudentIdentifier string         `json:"student_identifier"`
	TestID            string         `json:"test_id"`
	TestTitle         string         `json:"test_title"`
	ClassID           string         `json:"class_id"`
	Score             *int           `json:"score"`
	QuestionTimesMs   []float64      `json:"question_times_ms"`
	AnswerDetails     []AnswerDetail `json:"answer_details"`
	Timestamp         *time.Time     `json:"timestamp,omitempty"`
}

// QuestionCount is the number of questions in the attempt.
func (r ScoreRecord) QuestionCount() int {
	return len(r.QuestionTimesMs)
}

// ScoreInRange reports whether the score, when present, lies between 0 and
// the question count.
func (r ScoreRecord) ScoreInRange() bool {
	return r.Score == nil || (*r.Score >= 0 && *r.Score <= r.QuestionCount())
}
