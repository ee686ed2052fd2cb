package analytics

import (
	"fmt"

	"github.com/stemsi/testcraft-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the exported workbooks.
const (
	AttemptSheet = "Analytics"
	GroupSheet   = "Group Analytics"
)

var attemptHeaders = []string{"Question", "Time Spent (s)", "Student's Choice", "Correct Answer", "Correct"}

const (
	markCorrect = "✔"
	markWrong   = "✘"
)

// StudentAttemptWorkbook exports the per-question breakdown of one attempt as xlsx.
func StudentAttemptWorkbook(r model.ScoreRecord) ([]byte, error) {
	rows := make([][]any, 0, len(r.AnswerDetails))
	for _, row := range AttemptDetails(r) {
		rows = append(rows, attemptCells(row))
	}
	return writeWorkbook(AttemptSheet, attemptHeaders, rows)
}

// GroupWorkbook exports every attempt at testID, one line per answered
// question. Attempts without answer details get a single placeholder line.
func GroupWorkbook(records []model.ScoreRecord, testID string) ([]byte, error) {
	headers := append([]string{"Student", "Score"}, attemptHeaders...)

	var rows [][]any
	for _, r := range records {
		if r.TestID != testID {
			continue
		}
		lead := []any{orNA(r.StudentIdentifier), ScoreDisplay(r)}
		details := AttemptDetails(r)
		if len(details) == 0 {
			rows = append(rows, append(lead, notAvailable, notAvailable, notAvailable, notAvailable, notAvailable))
			continue
		}
		for _, row := range details {
			rows = append(rows, append(append([]any{}, lead...), attemptCells(row)...))
		}
	}
	return writeWorkbook(GroupSheet, headers, rows)
}

func attemptCells(row AttemptRow) []any {
	mark := markWrong
	if row.Correct {
		mark = markCorrect
	}
	return []any{row.QuestionNumber, row.TimeSpent, row.SelectedText, row.CorrectText, mark}
}

func writeWorkbook(sheetName string, headers []string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
