package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/testcraft-backend/internal/config"
	"github.com/stemsi/testcraft-backend/internal/database"
	"github.com/stemsi/testcraft-backend/internal/logger"
	"github.com/stemsi/testcraft-backend/internal/model"
)

// seed-scores pushes synthetic finished attempts onto the ingest queue, the
// same way the student app does, so dashboards can be tried without students.
func main() {
	var (
		classID   string
		testID    string
		testTitle string
		students  int
		questions int
	)
	flag.StringVar(&classID, "class", "", "Class ID the attempts belong to (required)")
	flag.StringVar(&testID, "test", "", "Test ID (random when empty)")
	flag.StringVar(&testTitle, "title", "Practice Test", "Test title shown in analytics")
	flag.IntVar(&students, "students", 30, "Number of students")
	flag.IntVar(&questions, "questions", 10, "Questions per attempt")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if classID == "" {
		log.Fatal().Msg("-class is required")
	}
	if testID == "" {
		testID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	fmt.Printf("=== Queueing %d attempts for class %s ===\n", students, classID)

	start := time.Now().Add(-time.Hour)
	pipe := rdb.Pipeline()
	for i := 0; i < students; i++ {
		rec := syntheticAttempt(fmt.Sprintf("student-%02d", i+1), classID, testID, testTitle, questions, start.Add(time.Duration(i)*time.Minute))
		raw, err := json.Marshal(rec)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to encode attempt")
		}
		pipe.RPush(ctx, config.WorkerKey.ScoreRecordsQueue, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to queue attempts")
	}

	fmt.Printf("Queued. Test ID: %s\n", testID)
}

func syntheticAttempt(student, classID, testID, title string, questions int, at time.Time) model.ScoreRecord {
	rec := model.ScoreRecord{
		ID:                uuid.NewString(),
		StudentIdentifier: student,
		TestID:            testID,
		TestTitle:         title,
		ClassID:           classID,
		QuestionTimesMs:   make([]float64, questions),
		AnswerDetails:     make([]model.AnswerDetail, questions),
		Timestamp:         &at,
	}

	score := 0
	for q := 0; q < questions; q++ {
		correct := rand.IntN(4)
		selected := correct
		// Later questions are missed more often.
		if rand.Float64() < 0.2+0.5*float64(q)/float64(questions) {
			selected = (correct + 1 + rand.IntN(3)) % 4
		} else {
			score++
		}
		rec.QuestionTimesMs[q] = float64(5000 + rand.IntN(40000))
		rec.AnswerDetails[q] = model.AnswerDetail{
			QuestionIndex: q,
			SelectedIndex: selected,
			CorrectIndex:  correct,
			SelectedText:  string(rune('A' + selected)),
			CorrectText:   string(rune('A' + correct)),
		}
	}
	rec.Score = &score
	return rec
}
