package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/testcraft-backend/internal/analytics"
	"github.com/stemsi/testcraft-backend/internal/config"
	"github.com/stemsi/testcraft-backend/internal/model"
	"github.com/stemsi/testcraft-backend/internal/repository"
)

// AttemptBreakdown is one attempt with its per-question rows.
type AttemptBreakdown struct {
	Record model.ScoreRecord      `json:"record"`
	Score  string                 `json:"score"`
	Rows   []analytics.AttemptRow `json:"rows"`
}

// Export is a generated spreadsheet.
type Export struct {
	Filename string
	Data     []byte
}

// XLSXContentType is the media type of exported workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AnalyticsService serves class results. Class summaries are cached in Redis
// until new records arrive for the class; a nil client disables the cache.
type AnalyticsService struct {
	classService *ClassService
	recordRepo   *repository.ScoreRecordRepository
	rdb          *redis.Client
	cacheTTL     time.Duration
	log          zerolog.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(
	classService *ClassService,
	recordRepo *repository.ScoreRecordRepository,
	rdb *redis.Client,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		classService: classService,
		recordRepo:   recordRepo,
		rdb:          rdb,
		cacheTTL:     cacheTTL,
		log:          log.With().Str("component", "analytics_service").Logger(),
	}
}

func (s *AnalyticsService) classRecords(ctx context.Context, classID string) ([]model.ScoreRecord, error) {
	if _, err := s.classService.GetOwned(ctx, classID); err != nil {
		return nil, err
	}
	records, err := s.recordRepo.ListByClass(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("load score records: %w", err)
	}
	return records, nil
}

// Summary returns the dashboard view of a class of the signed-in teacher.
func (s *AnalyticsService) Summary(ctx context.Context, classID string) (*analytics.ClassSummary, error) {
	if _, err := s.classService.GetOwned(ctx, classID); err != nil {
		return nil, err
	}
	return s.summary(ctx, classID)
}

// summary serves from the cache when it can. Cache failures only cost a recomputation.
func (s *AnalyticsService) summary(ctx context.Context, classID string) (*analytics.ClassSummary, error) {
	key := config.CacheKey.ClassAnalyticsKey(classID)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var summary analytics.ClassSummary
			if err := json.Unmarshal(cached, &summary); err == nil {
				return &summary, nil
			}
			s.log.Warn().Str("class_id", classID).Msg("Discarding unreadable cached summary")
		case !errors.Is(err, redis.Nil):
			s.log.Warn().Err(err).Str("class_id", classID).Msg("Analytics cache read failed")
		}
	}

	records, err := s.recordRepo.ListByClass(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("load score records: %w", err)
	}
	summary := analytics.Summarize(classID, records)

	if s.rdb != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.rdb.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
				s.log.Warn().Err(err).Str("class_id", classID).Msg("Analytics cache write failed")
			}
		}
	}
	return &summary, nil
}

// Invalidate drops the cached summary of a class.
func (s *AnalyticsService) Invalidate(ctx context.Context, classID string) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, config.CacheKey.ClassAnalyticsKey(classID)).Err()
}

// Group returns the statistics of one test in a class.
func (s *AnalyticsService) Group(ctx context.Context, classID, testID string) (*analytics.GroupStats, error) {
	records, err := s.classRecords(ctx, classID)
	if err != nil {
		return nil, err
	}
	stats := analytics.ComputeGroupStats(records, testID)
	if stats.Participants == 0 {
		return nil, ErrNotFound
	}
	return &stats, nil
}

// Trend returns a student's attempts across the tests of a class.
func (s *AnalyticsService) Trend(ctx context.Context, classID, student string) (*analytics.Trend, error) {
	records, err := s.classRecords(ctx, classID)
	if err != nil {
		return nil, err
	}
	trend := analytics.StudentTrend(records, student, classID)
	return &trend, nil
}

// Attempt returns the per-question breakdown of one record of a class.
func (s *AnalyticsService) Attempt(ctx context.Context, classID, recordID string) (*AttemptBreakdown, error) {
	if _, err := s.classService.GetOwned(ctx, classID); err != nil {
		return nil, err
	}
	rec, err := s.recordRepo.GetByID(ctx, recordID)
	if err != nil {
		return nil, notFound(err)
	}
	if rec.ClassID != classID {
		return nil, ErrRecordNotInClass
	}
	return &AttemptBreakdown{
		Record: *rec,
		Score:  analytics.ScoreDisplay(*rec),
		Rows:   analytics.AttemptDetails(*rec),
	}, nil
}

// ExportAttempt builds the spreadsheet of one attempt.
func (s *AnalyticsService) ExportAttempt(ctx context.Context, classID, recordID string) (*Export, error) {
	breakdown, err := s.Attempt(ctx, classID, recordID)
	if err != nil {
		return nil, err
	}
	data, err := analytics.StudentAttemptWorkbook(breakdown.Record)
	if err != nil {
		return nil, err
	}
	return &Export{Filename: "test-analytics.xlsx", Data: data}, nil
}

// ExportGroup builds the spreadsheet of every attempt at a test in a class.
func (s *AnalyticsService) ExportGroup(ctx context.Context, classID, testID string) (*Export, error) {
	records, err := s.classRecords(ctx, classID)
	if err != nil {
		return nil, err
	}
	data, err := analytics.GroupWorkbook(records, testID)
	if err != nil {
		return nil, err
	}
	return &Export{Filename: "group-test-analytics.xlsx", Data: data}, nil
}

// LiveSummary recomputes a class summary for the monitor stream. The caller
// has already checked ownership.
func (s *AnalyticsService) LiveSummary(ctx context.Context, classID string) (*analytics.ClassSummary, error) {
	return s.summary(ctx, classID)
}
