package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/testcraft-backend/internal/config"
	"github.com/stemsi/testcraft-backend/internal/model"
	ws "github.com/stemsi/testcraft-backend/internal/websocket"
)

const (
	ScoreBatchSize    = 50
	ScoreBatchTimeout = 2 * time.Second
	ScorePollTimeout  = 1 * time.Second
)

var (
	errMissingClass    = errors.New("score record has no class_id")
	errScoreOutOfRange = errors.New("score record score is outside its question count")
)

// RecordSaver persists score records.
type RecordSaver interface {
	Save(ctx context.Context, rec *model.ScoreRecord) error
}

// CacheInvalidator drops derived data of a class.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, classID string) error
}

// ScoreIngestWorker moves finished attempts from the Redis queue into the
// document store and tells live monitors about them.
type ScoreIngestWorker struct {
	records RecordSaver
	cache   CacheInvalidator
	rdb     *redis.Client
	log     zerolog.Logger
}

func NewScoreIngestWorker(records RecordSaver, cache CacheInvalidator, rdb *redis.Client, log zerolog.Logger) *ScoreIngestWorker {
	return &ScoreIngestWorker{
		records: records,
		cache:   cache,
		rdb:     rdb,
		log:     log.With().Str("component", "score_ingest_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ScoreIngestWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ScoreIngestWorker started")

	batch := make([]*model.ScoreRecord, 0, ScoreBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ScoreBatchSize || time.Since(lastFlush) >= ScoreBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ScorePollTimeout, config.WorkerKey.ScoreRecordsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			rec, err := decodeRecord([]byte(item[1]))
			if err != nil {
				w.log.Error().Err(err).Msg("Dropping invalid score payload")
				continue
			}

			batch = append(batch, rec)
		}
	}
}

// decodeRecord parses a queued record and gives it an ID, so a requeued
// record overwrites its own earlier copy instead of duplicating it.
func decodeRecord(raw []byte) (*model.ScoreRecord, error) {
	var rec model.ScoreRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode score record: %w", err)
	}
	if rec.ClassID == "" {
		return nil, errMissingClass
	}
	if !rec.ScoreInRange() {
		return nil, errScoreOutOfRange
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	return &rec, nil
}

// ----------------------------------------------------------------
// Flush
// ----------------------------------------------------------------

func (w *ScoreIngestWorker) flushSafe(ctx context.Context, batch []*model.ScoreRecord) {
	if len(batch) == 0 {
		return
	}

	saved, failed := w.persist(ctx, batch)

	for _, rec := range failed {
		raw, err := json.Marshal(rec)
		if err != nil {
			w.log.Error().Err(err).Str("record_id", rec.ID).Msg("Cannot requeue score record")
			continue
		}
		if err := w.rdb.RPush(ctx, config.WorkerKey.ScoreRecordsQueue, raw).Err(); err != nil {
			w.log.Error().Err(err).Str("record_id", rec.ID).Msg("Requeue failed, record lost")
		}
	}

	w.announce(ctx, saved)
}

// persist writes each record and returns the saved record IDs per class
// together with the records that must be retried.
func (w *ScoreIngestWorker) persist(ctx context.Context, batch []*model.ScoreRecord) (map[string][]string, []*model.ScoreRecord) {
	saved := make(map[string][]string)
	var failed []*model.ScoreRecord

	for _, rec := range batch {
		if err := w.records.Save(ctx, rec); err != nil {
			w.log.Warn().Err(err).Str("record_id", rec.ID).Msg("Save failed, requeueing")
			failed = append(failed, rec)
			continue
		}
		saved[rec.ClassID] = append(saved[rec.ClassID], rec.ID)
	}
	return saved, failed
}

// announce invalidates the cached summary of every touched class before
// notifying its monitors, so they refetch fresh numbers.
func (w *ScoreIngestWorker) announce(ctx context.Context, saved map[string][]string) {
	for classID, ids := range saved {
		if err := w.cache.Invalidate(ctx, classID); err != nil {
			w.log.Warn().Err(err).Str("class_id", classID).Msg("Analytics cache invalidation failed")
		}

		payload, _ := json.Marshal(ws.ScoresUpdated{
			Event:     ws.EventScoresUpdated,
			ClassID:   classID,
			RecordIDs: ids,
		})
		if err := w.rdb.Publish(ctx, config.CacheKey.ClassScoresChannel(classID), payload).Err(); err != nil {
			w.log.Warn().Err(err).Str("class_id", classID).Msg("Score notification failed")
		}
	}

	if len(saved) > 0 {
		w.log.Debug().Int("classes", len(saved)).Msg("Score batch flushed")
	}
}
