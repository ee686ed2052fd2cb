package repository

import (
	"context"

	"github.com/stemsi/testcraft-backend/internal/docstore"
	"github.com/stemsi/testcraft-backend/internal/model"
)

// ScoreRecordRepository handles student score record data access. Records
// are written only by the ingest worker.
type ScoreRecordRepository struct {
	store docstore.Store
}

// NewScoreRecordRepository creates a new ScoreRecordRepository.
func NewScoreRecordRepository(store docstore.Store) *ScoreRecordRepository {
	return &ScoreRecordRepository{store: store}
}

// Save stores a record. A record arriving again with the same ID replaces
// the earlier copy.
func (r *ScoreRecordRepository) Save(ctx context.Context, rec *model.ScoreRecord) error {
	id, err := r.store.Create(ctx, docstore.CollectionScoreRecords, rec)
	if err != nil {
		return err
	}
	rec.ID = id
	return nil
}

// GetByID retrieves a record by its ID.
func (r *ScoreRecordRepository) GetByID(ctx context.Context, id string) (*model.ScoreRecord, error) {
	rec := &model.ScoreRecord{}
	if err := r.store.Get(ctx, docstore.CollectionScoreRecords, id, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListByClass retrieves every record of a class in arrival order.
func (r *ScoreRecordRepository) ListByClass(ctx context.Context, classID string) ([]model.ScoreRecord, error) {
	return docstore.QueryAs[model.ScoreRecord](ctx, r.store, docstore.CollectionScoreRecords,
		docstore.Eq("class_id", classID))
}
