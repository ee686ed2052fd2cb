package repository

import (
	"context"

	"github.com/stemsi/testcraft-backend/internal/docstore"
	"github.com/stemsi/testcraft-backend/internal/model"
)

// TestRepository handles test data access.
type TestRepository struct {
	store docstore.Store
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(store docstore.Store) *TestRepository {
	return &TestRepository{store: store}
}

// Create inserts a new test and sets its ID.
func (r *TestRepository) Create(ctx context.Context, t *model.Test) error {
	id, err := r.store.Create(ctx, docstore.CollectionTests, t)
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// GetByID retrieves a test by its ID.
func (r *TestRepository) GetByID(ctx context.Context, id string) (*model.Test, error) {
	t := &model.Test{}
	if err := r.store.Get(ctx, docstore.CollectionTests, id, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListByOwner retrieves every test of a teacher in creation order.
func (r *TestRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Test, error) {
	return docstore.QueryAs[model.Test](ctx, r.store, docstore.CollectionTests,
		docstore.Eq("owner_id", ownerID))
}

// ListPublishedToClass retrieves the published tests visible to a class.
func (r *TestRepository) ListPublishedToClass(ctx context.Context, classID string) ([]model.Test, error) {
	return docstore.QueryAs[model.Test](ctx, r.store, docstore.CollectionTests,
		docstore.Eq("published", true),
		docstore.Contains("published_to_class_ids", classID))
}

// Update changes the given top-level fields of a test.
func (r *TestRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Update(ctx, docstore.CollectionTests, id, fields)
}

// Delete removes a test by its ID.
func (r *TestRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, docstore.CollectionTests, id)
}
