package repository

import (
	"context"

	"github.com/stemsi/testcraft-backend/internal/docstore"
	"github.com/stemsi/testcraft-backend/internal/model"
)

// ClassRepository handles class data access.
type ClassRepository struct {
	store docstore.Store
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(store docstore.Store) *ClassRepository {
	return &ClassRepository{store: store}
}

// GetByID retrieves a class by its ID.
func (r *ClassRepository) GetByID(ctx context.Context, id string) (*model.Class, error) {
	c := &model.Class{}
	if err := r.store.Get(ctx, docstore.CollectionClasses, id, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListByOwner retrieves every class of a teacher in creation order.
func (r *ClassRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Class, error) {
	return docstore.QueryAs[model.Class](ctx, r.store, docstore.CollectionClasses,
		docstore.Eq("owner_id", ownerID))
}

// Create inserts a new class and sets its ID.
func (r *ClassRepository) Create(ctx context.Context, c *model.Class) error {
	id, err := r.store.Create(ctx, docstore.CollectionClasses, c)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// Delete removes a class by its ID.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, docstore.CollectionClasses, id)
}
