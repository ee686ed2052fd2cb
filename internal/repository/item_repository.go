package repository

import (
	"context"

	"github.com/stemsi/testcraft-backend/internal/docstore"
	"github.com/stemsi/testcraft-backend/internal/model"
)

// ItemRepository handles item bank data access.
type ItemRepository struct {
	store docstore.Store
}

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(store docstore.Store) *ItemRepository {
	return &ItemRepository{store: store}
}

// Create inserts a new item and sets its ID.
func (r *ItemRepository) Create(ctx context.Context, item *model.Item) error {
	id, err := r.store.Create(ctx, docstore.CollectionItems, item)
	if err != nil {
		return err
	}
	item.ID = id
	return nil
}

// GetByID retrieves an item by its ID.
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*model.Item, error) {
	item := &model.Item{}
	if err := r.store.Get(ctx, docstore.CollectionItems, id, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ListByOwner retrieves every item of a teacher in creation order.
func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Item, error) {
	return docstore.QueryAs[model.Item](ctx, r.store, docstore.CollectionItems,
		docstore.Eq("owner_id", ownerID))
}

// Replace overwrites an existing item with the given state.
func (r *ItemRepository) Replace(ctx context.Context, item *model.Item) error {
	if _, err := r.GetByID(ctx, item.ID); err != nil {
		return err
	}
	_, err := r.store.Create(ctx, docstore.CollectionItems, item)
	return err
}

// Delete removes an item by its ID.
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, docstore.CollectionItems, id)
}
