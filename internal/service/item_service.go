package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/testcraft-backend/internal/editor"
	"github.com/stemsi/testcraft-backend/internal/model"
	"github.com/stemsi/testcraft-backend/internal/repository"
)

// ItemService handles the item bank.
type ItemService struct {
	itemRepo *repository.ItemRepository
	log      zerolog.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(itemRepo *repository.ItemRepository, log zerolog.Logger) *ItemService {
	return &ItemService{
		itemRepo: itemRepo,
		log:      log.With().Str("component", "item_service").Logger(),
	}
}

// Create saves an editor draft as a new item of the signed-in teacher.
func (s *ItemService) Create(ctx context.Context, req model.DraftRequest) (*model.Item, error) {
	ownerID, err := currentOwner(ctx)
	if err != nil {
		return nil, err
	}

	d := editor.FromRequest(req)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	q := d.Save()
	item := &model.Item{
		Content:   q.Content,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.log.Info().Str("item_id", item.ID).Str("mode", string(item.AuthoringMode)).Msg("Item created")
	return item, nil
}

// List returns the signed-in teacher's items, oldest first.
func (s *ItemService) List(ctx context.Context) ([]model.Item, error) {
	ownerID, err := currentOwner(ctx)
	if err != nil {
		return nil, err
	}
	return s.itemRepo.ListByOwner(ctx, ownerID)
}

// Get returns an item of the signed-in teacher.
func (s *ItemService) Get(ctx context.Context, id string) (*model.Item, error) {
	ownerID, err := currentOwner(ctx)
	if err != nil {
		return nil, err
	}
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if item.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return item, nil
}

// Edit reopens an item in the editor, in the mode it was authored in.
func (s *ItemService) Edit(ctx context.Context, id string) (*editor.View, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d := editor.Load(model.Question{ItemID: item.ID, Content: item.Content})
	view := d.View()
	return &view, nil
}

// Update replaces an item with the saved editor draft.
func (s *ItemService) Update(ctx context.Context, id string, req model.DraftRequest) (*model.Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	d := editor.FromRequest(req)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	item.Content = d.Save().Content
	if err := s.itemRepo.Replace(ctx, item); err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

// Delete removes an item. Tests holding a copy of it are unaffected.
func (s *ItemService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return notFound(s.itemRepo.Delete(ctx, id))
}
