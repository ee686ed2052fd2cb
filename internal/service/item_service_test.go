package service

import (
	"testing"

	"github.com/stemsi/testcraft-backend/internal/editor"
	"github.com/stemsi/testcraft-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plainDraft(body string, choices ...string) model.DraftRequest {
	req := model.DraftRequest{
		IsNew:         true,
		Title:         "Q",
		BodyText:      body,
		AuthoringMode: "plain",
	}
	for _, c := range choices {
		req.Choices = append(req.Choices, model.ChoiceRequest{Text: c})
	}
	return req
}

func TestItemService_PlainDraftRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := as("t1")

	req := plainDraft("What is 2+2", "4", "five")
	req.CorrectChoiceIndex = 0

	item, err := f.items.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, `\text{What} \ \text{is} \ 2+2`, item.BodyText)
	assert.Equal(t, "4", item.Choices[0].Text)
	assert.Equal(t, `\text{five}`, item.Choices[1].Text)
	assert.Equal(t, model.AuthoringModePlain, item.AuthoringMode)

	view, err := f.items.Edit(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "What is 2+2", view.BodyText)
	assert.Equal(t, "five", view.Choices[1].Text)
	assert.Equal(t, "a", view.CorrectChoice)
}

func TestItemService_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := as("t1")

	item, err := f.items.Create(ctx, plainDraft("Pick one", "x", "y"))
	require.NoError(t, err)

	update := plainDraft("Pick again", "x", "y", "z")
	update.CorrectChoiceIndex = 2
	_, err = f.items.Update(as("t2"), item.ID, update)
	assert.ErrorIs(t, err, ErrNotOwner)

	updated, err := f.items.Update(ctx, item.ID, update)
	require.NoError(t, err)
	assert.Len(t, updated.Choices, 3)
	assert.Equal(t, 2, updated.CorrectChoiceIndex)

	stored, err := f.items.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, `\text{Pick} \ \text{again}`, stored.BodyText)

	items, err := f.items.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, f.items.Delete(ctx, item.ID))
	_, err = f.items.Get(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemService_RejectsCorrectChoiceOutsideChoices(t *testing.T) {
	f := newFixture(t)
	ctx := as("t1")

	req := plainDraft("What is 2+2", "4", "five")
	req.CorrectChoiceIndex = 7
	_, err := f.items.Create(ctx, req)
	assert.ErrorIs(t, err, editor.ErrCorrectChoiceOutOfRange)

	items, err := f.items.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	item, err := f.items.Create(ctx, plainDraft("What is 2+2", "4", "five"))
	require.NoError(t, err)

	update := plainDraft("What is 2+2", "4", "five")
	update.CorrectChoiceIndex = 2
	_, err = f.items.Update(ctx, item.ID, update)
	assert.ErrorIs(t, err, editor.ErrCorrectChoiceOutOfRange)

	stored, err := f.items.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CorrectChoiceIndex)
}
