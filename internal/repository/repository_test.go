package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stemsi/testcraft-backend/internal/docstore"
	"github.com/stemsi/testcraft-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) docstore.Store {
	t.Helper()
	s, err := docstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTeacherRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTeacherRepository(newStore(t))

	teacher := &model.Teacher{Email: "  Ada@School.Example ", Name: "Ada", PasswordHash: "hash", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, teacher))
	assert.NotEmpty(t, teacher.ID)
	assert.Equal(t, "ada@school.example", teacher.Email)

	got, err := repo.GetByEmail(ctx, "ADA@school.example")
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = repo.GetByEmail(ctx, "nobody@school.example")
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	byID, err := repo.GetByID(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.Name)
}

func TestItemRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository(newStore(t))

	item := &model.Item{OwnerID: "t1", Content: model.Content{BodyText: "x", Choices: []model.Choice{{Text: "a"}, {Text: "b"}}}}
	require.NoError(t, repo.Create(ctx, item))
	require.NoError(t, repo.Create(ctx, &model.Item{OwnerID: "t2"}))

	item.BodyText = "y"
	require.NoError(t, repo.Replace(ctx, item))

	items, err := repo.ListByOwner(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "y", items[0].BodyText)
	assert.Equal(t, item.ID, items[0].ID)

	assert.ErrorIs(t, repo.Replace(ctx, &model.Item{ID: "missing"}), docstore.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, item.ID))
	_, err = repo.GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestTestRepository_ListPublishedToClass(t *testing.T) {
	ctx := context.Background()
	repo := NewTestRepository(newStore(t))

	tests := []*model.Test{
		{Name: "published to c1", OwnerID: "t1", Published: true, PublishedToClassIDs: []string{"c1", "c2"}},
		{Name: "unpublished", OwnerID: "t1", PublishedToClassIDs: []string{"c1"}},
		{Name: "published elsewhere", OwnerID: "t1", Published: true, PublishedToClassIDs: []string{"c3"}},
	}
	for _, tt := range tests {
		require.NoError(t, repo.Create(ctx, tt))
	}

	got, err := repo.ListPublishedToClass(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "published to c1", got[0].Name)

	require.NoError(t, repo.Update(ctx, tests[1].ID, map[string]any{"published": true}))
	got, err = repo.ListPublishedToClass(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestScoreRecordRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewScoreRecordRepository(newStore(t))

	score := 3
	rec := &model.ScoreRecord{ID: "rec-1", StudentIdentifier: "s@x", TestID: "t1", ClassID: "c1", Score: &score, QuestionTimesMs: []float64{1, 2, 3}}
	require.NoError(t, repo.Save(ctx, rec))
	require.NoError(t, repo.Save(ctx, rec))
	require.NoError(t, repo.Save(ctx, &model.ScoreRecord{StudentIdentifier: "s@x", ClassID: "c2"}))

	records, err := repo.ListByClass(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Score)
	assert.Equal(t, 3, *records[0].Score)
	assert.Equal(t, 3, records[0].QuestionCount())
}
