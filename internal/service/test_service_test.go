package service

import (
	"context"
	"testing"

	"github.com/stemsi/testcraft-backend/internal/editor"
	"github.com/stemsi/testcraft-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSetup struct {
	f       *fixture
	ctx     context.Context
	classA  *model.Class
	classB  *model.Class
	classC  *model.Class
	item    *model.Item
	created *model.Test
}

func newTestSetup(t *testing.T) *testSetup {
	t.Helper()
	f := newFixture(t)
	ctx := as("t1")

	mk := func(name string) *model.Class {
		c, err := f.classes.Create(ctx, model.CreateClassRequest{Name: name})
		require.NoError(t, err)
		return c
	}
	s := &testSetup{f: f, ctx: ctx, classA: mk("7A"), classB: mk("7B"), classC: mk("7C")}

	item, err := f.items.Create(ctx, plainDraft("What is 3*3", "9", "6"))
	require.NoError(t, err)
	s.item = item

	test, err := f.tests.Create(ctx, model.CreateTestRequest{
		Name:       "Quiz 1",
		ClassNames: []string{"7A", "7B", "7A"},
		ItemIDs:    []string{item.ID},
	})
	require.NoError(t, err)
	s.created = test
	return s
}

func TestTestService_Create(t *testing.T) {
	s := newTestSetup(t)

	assert.Equal(t, []string{"7A", "7B"}, s.created.AssignedClassNames)
	require.Len(t, s.created.Questions, 1)
	assert.Equal(t, s.item.ID, s.created.Questions[0].ItemID)
	assert.Equal(t, s.item.BodyText, s.created.Questions[0].BodyText)
	assert.False(t, s.created.Published)

	_, err := s.f.tests.Create(s.ctx, model.CreateTestRequest{Name: " ", ClassNames: []string{"7A"}})
	assert.ErrorIs(t, err, editor.ErrTestNameRequired)

	_, err = s.f.tests.Create(s.ctx, model.CreateTestRequest{Name: "Quiz 2"})
	assert.ErrorIs(t, err, editor.ErrTestClassRequired)

	_, err = s.f.tests.Create(as("t2"), model.CreateTestRequest{
		Name: "Stolen", ClassNames: []string{"X"}, ItemIDs: []string{s.item.ID},
	})
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestTestService_PublishPartially(t *testing.T) {
	s := newTestSetup(t)

	overview, err := s.f.tests.Publish(s.ctx, s.created.ID, []string{s.classA.ID})
	require.NoError(t, err)

	assert.True(t, overview.Published)
	assert.Equal(t, 1, overview.Status.PublishedCount)
	assert.Equal(t, 2, overview.Status.TotalAssigned)
	assert.True(t, overview.Status.PartiallyPublished)
	assert.False(t, overview.Status.FullyPublished)
	assert.Equal(t, 50.0, overview.Status.Percent)

	published, err := s.f.tests.PublishedForClass(s.ctx, s.classA.ID)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, s.created.ID, published[0].ID)

	published, err = s.f.tests.PublishedForClass(s.ctx, s.classB.ID)
	require.NoError(t, err)
	assert.Empty(t, published)

	list, err := s.f.tests.List(s.ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 50.0, list[0].Status.Percent)
}

func TestTestService_PublishRules(t *testing.T) {
	s := newTestSetup(t)

	_, err := s.f.tests.Publish(s.ctx, s.created.ID, []string{s.classC.ID})
	assert.ErrorIs(t, err, ErrClassNotAssigned)

	overview, err := s.f.tests.Publish(s.ctx, s.created.ID, []string{s.classA.ID, s.classB.ID})
	require.NoError(t, err)
	assert.True(t, overview.Status.FullyPublished)
	assert.Equal(t, 100.0, overview.Status.Percent)

	overview, err = s.f.tests.Publish(s.ctx, s.created.ID, nil)
	require.NoError(t, err)
	assert.False(t, overview.Published)
	assert.Equal(t, 0, overview.Status.PublishedCount)

	_, err = s.f.tests.Publish(as("t2"), s.created.ID, nil)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestTestService_UpdateAddsCompleteQuestionsToBank(t *testing.T) {
	s := newTestSetup(t)

	existing := model.DraftRequest{
		ItemID:        s.item.ID,
		BodyText:      "What is 3*3",
		AuthoringMode: "plain",
		Choices:       []model.ChoiceRequest{{Text: "9"}, {Text: "6"}},
	}
	complete := plainDraft("Capital of France", "Paris", "Rome")
	incomplete := plainDraft("Unfinished", "only one", "")

	updated, err := s.f.tests.Update(s.ctx, s.created.ID, model.UpdateTestRequest{
		Name:       "Quiz 1b",
		ClassNames: []string{"7A"},
		Questions:  []model.DraftRequest{existing, complete, incomplete},
	})
	require.NoError(t, err)

	require.Len(t, updated.Questions, 3)
	assert.Equal(t, s.item.ID, updated.Questions[0].ItemID)
	assert.NotEmpty(t, updated.Questions[1].ItemID)
	assert.Empty(t, updated.Questions[2].ItemID)

	items, err := s.f.items.List(s.ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	view, err := s.f.tests.Edit(s.ctx, s.created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Quiz 1b", view.Name)
	assert.Equal(t, []string{"7A"}, view.ClassNames)
	require.Len(t, view.Questions, 3)
	assert.Equal(t, "Capital of France", view.Questions[1].BodyText)
	assert.Equal(t, updated.Questions[1].ItemID, view.Questions[1].ItemID)
}

func TestTestService_UpdateRejectsCorrectChoiceOutsideChoices(t *testing.T) {
	s := newTestSetup(t)

	broken := plainDraft("Capital of France", "Paris", "Rome")
	broken.CorrectChoiceIndex = 2
	_, err := s.f.tests.Update(s.ctx, s.created.ID, model.UpdateTestRequest{
		Name:       "Quiz 1b",
		ClassNames: []string{"7A"},
		Questions:  []model.DraftRequest{broken},
	})
	assert.ErrorIs(t, err, editor.ErrCorrectChoiceOutOfRange)

	test, err := s.f.tests.Get(s.ctx, s.created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "Quiz 1b", test.Name)

	items, err := s.f.items.List(s.ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestTestService_Delete(t *testing.T) {
	s := newTestSetup(t)

	assert.ErrorIs(t, s.f.tests.Delete(as("t2"), s.created.ID), ErrNotOwner)
	require.NoError(t, s.f.tests.Delete(s.ctx, s.created.ID))

	_, err := s.f.tests.Get(s.ctx, s.created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPublicationStatusOf_SkipsUnknownClasses(t *testing.T) {
	test := &model.Test{
		AssignedClassNames:  []string{"7A", "gone", "7B", "7C"},
		PublishedToClassIDs: []string{"a"},
	}
	status := PublicationStatusOf(test, map[string]string{"7A": "a", "7B": "b", "7C": "c"})

	assert.Equal(t, []string{"a", "b", "c"}, status.AssignedClassIDs)
	assert.Equal(t, 3, status.TotalAssigned)
	assert.Equal(t, 33.33, status.Percent)
	assert.True(t, status.PartiallyPublished)
}
