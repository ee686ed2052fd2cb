package service

import (
	"context"
	"testing"

	"github.com/stemsi/testcraft-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassService_CreateTrimsName(t *testing.T) {
	f := newFixture(t)

	class, err := f.classes.Create(as("t1"), model.CreateClassRequest{Name: "  7B  "})
	require.NoError(t, err)
	assert.Equal(t, "7B", class.Name)
	assert.Equal(t, "t1", class.OwnerID)
	assert.NotEmpty(t, class.ID)

	_, err = f.classes.Create(as("t1"), model.CreateClassRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrClassNameRequired)

	_, err = f.classes.Create(context.Background(), model.CreateClassRequest{Name: "7C"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestClassService_ListSortsByName(t *testing.T) {
	f := newFixture(t)
	ctx := as("t1")

	for _, name := range []string{"class 10", "Biology", "class 2", "Ämter"} {
		_, err := f.classes.Create(ctx, model.CreateClassRequest{Name: name})
		require.NoError(t, err)
	}
	_, err := f.classes.Create(as("t2"), model.CreateClassRequest{Name: "Other"})
	require.NoError(t, err)

	classes, err := f.classes.List(ctx)
	require.NoError(t, err)

	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Ämter", "Biology", "class 2", "class 10"}, names)
}

func TestClassService_OwnerChecks(t *testing.T) {
	f := newFixture(t)

	class, err := f.classes.Create(as("t1"), model.CreateClassRequest{Name: "7B"})
	require.NoError(t, err)

	_, err = f.classes.GetOwned(as("t2"), class.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	assert.ErrorIs(t, f.classes.Delete(as("t2"), class.ID), ErrNotOwner)
	require.NoError(t, f.classes.Delete(as("t1"), class.ID))

	_, err = f.classes.GetOwned(as("t1"), class.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
