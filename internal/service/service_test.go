package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/testcraft-backend/internal/config"
	"github.com/stemsi/testcraft-backend/internal/docstore"
	"github.com/stemsi/testcraft-backend/internal/identity"
	"github.com/stemsi/testcraft-backend/internal/repository"
	"github.com/stretchr/testify/require"
)

// fixture wires the services over an in-memory document store. Redis is
// left out, which disables the analytics cache.
type fixture struct {
	store     docstore.Store
	classes   *ClassService
	items     *ItemService
	tests     *TestService
	analytics *AnalyticsService
	records   *repository.ScoreRecordRepository
	auth      *AuthService
	notifier  *identity.MemoryNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := docstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log := zerolog.Nop()
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}

	classRepo := repository.NewClassRepository(store)
	itemRepo := repository.NewItemRepository(store)
	testRepo := repository.NewTestRepository(store)
	recordRepo := repository.NewScoreRecordRepository(store)
	notifier := identity.NewMemoryNotifier()

	classes := NewClassService(classRepo, log)
	return &fixture{
		store:     store,
		classes:   classes,
		items:     NewItemService(itemRepo, log),
		tests:     NewTestService(testRepo, itemRepo, classes, log),
		analytics: NewAnalyticsService(classes, recordRepo, nil, time.Minute, log),
		records:   recordRepo,
		auth:      NewAuthService(cfg, nil, repository.NewTeacherRepository(store), notifier, log),
		notifier:  notifier,
	}
}

// as returns a context signed in as teacherID.
func as(teacherID string) context.Context {
	return identity.WithUserID(context.Background(), teacherID)
}
