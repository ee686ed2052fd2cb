package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/testcraft-backend/internal/editor"
	"github.com/stemsi/testcraft-backend/internal/model"
	"github.com/stemsi/testcraft-backend/internal/repository"
)

// TestEditorView is a test reopened for editing.
type TestEditorView struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	ClassNames []string      `json:"class_names"`
	Questions  []editor.View `json:"questions"`
}

// TestService handles test assembly, editing and publication.
type TestService struct {
	testRepo     *repository.TestRepository
	itemRepo     *repository.ItemRepository
	classService *ClassService
	log          zerolog.Logger
}

// NewTestService creates a new TestService.
func NewTestService(
	testRepo *repository.TestRepository,
	itemRepo *repository.ItemRepository,
	classService *ClassService,
	log zerolog.Logger,
) *TestService {
	return &TestService{
		testRepo:     testRepo,
		itemRepo:     itemRepo,
		classService: classService,
		log:          log.With().Str("component", "test_service").Logger(),
	}
}

// Create assembles a test from bank items of the signed-in teacher.
func (s *TestService) Create(ctx context.Context, req model.CreateTestRequest) (*model.Test, error) {
	ownerID, err := currentOwner(ctx)
	if err != nil {
		return nil, err
	}

	td := editor.NewTestDraft()
	td.SetName(req.Name)
	for _, name := range uniqueNames(req.ClassNames) {
		td.ToggleClass(name)
	}
	for _, itemID := range req.ItemIDs {
		item, err := s.itemRepo.GetByID(ctx, itemID)
		if err != nil {
			return nil, notFound(err)
		}
		if item.OwnerID != ownerID {
			return nil, ErrNotOwner
		}
		td.AddQuestionFromItem(*item)
	}
	if err := td.Validate(); err != nil {
		return nil, err
	}

	questions, _ := td.Save()
	now := time.Now().UTC()
	test := &model.Test{
		Name:                td.Name,
		AssignedClassNames:  td.ClassNames,
		Questions:           questions,
		OwnerID:             ownerID,
		PublishedToClassIDs: []string{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.testRepo.Create(ctx, test); err != nil {
		return nil, fmt.Errorf("create test: %w", err)
	}

	s.log.Info().Str("test_id", test.ID).Int("questions", len(questions)).Msg("Test created")
	return test, nil
}

// Get returns a test of the signed-in teacher.
func (s *TestService) Get(ctx context.Context, id string) (*model.Test, error) {
	ownerID, err := currentOwner(ctx)
	if err != nil {
		return nil, err
	}
	test, err := s.testRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if test.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return test, nil
}

// Edit reopens a test in the editor.
func (s *TestService) Edit(ctx context.Context, id string) (*TestEditorView, error) {
	test, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	td := editor.LoadTest(*test)
	view := &TestEditorView{
		ID:         td.ID,
		Name:       td.Name,
		ClassNames: td.ClassNames,
		Questions:  make([]editor.View, len(td.Questions)),
	}
	for i, d := range td.Questions {
		view.Questions[i] = d.View()
	}
	return view, nil
}

// Update saves the test editor's state. New questions that are complete are
// also added to the item bank and linked to it.
func (s *TestService) Update(ctx context.Context, id string, req model.UpdateTestRequest) (*model.Test, error) {
	test, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	td := editor.FromUpdateRequest(id, req)
	td.ClassNames = uniqueNames(td.ClassNames)
	if err := td.Validate(); err != nil {
		return nil, err
	}

	questions, bankable := td.Save()
	now := time.Now().UTC()
	for _, i := range bankable {
		item := &model.Item{Content: questions[i].Content, OwnerID: test.OwnerID, CreatedAt: now}
		if err := s.itemRepo.Create(ctx, item); err != nil {
			// The test itself is still saved; the item can be added from the bank later.
			s.log.Error().Err(err).Str("test_id", id).Int("question", i).Msg("Failed to add question to item bank")
			continue
		}
		questions[i].ItemID = item.ID
	}

	err = s.testRepo.Update(ctx, id, map[string]any{
		"name":                 td.Name,
		"assigned_class_names": td.ClassNames,
		"questions":            questions,
		"updated_at":           now,
	})
	if err != nil {
		return nil, notFound(err)
	}

	test.Name = td.Name
	test.AssignedClassNames = td.ClassNames
	test.Questions = questions
	test.UpdatedAt = now
	return test, nil
}

// Delete removes a test of the signed-in teacher.
func (s *TestService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return notFound(s.testRepo.Delete(ctx, id))
}

// Publish makes the test visible to the given classes, replacing the earlier
// selection. Every class must be one the test is assigned to. An empty
// selection unpublishes the test.
func (s *TestService) Publish(ctx context.Context, id string, classIDs []string) (*model.TestOverview, error) {
	test, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	idsByName, err := s.classService.IDsByName(ctx)
	if err != nil {
		return nil, err
	}

	assigned := make(map[string]bool)
	for _, cid := range assignedClassIDs(test, idsByName) {
		assigned[cid] = true
	}
	selected := uniqueNames(classIDs)
	for _, cid := range selected {
		if !assigned[cid] {
			return nil, ErrClassNotAssigned
		}
	}

	now := time.Now().UTC()
	err = s.testRepo.Update(ctx, id, map[string]any{
		"published":              len(selected) > 0,
		"published_to_class_ids": selected,
		"updated_at":             now,
	})
	if err != nil {
		return nil, notFound(err)
	}

	test.Published = len(selected) > 0
	test.PublishedToClassIDs = selected
	test.UpdatedAt = now

	s.log.Info().Str("test_id", id).Strs("class_ids", selected).Msg("Test publication changed")
	return &model.TestOverview{Test: *test, Status: PublicationStatusOf(test, idsByName)}, nil
}

// List returns the signed-in teacher's tests with their publication status.
func (s *TestService) List(ctx context.Context) ([]model.TestOverview, error) {
	ownerID, err := currentOwner(ctx)
	if err != nil {
		return nil, err
	}
	tests, err := s.testRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	idsByName, err := s.classService.IDsByName(ctx)
	if err != nil {
		return nil, err
	}

	overviews := make([]model.TestOverview, 0, len(tests))
	for i := range tests {
		overviews = append(overviews, model.TestOverview{
			Test:   tests[i],
			Status: PublicationStatusOf(&tests[i], idsByName),
		})
	}
	return overviews, nil
}

// PublishedForClass lists the signed-in teacher's tests published to a class.
func (s *TestService) PublishedForClass(ctx context.Context, classID string) ([]model.Test, error) {
	class, err := s.classService.GetOwned(ctx, classID)
	if err != nil {
		return nil, err
	}
	tests, err := s.testRepo.ListPublishedToClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	owned := make([]model.Test, 0, len(tests))
	for _, t := range tests {
		if t.OwnerID == class.OwnerID {
			owned = append(owned, t)
		}
	}
	return owned, nil
}

// PublicationStatusOf works out how many of a test's assigned classes it is
// published to. Assigned class names without a matching class are skipped.
func PublicationStatusOf(test *model.Test, idsByName map[string]string) model.PublicationStatus {
	status := model.PublicationStatus{AssignedClassIDs: assignedClassIDs(test, idsByName)}
	status.TotalAssigned = len(status.AssignedClassIDs)

	published := make(map[string]bool, len(test.PublishedToClassIDs))
	for _, id := range test.PublishedToClassIDs {
		published[id] = true
	}
	for _, id := range status.AssignedClassIDs {
		if published[id] {
			status.PublishedCount++
		}
	}

	status.FullyPublished = status.TotalAssigned > 0 && status.PublishedCount == status.TotalAssigned
	status.PartiallyPublished = status.PublishedCount > 0 && !status.FullyPublished
	if status.TotalAssigned > 0 {
		status.Percent = math.Round(float64(status.PublishedCount)/float64(status.TotalAssigned)*10000) / 100
	}
	return status
}

func assignedClassIDs(test *model.Test, idsByName map[string]string) []string {
	ids := []string{}
	seen := make(map[string]bool)
	for _, name := range test.AssignedClassNames {
		id, ok := idsByName[name]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// uniqueNames drops blanks and repeats, keeping first-seen order.
func uniqueNames(names []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
