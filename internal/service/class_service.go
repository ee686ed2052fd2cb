package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/testcraft-backend/internal/model"
	"github.com/stemsi/testcraft-backend/internal/repository"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ClassService handles class business logic.
type ClassService struct {
	classRepo *repository.ClassRepository
	log       zerolog.Logger
}

// NewClassService creates a new ClassService.
func NewClassService(classRepo *repository.ClassRepository, log zerolog.Logger) *ClassService {
	return &ClassService{
		classRepo: classRepo,
		log:       log.With().Str("component", "class_service").Logger(),
	}
}

// Create adds a class for the signed-in teacher. The name is trimmed and must not be blank.
func (s *ClassService) Create(ctx context.Context, req model.CreateClassRequest) (*model.Class, error) {
	ownerID, err := currentOwner(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrClassNameRequired
	}

	class := &model.Class{Name: name, OwnerID: ownerID, CreatedAt: time.Now().UTC()}
	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, fmt.Errorf("create class: %w", err)
	}
	return class, nil
}

// List returns the signed-in teacher's classes sorted by name.
func (s *ClassService) List(ctx context.Context) ([]model.Class, error) {
	ownerID, err := currentOwner(ctx)
	if err != nil {
		return nil, err
	}
	classes, err := s.classRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	SortClasses(classes)
	return classes, nil
}

// SortClasses orders classes by name the way a reader would expect,
// ignoring case and accents before falling back to them.
func SortClasses(classes []model.Class) {
	col := collate.New(language.Und, collate.Loose, collate.Numeric)
	slices.SortStableFunc(classes, func(a, b model.Class) int {
		return col.CompareString(a.Name, b.Name)
	})
}

// GetOwned returns a class of the signed-in teacher.
func (s *ClassService) GetOwned(ctx context.Context, id string) (*model.Class, error) {
	ownerID, err := currentOwner(ctx)
	if err != nil {
		return nil, err
	}
	class, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if class.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return class, nil
}

// IDsByName maps the signed-in teacher's class names to class IDs.
func (s *ClassService) IDsByName(ctx context.Context) (map[string]string, error) {
	classes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(classes))
	for _, c := range classes {
		if _, dup := ids[c.Name]; !dup {
			ids[c.Name] = c.ID
		}
	}
	return ids, nil
}

// Delete removes a class of the signed-in teacher.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetOwned(ctx, id); err != nil {
		return err
	}
	if err := s.classRepo.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.log.Info().Str("class_id", id).Msg("Class deleted")
	return nil
}
