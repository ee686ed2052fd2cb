package repository

import (
	"context"
	"strings"
	"time"

	"github.com/stemsi/testcraft-backend/internal/docstore"
	"github.com/stemsi/testcraft-backend/internal/model"
)

// teacherDocument is the stored shape of a teacher. Unlike model.Teacher it
// keeps the password hash.
type teacherDocument struct {
	ID           string    `json:"id,omitempty"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// TeacherRepository handles teacher account data access.
type TeacherRepository struct {
	store docstore.Store
}

// NewTeacherRepository creates a new TeacherRepository.
func NewTeacherRepository(store docstore.Store) *TeacherRepository {
	return &TeacherRepository{store: store}
}

// NormalizeEmail lowercases and trims an email for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a teacher and sets its ID.
func (r *TeacherRepository) Create(ctx context.Context, t *model.Teacher) error {
	doc := toTeacherDocument(t)
	id, err := r.store.Create(ctx, docstore.CollectionTeachers, doc)
	if err != nil {
		return err
	}
	t.ID = id
	t.Email = doc.Email
	return nil
}

// GetByID retrieves a teacher by ID.
func (r *TeacherRepository) GetByID(ctx context.Context, id string) (*model.Teacher, error) {
	var doc teacherDocument
	if err := r.store.Get(ctx, docstore.CollectionTeachers, id, &doc); err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

// GetByEmail retrieves a teacher by email, ignoring case.
func (r *TeacherRepository) GetByEmail(ctx context.Context, email string) (*model.Teacher, error) {
	docs, err := docstore.QueryAs[teacherDocument](ctx, r.store, docstore.CollectionTeachers,
		docstore.Eq("email", NormalizeEmail(email)))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, docstore.ErrNotFound
	}
	return docs[0].toModel(), nil
}

func toTeacherDocument(t *model.Teacher) teacherDocument {
	return teacherDocument{
		ID:           t.ID,
		Email:        NormalizeEmail(t.Email),
		Name:         t.Name,
		PasswordHash: t.PasswordHash,
		CreatedAt:    t.CreatedAt,
	}
}

func (d teacherDocument) toModel() *model.Teacher {
	return &model.Teacher{
		ID:           d.ID,
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}
