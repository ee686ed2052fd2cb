package service

import (
	"context"
	"errors"

	"github.com/stemsi/testcraft-backend/internal/docstore"
	"github.com/stemsi/testcraft-backend/internal/identity"
)

// Shared service errors. Handlers map them to response codes.
var (
	ErrUnauthenticated    = errors.New("no signed-in teacher")
	ErrNotFound           = errors.New("resource not found")
	ErrNotOwner           = errors.New("resource belongs to another teacher")
	ErrClassNameRequired  = errors.New("class name is required")
	ErrClassNotAssigned   = errors.New("class is not assigned to the test")
	ErrRecordNotInClass   = errors.New("score record does not belong to the class")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalidated = errors.New("session invalidated")
)

// currentOwner returns the signed-in teacher's ID.
func currentOwner(ctx context.Context) (string, error) {
	id, ok := identity.CurrentUserID(ctx)
	if !ok {
		return "", ErrUnauthenticated
	}
	return id, nil
}

// notFound maps a missing document to ErrNotFound and leaves other errors alone.
func notFound(err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
