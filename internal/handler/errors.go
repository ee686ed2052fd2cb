package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/testcraft-backend/internal/blobstore"
	"github.com/stemsi/testcraft-backend/internal/editor"
	"github.com/stemsi/testcraft-backend/internal/response"
	"github.com/stemsi/testcraft-backend/internal/service"
)

// failFromError translates a service error into its API error code.
// Unknown errors are attached to the context for the request logger.
func failFromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
	case errors.Is(err, service.ErrSessionInvalidated):
		response.Fail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrNotOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotOwner)
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrEmailTaken):
		response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
	case errors.Is(err, service.ErrClassNameRequired):
		response.Fail(c, http.StatusBadRequest, response.ErrClassNameRequired)
	case errors.Is(err, service.ErrClassNotAssigned):
		response.Fail(c, http.StatusBadRequest, response.ErrClassNotAssigned)
	case errors.Is(err, service.ErrRecordNotInClass):
		response.Fail(c, http.StatusNotFound, response.ErrRecordNotInClass)
	case errors.Is(err, editor.ErrTestNameRequired):
		response.Fail(c, http.StatusBadRequest, response.ErrTestNameRequired)
	case errors.Is(err, editor.ErrTestClassRequired):
		response.Fail(c, http.StatusBadRequest, response.ErrTestClassRequired)
	case errors.Is(err, editor.ErrCorrectChoiceOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrCorrectChoice)
	case errors.Is(err, service.ErrUnsupportedFileType):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
	case errors.Is(err, blobstore.ErrInvalidPath):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPath)
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

