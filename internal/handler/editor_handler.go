package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/testcraft-backend/internal/editor"
	"github.com/stemsi/testcraft-backend/internal/model"
	"github.com/stemsi/testcraft-backend/internal/response"
	"github.com/stemsi/testcraft-backend/internal/validator"
)

// EditorHandler exposes the stateless editor operations. Nothing is stored.
type EditorHandler struct{}

// NewEditorHandler creates a new EditorHandler.
func NewEditorHandler() *EditorHandler {
	return &EditorHandler{}
}

// Convert godoc
// POST /api/v1/teacher/editor/convert
// Returns the markup preview of plain text.
func (h *EditorHandler) Convert(c *gin.Context) {
	var req model.ConvertRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"markup": editor.ConvertPlainTextToMarkup(req.Text)})
}

// Apply godoc
// POST /api/v1/teacher/editor/apply
// Runs a sequence of edits on a draft and returns the resulting view.
// Edits on choices that do not exist leave the draft unchanged.
func (h *EditorHandler) Apply(c *gin.Context) {
	var req model.ApplyEditsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	d := editor.FromRequest(req.Draft)
	for _, op := range req.Operations {
		d.Apply(op)
	}

	response.Success(c, http.StatusOK, gin.H{"draft": d.View()})
}
