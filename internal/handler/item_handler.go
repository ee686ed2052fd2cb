package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/testcraft-backend/internal/model"
	"github.com/stemsi/testcraft-backend/internal/response"
	"github.com/stemsi/testcraft-backend/internal/service"
	"github.com/stemsi/testcraft-backend/internal/validator"
)

// ItemHandler handles the item bank.
type ItemHandler struct {
	itemService *service.ItemService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(itemService *service.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// ListItems godoc
// GET /api/v1/teacher/items
func (h *ItemHandler) ListItems(c *gin.Context) {
	items, err := h.itemService.List(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"items": items})
}

// CreateItem godoc
// POST /api/v1/teacher/items
// Saves an editor draft as a new bank item. Plain-mode drafts are converted
// to markup on save.
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req model.DraftRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	item, err := h.itemService.Create(c.Request.Context(), req)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Created(c, gin.H{"item": item})
}

// GetItem godoc
// GET /api/v1/teacher/items/:id
// Returns the stored item together with its editor view.
func (h *ItemHandler) GetItem(c *gin.Context) {
	item, err := h.itemService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	view, err := h.itemService.Edit(c.Request.Context(), item.ID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"item": item, "editor": view})
}

// UpdateItem godoc
// PUT /api/v1/teacher/items/:id
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	var req model.DraftRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	item, err := h.itemService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"item": item})
}

// DeleteItem godoc
// DELETE /api/v1/teacher/items/:id
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	if err := h.itemService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
