package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/testcraft-backend/internal/model"
	"github.com/stemsi/testcraft-backend/internal/response"
	"github.com/stemsi/testcraft-backend/internal/service"
	"github.com/stemsi/testcraft-backend/internal/validator"
)

// TestHandler handles test authoring and publication.
type TestHandler struct {
	testService *service.TestService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(testService *service.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// ListTests godoc
// GET /api/v1/teacher/tests
// Lists the teacher's tests with their publication status.
func (h *TestHandler) ListTests(c *gin.Context) {
	tests, err := h.testService.List(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// CreateTest godoc
// POST /api/v1/teacher/tests
// Assembles a test from bank items.
func (h *TestHandler) CreateTest(c *gin.Context) {
	var req model.CreateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.testService.Create(c.Request.Context(), req)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Created(c, gin.H{"test": test})
}

// GetTest godoc
// GET /api/v1/teacher/tests/:id
// Returns the test in the shape of the test editor.
func (h *TestHandler) GetTest(c *gin.Context) {
	view, err := h.testService.Edit(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": view})
}

// UpdateTest godoc
// PUT /api/v1/teacher/tests/:id
// Saves the test editor. Complete new questions are added to the item bank.
func (h *TestHandler) UpdateTest(c *gin.Context) {
	var req model.UpdateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.testService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// DeleteTest godoc
// DELETE /api/v1/teacher/tests/:id
func (h *TestHandler) DeleteTest(c *gin.Context) {
	if err := h.testService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// PublishTest godoc
// POST /api/v1/teacher/tests/:id/publish
// Publishes the test to exactly the given classes. An empty list unpublishes it.
func (h *TestHandler) PublishTest(c *gin.Context) {
	var req model.PublishTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	overview, err := h.testService.Publish(c.Request.Context(), c.Param("id"), req.ClassIDs)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": overview})
}
