package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/testcraft-backend/internal/model"
	"github.com/stemsi/testcraft-backend/internal/response"
	"github.com/stemsi/testcraft-backend/internal/service"
	"github.com/stemsi/testcraft-backend/internal/validator"
)

// ClassHandler handles the signed-in teacher's classes.
type ClassHandler struct {
	classService *service.ClassService
	testService  *service.TestService
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classService *service.ClassService, testService *service.TestService) *ClassHandler {
	return &ClassHandler{classService: classService, testService: testService}
}

// ListClasses godoc
// GET /api/v1/teacher/classes
// Lists the teacher's classes sorted by name.
func (h *ClassHandler) ListClasses(c *gin.Context) {
	classes, err := h.classService.List(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// CreateClass godoc
// POST /api/v1/teacher/classes
func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req model.CreateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Create(c.Request.Context(), req)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Created(c, gin.H{"class": class})
}

// DeleteClass godoc
// DELETE /api/v1/teacher/classes/:id
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	if err := h.classService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ListPublishedTests godoc
// GET /api/v1/teacher/classes/:id/published-tests
// Lists the tests currently published to a class.
func (h *ClassHandler) ListPublishedTests(c *gin.Context) {
	tests, err := h.testService.PublishedForClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}
