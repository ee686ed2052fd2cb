package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/testcraft-backend/internal/response"
	"github.com/stemsi/testcraft-backend/internal/service"
)

// AnalyticsHandler serves class results and their spreadsheet exports.
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// ClassSummary godoc
// GET /api/v1/teacher/classes/:id/analytics
// Returns the class dashboard: average, tests, students, per-test stats and records.
func (h *AnalyticsHandler) ClassSummary(c *gin.Context) {
	summary, err := h.analyticsService.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}

// TestStats godoc
// GET /api/v1/teacher/classes/:id/analytics/tests/:test_id
func (h *AnalyticsHandler) TestStats(c *gin.Context) {
	stats, err := h.analyticsService.Group(c.Request.Context(), c.Param("id"), c.Param("test_id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// ExportTestStats godoc
// GET /api/v1/teacher/classes/:id/analytics/tests/:test_id/export
func (h *AnalyticsHandler) ExportTestStats(c *gin.Context) {
	export, err := h.analyticsService.ExportGroup(c.Request.Context(), c.Param("id"), c.Param("test_id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	sendExport(c, export)
}

// StudentTrend godoc
// GET /api/v1/teacher/classes/:id/analytics/students/:student/trend
func (h *AnalyticsHandler) StudentTrend(c *gin.Context) {
	trend, err := h.analyticsService.Trend(c.Request.Context(), c.Param("id"), c.Param("student"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"trend": trend})
}

// Attempt godoc
// GET /api/v1/teacher/classes/:id/analytics/records/:record_id
// Returns the per-question breakdown of one attempt.
func (h *AnalyticsHandler) Attempt(c *gin.Context) {
	breakdown, err := h.analyticsService.Attempt(c.Request.Context(), c.Param("id"), c.Param("record_id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": breakdown})
}

// ExportAttempt godoc
// GET /api/v1/teacher/classes/:id/analytics/records/:record_id/export
func (h *AnalyticsHandler) ExportAttempt(c *gin.Context) {
	export, err := h.analyticsService.ExportAttempt(c.Request.Context(), c.Param("id"), c.Param("record_id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	sendExport(c, export)
}

func sendExport(c *gin.Context, export *service.Export) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, service.XLSXContentType, export.Data)
}
