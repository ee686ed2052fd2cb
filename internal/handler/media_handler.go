package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/testcraft-backend/internal/blobstore"
	"github.com/stemsi/testcraft-backend/internal/response"
	"github.com/stemsi/testcraft-backend/internal/service"
)

// MediaHandler handles the teacher's image bank.
type MediaHandler struct {
	mediaService *service.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// UploadMedia godoc
// POST /api/v1/teacher/media/upload
// Uploads an image file and returns its reference and URL.
func (h *MediaHandler) UploadMedia(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	ref, err := h.mediaService.SaveImage(c.Request.Context(), service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Created(c, gin.H{"image": ref})
}

// ListMedia godoc
// GET /api/v1/teacher/media
func (h *MediaHandler) ListMedia(c *gin.Context) {
	refs, err := h.mediaService.List(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"images": refs})
}

// DeleteMedia godoc
// DELETE /api/v1/teacher/media?ref=itemImages/...
func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	ref := c.Query("ref")
	if ref == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"ref": "ref is a required field"})
		return
	}

	if err := h.mediaService.Delete(c.Request.Context(), blobstore.Ref(ref)); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
