package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appErr "github.com/xxxsen/propinspect/internal/pkg/errors"
	"github.com/xxxsen/propinspect/internal/pkg/response"
	"github.com/xxxsen/propinspect/internal/service"
)

// multipartOverhead leaves room for form boundaries and the item_id field.
const multipartOverhead = 64 * 1024

type PhotoHandler struct {
	photos   *service.PhotoService
	maxBytes int64
}

func NewPhotoHandler(photos *service.PhotoService, maxBytes int64) *PhotoHandler {
	return &PhotoHandler{photos: photos, maxBytes: maxBytes}
}

func (h *PhotoHandler) Upload(c *gin.Context) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}
	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, "photo exceeds "+formatUploadLimit(h.maxBytes))
			return
		}
		response.Error(c, http.StatusBadRequest, "file is required")
		return
	}
	if h.maxBytes > 0 && file.Size > h.maxBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "photo exceeds "+formatUploadLimit(h.maxBytes))
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to open file")
		return
	}
	defer opened.Close()
	contentType, err := sniffContentType(opened)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to read file")
		return
	}
	photo, err := h.photos.Upload(c.Request.Context(), getUserID(c), c.Param("id"), service.PhotoUpload{
		ItemID:      c.PostForm("item_id"),
		ContentType: contentType,
		Size:        file.Size,
		Body:        opened,
	})
	if err != nil {
		if errors.Is(err, appErr.ErrTooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, "photo exceeds "+formatUploadLimit(h.maxBytes))
			return
		}
		handleError(c, err)
		return
	}
	response.Success(c, photo)
}

func (h *PhotoHandler) List(c *gin.Context) {
	photos, err := h.photos.List(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": photos})
}

func (h *PhotoHandler) Get(c *gin.Context) {
	content, err := h.photos.Open(c.Request.Context(), getUserID(c), c.Param("id"), c.Param("photo_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	writePhoto(c, content)
}

func (h *PhotoHandler) PublicGet(c *gin.Context) {
	content, err := h.photos.OpenShared(c.Request.Context(), c.Param("token"), c.Param("photo_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	writePhoto(c, content)
}

func writePhoto(c *gin.Context, content *service.PhotoContent) {
	defer content.Body.Close()
	c.Header("Content-Type", content.Photo.ContentType)
	c.Header("Content-Length", strconv.FormatInt(content.Photo.Size, 10))
	c.Header("X-Content-Type-Options", "nosniff")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, content.Body)
}

// formatUploadLimit renders a byte limit for error messages, rounding down to
// whole MB, or whole KB below one MB.
func formatUploadLimit(limit int64) string {
	const kb, mb = 1024, 1024 * 1024
	if limit >= mb {
		return strconv.FormatInt(limit/mb, 10) + "MB"
	}
	return strconv.FormatInt(max(limit/kb, 1), 10) + "KB"
}

func sniffContentType(file io.ReadSeeker) (string, error) {
	buf := make([]byte, 512)
	read, err := file.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:read]), nil
}
