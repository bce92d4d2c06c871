package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qehclinic/portal-backend/pkg/middleware"
)

// Uploader is the slice of the storage layer the upload endpoint needs.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
}

// UploadHandler accepts editor image uploads and returns the public URL plus
// the object key, which clients store alongside the record so deletes can
// clean up.
type UploadHandler struct {
	store Uploader
}

func NewUploadHandler(store Uploader) *UploadHandler {
	return &UploadHandler{store: store}
}

func (h *UploadHandler) Register(r *gin.Engine, auth gin.HandlerFunc) {
	r.POST("/api/v1/uploads", auth, middleware.RequireAdmin(), h.Upload)
}

func (h *UploadHandler) Upload(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage not configured"})
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only image uploads are accepted"})
		return
	}

	key := fmt.Sprintf("uploads/%d%s", time.Now().UnixNano(), path.Ext(header.Filename))
	url, err := h.store.Upload(c.Request.Context(), key, file, header.Size, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url, "path": key})
}
