package audit

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qehclinic/portal-backend/pkg/metrics"
	"github.com/qehclinic/portal-backend/pkg/middleware"
)

// Handler exposes the audit studies to the officer screens. Every route is
// editor-only: study rows carry patient identifiers.
type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	g := r.Group("/api/v1/audit", auth, middleware.RequireAdmin())
	g.GET("/:study/records", h.list)
	g.POST("/:study/records", h.create)
	g.PUT("/:study/records/:id", h.update)
	g.DELETE("/:study/records/:id", h.remove)
	g.GET("/:study/export", h.export)
}

func (h *Handler) study(c *gin.Context) (Study, bool) {
	s, ok := Lookup(c.Param("study"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown study"})
	}
	return s, ok
}

func (h *Handler) list(c *gin.Context) {
	s, ok := h.study(c)
	if !ok {
		return
	}
	list, err := h.repo.List(c.Request.Context(), s)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"study": s.Key, "title": s.Title, "fields": s.Fields, "records": list})
}

func (h *Handler) create(c *gin.Context) {
	s, ok := h.study(c)
	if !ok {
		return
	}
	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.CheckFields(fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.repo.Create(c.Request.Context(), s, fields)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) update(c *gin.Context) {
	s, ok := h.study(c)
	if !ok {
		return
	}
	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.CheckFields(fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.repo.Update(c.Request.Context(), s, c.Param("id"), fields)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
}

func (h *Handler) remove(c *gin.Context) {
	s, ok := h.study(c)
	if !ok {
		return
	}
	err := h.repo.Delete(c.Request.Context(), s, c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// export streams the study as a CSV attachment named after its collection.
func (h *Handler) export(c *gin.Context) {
	s, ok := h.study(c)
	if !ok {
		return
	}
	list, err := h.repo.List(c.Request.Context(), s)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.Collection+".csv"))
	if err := ExportCSV(c.Writer, s, list); err != nil {
		// Headers are gone at this point; just log through gin's error list.
		_ = c.Error(err)
		return
	}
	metrics.CSVExports.WithLabelValues(s.Key).Inc()
}
