package team

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qehclinic/portal-backend/internal/content"
	"github.com/qehclinic/portal-backend/pkg/metrics"
	"github.com/qehclinic/portal-backend/pkg/middleware"
)

// Handler serves the team page: a public read plus editor-only writes.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	admin := middleware.RequireAdmin()
	g := r.Group("/api/v1/team")
	g.GET("", h.list)
	g.POST("", auth, admin, h.create)
	g.PUT("/:id", auth, admin, h.update)
	g.DELETE("/:id", auth, admin, h.remove)
	g.POST("/reorder", auth, admin, h.reorder)
}

type memberRequest struct {
	Name      string `json:"name"`
	Position  string `json:"position"`
	Bio       string `json:"bio"`
	ImageURL  string `json:"imageUrl"`
	ImagePath string `json:"imagePath"`
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) create(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.svc.Create(c.Request.Context(), &Member{
		Name:      req.Name,
		Position:  req.Position,
		Bio:       req.Bio,
		ImageURL:  req.ImageURL,
		ImagePath: req.ImagePath,
	})
	observe("create", err)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) update(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	err := h.svc.Update(c.Request.Context(), id, &Member{
		Name:      req.Name,
		Position:  req.Position,
		Bio:       req.Bio,
		ImageURL:  req.ImageURL,
		ImagePath: req.ImagePath,
	})
	observe("update", err)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handler) remove(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	observe("delete", err)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) reorder(c *gin.Context) {
	var req struct {
		Index     int    `json:"index"`
		Direction string `json:"direction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dir, err := content.ParseDirection(req.Direction)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err = h.svc.MoveMember(c.Request.Context(), req.Index, dir)
	observe("reorder", err)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, ErrNameRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrReorderContention):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func observe(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ContentWrites.WithLabelValues(Collection, op, outcome).Inc()
}
