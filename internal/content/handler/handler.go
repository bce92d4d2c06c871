package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qehclinic/portal-backend/internal/content"
	"github.com/qehclinic/portal-backend/internal/content/repository"
	"github.com/qehclinic/portal-backend/internal/content/service"
	"github.com/qehclinic/portal-backend/pkg/metrics"
	"github.com/qehclinic/portal-backend/pkg/middleware"
)

// Handler exposes the content collections over HTTP. Reads are gated per
// collection (public, signed-in or officer-only); all writes require an
// editor role.
type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the collections under /api/v1. auth validates the
// bearer token and loads the caller's claims.
func (h *Handler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	admin := middleware.RequireAdmin()

	// Clinic updates are for signed-in users; the grouped view drives the
	// category tabs.
	cu := r.Group("/api/v1/clinic-updates", auth)
	cu.GET("", h.list(content.CollClinicUpdates))
	cu.GET("/grouped", h.grouped)
	cu.POST("", admin, h.create(content.CollClinicUpdates))
	cu.PUT("/:id", admin, h.update(content.CollClinicUpdates))
	cu.DELETE("/:id", admin, h.remove(content.CollClinicUpdates))

	h.mountTabs(r, auth, admin, "/api/v1/patients-tabs", content.CollPatientTabs, nil)
	h.mountTabs(r, auth, admin, "/api/v1/counselling-tabs", content.CollCounsellingTabs, nil)
	h.mountTabs(r, auth, admin, "/api/v1/support-resources", content.CollSupportResources, nil)
	h.mountTabs(r, auth, admin, "/api/v1/officer-resources", content.CollOfficerResources, []gin.HandlerFunc{auth, admin})
}

// mountTabs wires a manually ordered tab collection. readGuards is empty for
// public collections.
func (h *Handler) mountTabs(r *gin.Engine, auth, admin gin.HandlerFunc, path, coll string, readGuards []gin.HandlerFunc) {
	g := r.Group(path)
	g.GET("", append(readGuards, h.list(coll))...)
	g.POST("", auth, admin, h.create(coll))
	g.PUT("/:id", auth, admin, h.update(coll))
	g.DELETE("/:id", auth, admin, h.remove(coll))
	g.POST("/reorder", auth, admin, h.reorder(coll))
}

type recordRequest struct {
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	ImageURL  string    `json:"imageUrl"`
	ImagePath string    `json:"imagePath"`
	Referred  bool      `json:"referred"`
	Date      time.Time `json:"date"`
}

func (h *Handler) list(coll string) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := h.svc.List(c.Request.Context(), coll)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func (h *Handler) grouped(c *gin.Context) {
	grouped, err := h.svc.Grouped(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, grouped)
}

func (h *Handler) create(coll string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req recordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id, err := h.svc.Create(c.Request.Context(), coll, &content.Record{
			Title:     req.Title,
			Body:      req.Body,
			Category:  req.Category,
			ImageURL:  req.ImageURL,
			ImagePath: req.ImagePath,
			Referred:  req.Referred,
			Date:      req.Date,
		})
		observe(coll, "create", err)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}

// updateRequest uses pointers for the optional fields so a PUT body that
// omits them leaves the stored values untouched.
type updateRequest struct {
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	Category  string  `json:"category"`
	ImageURL  *string `json:"imageUrl"`
	ImagePath *string `json:"imagePath"`
	Referred  *bool   `json:"referred"`
}

func (h *Handler) update(coll string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id := c.Param("id")
		err := h.svc.Update(c.Request.Context(), coll, id, content.Update{
			Title:     req.Title,
			Body:      req.Body,
			Category:  req.Category,
			ImageURL:  req.ImageURL,
			ImagePath: req.ImagePath,
			Referred:  req.Referred,
		})
		observe(coll, "update", err)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	}
}

func (h *Handler) remove(coll string) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := h.svc.Delete(c.Request.Context(), coll, c.Param("id"))
		observe(coll, "delete", err)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}

func (h *Handler) reorder(coll string) gin.HandlerFunc {
	return func(c *gin.Context) {
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
			writeError(c, err)
			return
		}
		err = h.svc.MoveItem(c.Request.Context(), coll, req.Index, dir)
		observe(coll, "reorder", err)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func observe(coll, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ContentWrites.WithLabelValues(coll, op, outcome).Inc()
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, content.ErrTitleRequired),
		errors.Is(err, content.ErrBadDirection),
		errors.Is(err, service.ErrUnknownCategory),
		errors.Is(err, service.ErrNotSortable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrReorderContention):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
