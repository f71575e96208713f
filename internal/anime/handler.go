package anime

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"animespotlight/internal/events"
	"animespotlight/internal/validate"
	"animespotlight/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *events.Hub
}

func NewHandler(repo *Repo, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)          // GET /animes
	rg.GET("/:id", h.getByID)   // GET /animes/:id
	rg.POST("", h.create)       // POST /animes
	rg.PUT("/:id", h.update)    // PUT /animes/:id
	rg.DELETE("/:id", h.remove) // DELETE /animes/:id
}

func (h *Handler) list(c *gin.Context) {
	animes, err := h.Repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"animes": animes,
		"count":  len(animes),
	})
}

func (h *Handler) getByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	a, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "anime not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"anime": a})
}

func (h *Handler) create(c *gin.Context) {
	var fields models.AnimeFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if errs := validate.All(fields, time.Now()); !errs.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": errs,
		})
		return
	}

	a, err := h.Repo.Create(c.Request.Context(), fields)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	h.broadcast(events.TypeCreated, a)
	c.JSON(http.StatusCreated, gin.H{"anime": a})
}

func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var fields models.AnimeFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if errs := validate.All(fields, time.Now()); !errs.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": errs,
		})
		return
	}

	a, err := h.Repo.Update(c.Request.Context(), id, fields)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "anime not found"})
		return
	}

	h.broadcast(events.TypeUpdated, *a)
	c.JSON(http.StatusOK, gin.H{"anime": a})
}

func (h *Handler) remove(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	deleted, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "anime not found"})
		return
	}

	h.broadcast(events.TypeDeleted, models.Anime{ID: id})
	c.JSON(http.StatusOK, gin.H{"message": "anime deleted"})
}

func (h *Handler) broadcast(eventType string, a models.Anime) {
	if h.Hub == nil {
		return
	}
	h.Hub.BroadcastJSON(events.EntryEvent{
		Type:    eventType,
		AnimeID: a.ID,
		Title:   a.Title,
		Status:  string(a.Status),
		At:      time.Now().UTC(),
	})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
