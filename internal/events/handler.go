package events

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventpulse/backend/internal/middleware"
	"github.com/eventpulse/backend/internal/models"
	"github.com/eventpulse/backend/pkg/response"
)

// Store is the persistence surface the event handlers need.
type Store interface {
	Create(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context, f models.EventFilters) ([]models.Event, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]models.Event, error)
	Update(ctx context.Context, e *models.Event, userID uuid.UUID, admin bool) error
	Delete(ctx context.Context, id, userID uuid.UUID, admin bool) error
}

// EventRequest is the body for POST /events and PUT /events/:id.
type EventRequest struct {
	Name        string   `json:"name" binding:"required"`
	Date        string   `json:"date" binding:"required"` // "2006-01-02"
	Time        string   `json:"time" binding:"required"` // "15:04"
	Location    string   `json:"location" binding:"required"`
	Area        string   `json:"area"`
	Description string   `json:"description" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Image       *string  `json:"image"`
	Tags        []string `json:"tags"`
	Featured    bool     `json:"featured"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates an event handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// scheduledInstant combines the date and time fields into one instant.
func scheduledInstant(date, clock string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04", date+" "+clock)
}

func (h *Handler) eventFromRequest(c *gin.Context) (*models.Event, bool) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "all required fields must be provided")
		return nil, false
	}

	instant, err := scheduledInstant(req.Date, req.Time)
	if err != nil {
		response.BadRequest(c, "invalid date or time")
		return nil, false
	}
	// Validated once here; an event silently becomes completed after its
	// instant passes, with no re-validation.
	if !instant.After(time.Now()) {
		response.BadRequest(c, "event date must be in the future")
		return nil, false
	}

	// Only admins may set featured; organizer requests are silently
	// downgraded rather than rejected.
	featured := req.Featured
	if c.GetString(middleware.ContextUserRole) != string(models.RoleAdmin) {
		featured = false
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	return &models.Event{
		Name:        req.Name,
		Description: req.Description,
		Date:        instant,
		Location:    req.Location,
		Area:        req.Area,
		Category:    req.Category,
		Tags:        tags,
		Image:       req.Image,
		Featured:    featured,
	}, true
}

// Create handles POST /events (authenticated; the caller becomes organizer).
func (h *Handler) Create(c *gin.Context) {
	e, ok := h.eventFromRequest(c)
	if !ok {
		return
	}
	e.Organizer = c.MustGet(middleware.ContextUserID).(uuid.UUID)

	if err := h.store.Create(c.Request.Context(), e); err != nil {
		h.logger.Error("create event failed", zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, gin.H{"message": "Event created successfully", "eventId": e.ID})
}

// List handles GET /events (public).
func (h *Handler) List(c *gin.Context) {
	f := models.EventFilters{
		Category: c.Query("category"),
		Area:     c.Query("area"),
	}
	if v := c.Query("featured"); v == "true" || v == "false" {
		featured := v == "true"
		f.Featured = &featured
	}
	switch c.Query("status") {
	case string(models.EventUpcoming):
		f.Status = models.EventUpcoming
	case string(models.EventCompleted):
		f.Status = models.EventCompleted
	}
	if v := c.Query("date_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.DateFrom = &t
		}
	}
	if v := c.Query("date_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.DateTo = &t
		}
	}

	list, err := h.store.List(c.Request.Context(), f)
	if err != nil {
		h.logger.Error("list events failed", zap.Error(err))
		response.Internal(c, "failed to list events")
		return
	}
	if list == nil {
		list = []models.Event{}
	}
	response.OK(c, gin.H{"events": list})
}

// GetByID handles GET /events/:id (public).
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("get event failed", zap.Error(err))
		response.Internal(c, "failed to load event")
		return
	}
	response.OK(c, gin.H{"event": e})
}

// MyEvents handles GET /events/my (authenticated organizer dashboard).
func (h *Handler) MyEvents(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.store.ListByOrganizer(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list my events failed", zap.Error(err))
		response.Internal(c, "failed to list events")
		return
	}
	if list == nil {
		list = []models.Event{}
	}
	response.OK(c, gin.H{"events": list})
}

// Update handles PUT /events/:id (owner or admin). A missing event and an
// event owned by someone else both yield 404.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, ok := h.eventFromRequest(c)
	if !ok {
		return
	}
	e.ID = id

	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	admin := c.GetString(middleware.ContextUserRole) == string(models.RoleAdmin)

	if err := h.store.Update(c.Request.Context(), e, userID, admin); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "event not found or you don't have permission to edit it")
			return
		}
		h.logger.Error("update event failed", zap.Error(err))
		response.Internal(c, "failed to update event")
		return
	}
	response.OK(c, gin.H{"message": "Event updated successfully"})
}

// Delete handles DELETE /events/:id (owner or admin). RSVPs cascade.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	admin := c.GetString(middleware.ContextUserRole) == string(models.RoleAdmin)

	if err := h.store.Delete(c.Request.Context(), id, userID, admin); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "event not found or you don't have permission to delete it")
			return
		}
		h.logger.Error("delete event failed", zap.Error(err))
		response.Internal(c, "failed to delete event")
		return
	}
	response.OK(c, gin.H{"message": "Event deleted successfully"})
}
