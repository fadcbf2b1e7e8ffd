package rsvps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventpulse/backend/internal/middleware"
	"github.com/eventpulse/backend/internal/models"
	"github.com/eventpulse/backend/pkg/response"
)

// qrTokenRetries bounds regeneration attempts on a QR token collision.
const qrTokenRetries = 3

// Store is the persistence surface the RSVP handlers need.
type Store interface {
	Create(ctx context.Context, rv *models.RSVP) (created bool, err error)
	GetByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*models.RSVP, error)
	GetConfirmed(ctx context.Context, eventID, userID uuid.UUID) (*models.RSVP, error)
	GetAnyConfirmedForEvent(ctx context.Context, eventID uuid.UUID) (*models.RSVP, error)
	CheckIn(ctx context.Context, eventID uuid.UUID, qrCode string, organizerID uuid.UUID) (rv *models.RSVP, alreadyCheckedIn bool, err error)
}

// EventSource is the slice of the event store the RSVP handlers need: plain
// existence for reservation, ownership-scoped lookup for check-in.
type EventSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	GetOwned(ctx context.Context, id, userID uuid.UUID, admin bool) (*models.Event, error)
}

// CreateRequest is the body for POST /rsvp.
type CreateRequest struct {
	EventID string  `json:"eventId" binding:"required"`
	Name    string  `json:"name" binding:"required"`
	Email   string  `json:"email" binding:"required,email"`
	Phone   *string `json:"phone"`
	Notes   *string `json:"notes"`
}

// Handler handles RSVP and check-in HTTP endpoints.
type Handler struct {
	store  Store
	events EventSource
	logger *zap.Logger
}

// NewHandler creates an RSVP handler.
func NewHandler(store Store, events EventSource, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, events: events, logger: logger}
}

// newQRToken builds an opaque globally unique ticket token. The event and
// user ids scope it, the nanosecond timestamp disambiguates; the store's
// unique index is the actual uniqueness guarantee, with regeneration on
// collision.
func newQRToken(eventID, userID uuid.UUID) string {
	return fmt.Sprintf("rsvp_%s_%s_%d", eventID, userID, time.Now().UnixNano())
}

// Create handles POST /rsvp. Creating an RSVP for a pair that already has
// one returns the existing record unchanged; that is success, not a
// conflict.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "event ID, name, and email are required")
		return
	}
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		response.BadRequest(c, "invalid event ID")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	ctx := c.Request.Context()

	if _, err := h.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("load event failed", zap.Error(err))
		response.Internal(c, "failed to create RSVP")
		return
	}

	if existing, err := h.store.GetByEventAndUser(ctx, eventID, userID); err == nil {
		response.OK(c, gin.H{"message": "RSVP already exists", "rsvp": existing})
		return
	} else if !errors.Is(err, models.ErrNotFound) {
		h.logger.Error("lookup rsvp failed", zap.Error(err))
		response.Internal(c, "failed to create RSVP")
		return
	}

	rv := &models.RSVP{
		EventID:   eventID,
		UserID:    userID,
		UserName:  req.Name,
		UserEmail: req.Email,
		Phone:     req.Phone,
		Notes:     req.Notes,
	}
	for attempt := 0; ; attempt++ {
		rv.QRCode = newQRToken(eventID, userID)
		_, err = h.store.Create(ctx, rv)
		if !errors.Is(err, errQRCodeTaken) || attempt+1 >= qrTokenRetries {
			break
		}
	}
	if err != nil {
		h.logger.Error("create rsvp failed", zap.Error(err),
			zap.String("event_id", eventID.String()), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to create RSVP")
		return
	}

	response.OK(c, gin.H{"message": "RSVP created successfully", "rsvp": rv})
}

// Check handles GET /rsvp/check/:eventId. Returns the caller's confirmed
// RSVP, or null. If the caller organizes the event and has no personal RSVP,
// any confirmed RSVP for the event is returned instead. Organizers already
// see every RSVP of their event, so the fallback is gated on ownership and
// leaks nothing.
func (h *Handler) Check(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event ID")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	ctx := c.Request.Context()

	rv, err := h.store.GetConfirmed(ctx, eventID, userID)
	if err == nil {
		response.OK(c, gin.H{"rsvp": rv})
		return
	}
	if !errors.Is(err, models.ErrNotFound) {
		h.logger.Error("check rsvp failed", zap.Error(err))
		response.Internal(c, "failed to check RSVP")
		return
	}

	if _, ownErr := h.events.GetOwned(ctx, eventID, userID, false); ownErr == nil {
		if any, anyErr := h.store.GetAnyConfirmedForEvent(ctx, eventID); anyErr == nil {
			response.OK(c, gin.H{"rsvp": any})
			return
		}
	}
	response.OK(c, gin.H{"rsvp": nil})
}
