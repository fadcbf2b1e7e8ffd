package rsvps

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventpulse/backend/internal/middleware"
	"github.com/eventpulse/backend/internal/models"
	"github.com/eventpulse/backend/pkg/response"
)

// CheckInRequest is the body for POST /rsvp/check-in. The qrCode is the
// decoded string scanned client-side; the server never sees image data.
type CheckInRequest struct {
	EventID string `json:"eventId" binding:"required"`
	QRCode  string `json:"qrCode" binding:"required"`
}

// Attendee is the ticket holder snapshot returned after a scan.
type Attendee struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	RSVPID string `json:"rsvpId"`
}

// CheckIn handles POST /rsvp/check-in. Only the event's organizer can scan;
// a missing event and an event owned by someone else both yield 404. Repeat
// scans succeed with alreadyCheckedIn=true and never increment the counter
// a second time.
func (h *Handler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "QR code and event ID are required")
		return
	}
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		response.BadRequest(c, "invalid event ID")
		return
	}
	organizerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	ctx := c.Request.Context()

	if _, err := h.events.GetOwned(ctx, eventID, organizerID, false); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "event not found or you don't have permission")
			return
		}
		h.logger.Error("load event failed", zap.Error(err))
		response.Internal(c, "failed to check in attendee")
		return
	}

	rv, already, err := h.store.CheckIn(ctx, eventID, req.QRCode, organizerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "invalid QR code or RSVP not found")
			return
		}
		h.logger.Error("check-in failed", zap.Error(err), zap.String("event_id", eventID.String()))
		response.Internal(c, "failed to check in attendee")
		return
	}

	msg := "Check-in successful"
	if already {
		msg = "Attendee was already checked in"
	}
	response.OK(c, gin.H{
		"message":          msg,
		"alreadyCheckedIn": already,
		"attendee": Attendee{
			Name:   rv.UserName,
			Email:  rv.UserEmail,
			RSVPID: rv.ID.String(),
		},
	})
}
