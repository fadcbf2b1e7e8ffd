package admin

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventpulse/backend/internal/middleware"
	"github.com/eventpulse/backend/internal/models"
	"github.com/eventpulse/backend/pkg/response"
)

// Store is the persistence surface the moderation handlers need.
type Store interface {
	ListUsers(ctx context.Context) ([]models.UserModerationRow, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.UserStatus) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListEvents(ctx context.Context) ([]models.Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
}

// Handler handles admin moderation endpoints. All routes are mounted behind
// middleware.RequireAdmin, which re-checks the caller's stored role.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates an admin handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// ListUsers handles GET /admin/users.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		response.Internal(c, "failed to list users")
		return
	}
	if users == nil {
		users = []models.UserModerationRow{}
	}
	response.OK(c, gin.H{"users": users})
}

// UpdateRole handles PATCH /admin/users/:id/role.
func (h *Handler) UpdateRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user ID")
		return
	}
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidRole(req.Role) {
		response.BadRequest(c, "invalid role")
		return
	}
	if err := h.store.UpdateRole(c.Request.Context(), id, models.Role(req.Role)); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		h.logger.Error("update role failed", zap.Error(err))
		response.Internal(c, "failed to update user role")
		return
	}
	response.OK(c, gin.H{"message": "User role updated successfully"})
}

// UpdateStatus handles PATCH /admin/users/:id/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user ID")
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidUserStatus(req.Status) {
		response.BadRequest(c, "invalid status")
		return
	}
	if err := h.store.UpdateStatus(c.Request.Context(), id, models.UserStatus(req.Status)); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		h.logger.Error("update status failed", zap.Error(err))
		response.Internal(c, "failed to update user status")
		return
	}
	response.OK(c, gin.H{"message": "User status updated successfully"})
}

// DeleteUser handles DELETE /admin/users/:id. Self-deletion is rejected;
// everything the user owns cascades.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user ID")
		return
	}
	callerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if id == callerID {
		response.BadRequest(c, "cannot delete your own account")
		return
	}
	if err := h.store.DeleteUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		h.logger.Error("delete user failed", zap.Error(err))
		response.Internal(c, "failed to delete user")
		return
	}
	response.OK(c, gin.H{"message": "User deleted successfully"})
}

// ListEvents handles GET /admin/events.
func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.store.ListEvents(c.Request.Context())
	if err != nil {
		h.logger.Error("list events failed", zap.Error(err))
		response.Internal(c, "failed to list events")
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	response.OK(c, gin.H{"events": events})
}

// DeleteEvent handles DELETE /admin/events/:id.
func (h *Handler) DeleteEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event ID")
		return
	}
	if err := h.store.DeleteEvent(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("delete event failed", zap.Error(err))
		response.Internal(c, "failed to delete event")
		return
	}
	response.OK(c, gin.H{"message": "Event deleted successfully"})
}
