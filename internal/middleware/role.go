package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventpulse/backend/internal/models"
	"github.com/eventpulse/backend/pkg/response"
)

// RoleSource resolves a user's current record. Admin checks go back to the
// store rather than trusting the role claim, because a role can change
// after a credential was issued.
type RoleSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RequireAdmin returns a middleware that allows only users whose *current*
// stored role is admin. Call after JWT.
func RequireAdmin(users RoleSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet(ContextUserID).(uuid.UUID)
		u, err := users.GetByID(c.Request.Context(), userID)
		if err != nil || u.Role != models.RoleAdmin {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		if u.Status == models.UserBlocked {
			response.Forbidden(c, "account is blocked")
			c.Abort()
			return
		}
		c.Next()
	}
}
