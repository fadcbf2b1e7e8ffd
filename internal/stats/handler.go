package stats

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventpulse/backend/internal/models"
	"github.com/eventpulse/backend/pkg/response"
)

// cacheKey is where the serialized rollup lives in Redis.
const cacheKey = "admin:stats"

// Source computes the rollup from the primary store.
type Source interface {
	Collect(ctx context.Context, now time.Time) (*models.AdminStats, error)
}

// Cache holds a serialized rollup for a bounded time. A nil Cache disables
// caching entirely.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Handler serves the admin dashboard rollup.
type Handler struct {
	source Source
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewHandler creates a stats handler. cache may be nil.
func NewHandler(source Source, cache Cache, ttl time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{source: source, cache: cache, ttl: ttl, logger: logger}
}

// Get returns the dashboard rollup, serving a cached copy when one is fresh.
// Cache failures are logged and fall through to a recompute; the endpoint
// never errors because Redis is down.
func (h *Handler) Get(c *gin.Context) {
	if h.cache != nil {
		if raw, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil {
			var cached models.AdminStats
			if json.Unmarshal([]byte(raw), &cached) == nil {
				response.OK(c, gin.H{"stats": cached})
				return
			}
			h.logger.Warn("discarding malformed cached stats")
		}
	}

	s, err := h.source.Collect(c.Request.Context(), time.Now())
	if err != nil {
		h.logger.Error("failed to collect stats", zap.Error(err))
		response.Internal(c, "failed to fetch stats")
		return
	}

	if h.cache != nil {
		if raw, err := json.Marshal(s); err == nil {
			if err := h.cache.Set(c.Request.Context(), cacheKey, string(raw), h.ttl); err != nil {
				h.logger.Warn("failed to cache stats", zap.Error(err))
			}
		}
	}

	response.OK(c, gin.H{"stats": s})
}
