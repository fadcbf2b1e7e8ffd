package stats

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventpulse/backend/internal/models"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Collect(ctx context.Context, now time.Time) (*models.AdminStats, error) {
	args := m.Called(ctx, now)
	if s, ok := args.Get(0).(*models.AdminStats); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func serve(h *Handler) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/stats", h.Get)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGet_CacheHitSkipsCollect(t *testing.T) {
	source := new(mockSource)
	cache := new(mockCache)
	h := NewHandler(source, cache, time.Minute, zap.NewNop())

	cached, err := json.Marshal(models.AdminStats{TotalUsers: 7, TotalEvents: 3})
	require.NoError(t, err)
	cache.On("Get", mock.Anything, cacheKey).Return(string(cached), nil)

	w := serve(h)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Stats models.AdminStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Stats.TotalUsers)
	source.AssertNotCalled(t, "Collect", mock.Anything, mock.Anything)
}

func TestGet_CacheMissCollectsAndStores(t *testing.T) {
	source := new(mockSource)
	cache := new(mockCache)
	h := NewHandler(source, cache, time.Minute, zap.NewNop())

	cache.On("Get", mock.Anything, cacheKey).Return("", errors.New("redis: nil"))
	source.On("Collect", mock.Anything, mock.Anything).Return(&models.AdminStats{TotalUsers: 2}, nil)
	cache.On("Set", mock.Anything, cacheKey, mock.AnythingOfType("string"), time.Minute).Return(nil)

	w := serve(h)

	require.Equal(t, http.StatusOK, w.Code)
	cache.AssertExpectations(t)
	source.AssertExpectations(t)
}

func TestGet_CacheSetFailureStillServes(t *testing.T) {
	source := new(mockSource)
	cache := new(mockCache)
	h := NewHandler(source, cache, time.Minute, zap.NewNop())

	cache.On("Get", mock.Anything, cacheKey).Return("", errors.New("down"))
	source.On("Collect", mock.Anything, mock.Anything).Return(&models.AdminStats{TotalRsvps: 9}, nil)
	cache.On("Set", mock.Anything, cacheKey, mock.Anything, mock.Anything).Return(errors.New("down"))

	w := serve(h)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalRsvps":9`)
}

func TestGet_NilCacheAlwaysCollects(t *testing.T) {
	source := new(mockSource)
	h := NewHandler(source, nil, time.Minute, zap.NewNop())

	source.On("Collect", mock.Anything, mock.Anything).Return(&models.AdminStats{TotalEvents: 4}, nil)

	w := serve(h)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalEvents":4`)
}

func TestGet_MalformedCachedValueRecomputes(t *testing.T) {
	source := new(mockSource)
	cache := new(mockCache)
	h := NewHandler(source, cache, time.Minute, zap.NewNop())

	cache.On("Get", mock.Anything, cacheKey).Return("{not json", nil)
	source.On("Collect", mock.Anything, mock.Anything).Return(&models.AdminStats{TotalUsers: 1}, nil)
	cache.On("Set", mock.Anything, cacheKey, mock.Anything, mock.Anything).Return(nil)

	w := serve(h)

	require.Equal(t, http.StatusOK, w.Code)
	source.AssertExpectations(t)
}
