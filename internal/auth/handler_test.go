package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eventpulse/backend/internal/models"
	"github.com/eventpulse/backend/pkg/utils"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	args := m.Called(ctx, name, email, passwordHash)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func newRouter(store UserStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, NewJWTService("test-secret", 1), nil)
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRegister_Success(t *testing.T) {
	store := new(mockUserStore)
	r := newRouter(store)

	created := &models.User{
		ID:     uuid.New(),
		Name:   "Alice",
		Email:  "alice@example.com",
		Role:   models.RoleAttendee,
		Status: models.UserActive,
	}
	store.On("Create", mock.Anything, "Alice", "alice@example.com", mock.AnythingOfType("string")).
		Return(created, nil)

	w := doJSON(t, r, "/auth/register", RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var resp TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice@example.com", resp.User.Email)

	claims, err := NewJWTService("test-secret", 1).Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := new(mockUserStore)
	r := newRouter(store)

	store.On("Create", mock.Anything, "Alice", "alice@example.com", mock.Anything).
		Return(nil, models.ErrEmailTaken)

	w := doJSON(t, r, "/auth/register", RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "user already exists with this email")
}

func TestRegister_ShortPassword(t *testing.T) {
	r := newRouter(new(mockUserStore))

	w := doJSON(t, r, "/auth/register", RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "abc",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_Success(t *testing.T) {
	store := new(mockUserStore)
	r := newRouter(store)

	hash, err := utils.HashPassword("hunter22")
	require.NoError(t, err)
	store.On("GetByEmail", mock.Anything, "alice@example.com").Return(&models.User{
		ID:       uuid.New(),
		Email:    "alice@example.com",
		Password: hash,
		Role:     models.RoleAttendee,
		Status:   models.UserActive,
	}, nil)

	w := doJSON(t, r, "/auth/login", LoginRequest{Email: "alice@example.com", Password: "hunter22"})

	require.Equal(t, http.StatusOK, w.Code)
	var resp TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestLogin_WrongPassword(t *testing.T) {
	store := new(mockUserStore)
	r := newRouter(store)

	hash, err := utils.HashPassword("hunter22")
	require.NoError(t, err)
	store.On("GetByEmail", mock.Anything, "alice@example.com").Return(&models.User{
		Email:    "alice@example.com",
		Password: hash,
		Status:   models.UserActive,
	}, nil)

	w := doJSON(t, r, "/auth/login", LoginRequest{Email: "alice@example.com", Password: "wrong"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid email or password")
}

func TestLogin_UnknownEmail(t *testing.T) {
	store := new(mockUserStore)
	r := newRouter(store)

	store.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, models.ErrNotFound)

	w := doJSON(t, r, "/auth/login", LoginRequest{Email: "ghost@example.com", Password: "whatever"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid email or password")
}

func TestLogin_BlockedAccount(t *testing.T) {
	store := new(mockUserStore)
	r := newRouter(store)

	hash, err := utils.HashPassword("hunter22")
	require.NoError(t, err)
	store.On("GetByEmail", mock.Anything, "alice@example.com").Return(&models.User{
		Email:    "alice@example.com",
		Password: hash,
		Status:   models.UserBlocked,
	}, nil)

	w := doJSON(t, r, "/auth/login", LoginRequest{Email: "alice@example.com", Password: "hunter22"})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "account is blocked")
}
