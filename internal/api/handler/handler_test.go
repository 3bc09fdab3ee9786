package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rrens/chat-to-task/internal/api/handler"
	"github.com/Rrens/chat-to-task/internal/api/middleware"
	"github.com/Rrens/chat-to-task/internal/domain"
	"github.com/Rrens/chat-to-task/internal/security"
	"github.com/Rrens/chat-to-task/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// memoryUserRepo is a small in-memory user store for handler tests
type memoryUserRepo struct {
	byEmail map[string]*domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{byEmail: make(map[string]*domain.User)}
}

func (r *memoryUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.byEmail[user.Email] = user
	return nil
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.byEmail[email], nil
}

func (r *memoryUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, ok := r.byEmail[email]
	return ok, nil
}

func newAuthHandler() *handler.AuthHandler {
	jwtManager := security.NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
	return handler.NewAuthHandler(service.NewAuthService(newMemoryUserRepo(), jwtManager))
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "ok", data["status"])
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	h := newAuthHandler()

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"email":`},
		{"missing email", `{"password":"secret-password"}`},
		{"bad email", `{"email":"not-an-email","password":"secret-password"}`},
		{"short password", `{"email":"alice@example.com","password":"short"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			h.Register(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAuthHandler_RegisterThenLogin(t *testing.T) {
	h := newAuthHandler()

	body := `{"email":"alice@example.com","password":"secret-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Same email again conflicts.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(body))
	rec = httptest.NewRecorder()
	h.Register(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(body))
	rec = httptest.NewRecorder()
	h.Login(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var loginBody map[string]any
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&loginBody))
	data := loginBody["data"].(map[string]any)
	assert.NotEmpty(t, data["access_token"])
	assert.NotEmpty(t, data["refresh_token"])
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	h := newAuthHandler()

	register := `{"email":"alice@example.com","password":"secret-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(register))
	h.Register(httptest.NewRecorder(), req)

	login := `{"email":"alice@example.com","password":"wrong-password"}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(login))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := security.NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	var seenUserID uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID, _ = middleware.GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := authMiddleware.Authenticate(next)

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		userID := uuid.New()
		token, err := jwtManager.GenerateAccessToken(userID, "alice@example.com")
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, seenUserID)
	})
}
