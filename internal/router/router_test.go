package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studybuddy-backend/internal/handlers"
	"studybuddy-backend/internal/middleware"
	"studybuddy-backend/internal/models"
	"studybuddy-backend/internal/services"
)

type noGenerator struct{}

func (noGenerator) Generate(ctx context.Context, kind models.ResultKind, req models.GenerationRequest) models.GenerationResult {
	return models.GenerationResult{Kind: models.ResultSummary, Summary: "ok"}
}

type openGuard struct{}

func (openGuard) Acquire(ctx context.Context, userID uuid.UUID) (func(), error) {
	return func() {}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *middleware.JWTAuth) {
	t.Helper()
	auth := middleware.NewJWTAuth("router-secret")
	limiter := middleware.NewRateLimiter(100, time.Minute)
	t.Cleanup(limiter.Stop)

	h := New(Deps{
		JWTAuth:       auth,
		StudioHandler: handlers.NewStudioHandler(noGenerator{}, openGuard{}, services.NewFileExtractService(), 1<<20, nil),
		NoteHandler:   handlers.NewNoteHandler(nil, nil),
		StudioLimiter: limiter,
		FrontendURL:   "http://localhost:8081",
		Logger:        zap.NewNop(),
	})
	return h, auth
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","ai_configured":false}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}

func TestAPIRequiresToken(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/studio/summary", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestStudioSummaryRoute(t *testing.T) {
	h, auth := newTestRouter(t)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString(auth.Secret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/studio/summary", bytes.NewReader([]byte(`{"text":"Cells"}`)))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var result models.GenerationResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
	assert.Equal(t, "ok", result.Summary)
}
