package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"family-planner/internal/config"
	"family-planner/internal/repository"
	"family-planner/internal/service"
	"family-planner/internal/testutil"
)

type nopTransport struct{}

func (nopTransport) Send(_ context.Context, _, _ string) (string, error) {
	return "msg-1", nil
}

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	guard := service.NewNotificationGuard(repository.NewNotificationLogRepository(db), time.Hour)
	svc := service.NewReminderService(
		repository.NewUserRepository(db),
		repository.NewTaskRepository(db),
		repository.NewCategoryRepository(db),
		guard,
		nopTransport{},
		time.UTC,
		15*time.Minute,
	)
	return NewServer(svc, cfg)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, config.Config{Env: "development"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestNotifyRequiresBearerToken(t *testing.T) {
	srv := newTestServer(t, config.Config{Env: "production", CronSecret: "s3cret"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/notify", nil)
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/notify", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotifyAcceptsValidToken(t *testing.T) {
	srv := newTestServer(t, config.Config{Env: "production", CronSecret: "s3cret"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/notify", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Summary   service.TickSummary `json:"summary"`
		Timestamp string              `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Zero(t, body.Summary.Sent)
	assert.NotEmpty(t, body.Timestamp)
}

func TestNotifyOpenWithoutSecretInDevelopment(t *testing.T) {
	srv := newTestServer(t, config.Config{Env: "development"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/notify", nil)
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNotifyRefusedWithoutSecretInProduction(t *testing.T) {
	srv := newTestServer(t, config.Config{Env: "production"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/notify", nil)
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
