package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	checkers := map[string]HealthChecker{
		"storage": CheckFunc(func(ctx context.Context) error { return nil }),
	}

	rec := httptest.NewRecorder()
	HealthHandler(checkers).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	checkers["engine"] = CheckFunc(func(ctx context.Context) error { return errors.New("offline") })
	rec = httptest.NewRecorder()
	HealthHandler(checkers).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, CheckStatus{Status: "unhealthy", Message: "offline"}, body.Checks["engine"])
	assert.Equal(t, "healthy", body.Checks["storage"].Status)
}

func TestReadinessHandler_Database(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	checkers := map[string]HealthChecker{"database": &DatabaseHealthChecker{DB: db}}

	mock.ExpectPing()
	rec := httptest.NewRecorder()
	ReadinessHandler(checkers).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ready"`)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	rec = httptest.NewRecorder()
	ReadinessHandler(checkers).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"not_ready"`)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
