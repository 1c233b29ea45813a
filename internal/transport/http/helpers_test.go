package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"sampledash/internal/config"
	apierrors "sampledash/internal/errors"
	dashmw "sampledash/internal/middleware"
	"sampledash/internal/services"
	"sampledash/internal/shared/testutil"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func testDashboardConfig() config.DashboardConfig {
	cfg := config.Default().Dashboard
	cfg.MapSeed = 7
	return cfg
}

func newTestService(t *testing.T, cfg config.DashboardConfig) *services.DashboardService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return services.NewDashboardService(cfg, nil, logger, services.WithClock(func() time.Time { return fixedNow }))
}

// newTestAPI mounts the dashboard routes under /api the way the application
// does, with a body limit one MiB above the upload limit.
func newTestAPI(t *testing.T, svc DashboardService) (http.Handler, *testutil.BufferedSlogHandler) {
	t.Helper()
	return newTestAPIWithLimit(t, svc, svc.Config().MaxUploadBytes+1<<20)
}

func newTestAPIWithLimit(t *testing.T, svc DashboardService, bodyLimit int64) (http.Handler, *testutil.BufferedSlogHandler) {
	t.Helper()

	logger, logs := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	validation := dashmw.NewValidationMiddleware(logger, errorHandler, bodyLimit)

	r := chi.NewRouter()
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)
	r.Mount("/api", NewDashboardHandler(svc, validation, logger, errorHandler).Routes())
	return r, logs
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, h, httptest.NewRequest(http.MethodGet, target, nil))
}

func upload(t *testing.T, h http.Handler, target, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := testutil.MultipartUpload(t, field, filename, content)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	return do(t, h, req)
}

func decodeJSON(t *testing.T, body io.Reader, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(v))
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var problem map[string]interface{}
	decodeJSON(t, bytes.NewReader(rec.Body.Bytes()), &problem)
	return problem
}
