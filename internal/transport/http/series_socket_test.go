package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "sampledash/internal/errors"
	dashmw "sampledash/internal/middleware"
	"sampledash/internal/services"
	"sampledash/internal/shared/testutil"
	api "sampledash/pkg/contracts/api/v1"
)

// newSocketServer serves a SeriesSocket over a real listener. Its logger is
// not bound to t because handler goroutines may outlive the test.
func newSocketServer(t *testing.T, allowedOrigins ...string) (*httptest.Server, *testutil.BufferedSlogHandler) {
	t.Helper()

	logs := testutil.NewBufferedSlogHandler(nil)
	logger := slog.New(logs)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	svc := services.NewDashboardService(testDashboardConfig(), nil, logger,
		services.WithClock(func() time.Time { return fixedNow }))
	validation := dashmw.NewValidationMiddleware(logger, errorHandler, svc.Config().MaxUploadBytes)
	dashboard := NewDashboardHandler(svc, validation, logger, errorHandler)

	srv := httptest.NewServer(NewSeriesSocket(dashboard, allowedOrigins, logger))
	t.Cleanup(srv.Close)
	return srv, logs
}

func dialSocket(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, frame string) api.SocketMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))

	var msg api.SocketMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestSeriesSocket_Series(t *testing.T) {
	srv, logs := newSocketServer(t)
	conn := dialSocket(t, srv, nil)

	msg := roundTrip(t, conn, `{"rows": 12, "chart": "bar", "name": "Ada"}`)
	require.Equal(t, api.SocketSeries, msg.Type)
	require.NotNil(t, msg.Series)
	assert.Nil(t, msg.Error)
	assert.Equal(t, 12, msg.Series.Rows)
	assert.Len(t, msg.Series.Points, 12)
	assert.Equal(t, "bar", msg.Series.Chart)
	assert.Equal(t, "Ada", msg.Series.Name)
	assert.Contains(t, msg.Series.Greeting, "Ada")

	assert.True(t, logs.ContainsMessage("websocket client connected"))
}

func TestSeriesSocket_Defaults(t *testing.T) {
	srv, _ := newSocketServer(t)
	conn := dialSocket(t, srv, nil)

	msg := roundTrip(t, conn, `{}`)
	require.Equal(t, api.SocketSeries, msg.Type)
	assert.Equal(t, testDashboardConfig().DefaultRows, msg.Series.Rows)
	assert.Equal(t, "line", msg.Series.Chart)
	assert.Equal(t, services.DefaultName, msg.Series.Name)
}

func TestSeriesSocket_MatchesHTTPSeries(t *testing.T) {
	srv, _ := newSocketServer(t)
	conn := dialSocket(t, srv, nil)

	msg := roundTrip(t, conn, `{"rows": 20}`)
	require.Equal(t, api.SocketSeries, msg.Type)

	h, _ := newTestAPI(t, newTestService(t, testDashboardConfig()))
	rec := get(t, h, "/api/series?rows=20")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.SeriesResponse
	decodeJSON(t, rec.Body, &resp)
	assert.Equal(t, resp.Points, msg.Series.Points)
}

func TestSeriesSocket_Errors(t *testing.T) {
	srv, _ := newSocketServer(t)
	conn := dialSocket(t, srv, nil)

	tests := []struct {
		name       string
		frame      string
		wantStatus int
		wantCode   string
	}{
		{"rows below minimum", `{"rows": 3}`, http.StatusBadRequest, apierrors.CodeValidationFailed},
		{"unknown chart", `{"chart": "pie"}`, http.StatusBadRequest, apierrors.CodeValidationFailed},
		{"name too long", `{"name": "` + strings.Repeat("n", 81) + `"}`, http.StatusBadRequest, apierrors.CodeInvalidRequest},
		{"malformed frame", `{"rows":`, http.StatusBadRequest, apierrors.CodeInvalidRequest},
		{"wrong type", `{"rows": "many"}`, http.StatusBadRequest, apierrors.CodeInvalidRequest},
	}

	// All frames share one connection; an error must not close it.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := roundTrip(t, conn, tt.frame)
			require.Equal(t, api.SocketError, msg.Type)
			require.NotNil(t, msg.Error)
			assert.Nil(t, msg.Series)
			assert.Equal(t, tt.wantStatus, msg.Error.Status)
			assert.Equal(t, tt.wantCode, msg.Error.Code)
		})
	}

	msg := roundTrip(t, conn, `{"rows": 10}`)
	assert.Equal(t, api.SocketSeries, msg.Type)
}

func TestSeriesSocket_Origin(t *testing.T) {
	srv, logs := newSocketServer(t, "http://dash.example/")
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	t.Run("allowed origin", func(t *testing.T) {
		conn := dialSocket(t, srv, http.Header{"Origin": []string{"http://dash.example"}})
		msg := roundTrip(t, conn, `{"rows": 10}`)
		assert.Equal(t, api.SocketSeries, msg.Type)
	})

	t.Run("same host", func(t *testing.T) {
		dialSocket(t, srv, http.Header{"Origin": []string{srv.URL}})
	})

	t.Run("foreign origin", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"http://evil.example"}})
		require.Error(t, err)
		require.NotNil(t, resp)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.True(t, logs.ContainsMessage("websocket origin rejected"))
	})
}

func TestSeriesSocket_PlainRequest(t *testing.T) {
	srv, logs := newSocketServer(t)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.True(t, logs.ContainsMessage("websocket upgrade failed"))
}
