package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	apierrors "sampledash/internal/errors"
	"sampledash/internal/services"
	api "sampledash/pkg/contracts/api/v1"
)

const (
	// Time allowed to write a frame to the peer
	socketWriteWait = 10 * time.Second

	// Time allowed to read the next frame or pong from the peer
	socketPongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than socketPongWait
	socketPingPeriod = (socketPongWait * 9) / 10

	// Maximum frame size allowed from peer
	socketMaxMessageSize = 1024
)

// SeriesSocket answers every sidebar change sent over a websocket with a
// freshly generated series, so the chart can redraw without a page reload.
type SeriesSocket struct {
	dashboard *DashboardHandler
	upgrader  websocket.Upgrader
	allowed   map[string]bool
	logger    *slog.Logger
}

// NewSeriesSocket creates the /ws/series handler. Cross-origin handshakes are
// accepted only from allowedOrigins.
func NewSeriesSocket(dashboard *DashboardHandler, allowedOrigins []string, logger *slog.Logger) *SeriesSocket {
	s := &SeriesSocket{
		dashboard: dashboard,
		allowed:   make(map[string]bool, len(allowedOrigins)),
		logger:    logger.With(slog.String("component", "series_socket")),
	}
	for _, origin := range allowedOrigins {
		s.allowed[strings.TrimRight(origin, "/")] = true
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  socketMaxMessageSize,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *SeriesSocket) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || s.allowed[origin] {
		return true
	}
	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}

	s.logger.WarnContext(r.Context(), "websocket origin rejected",
		slog.String("origin", origin),
		slog.String("host", r.Host))
	return false
}

// ServeHTTP upgrades the connection and serves frames until the client goes
// away or stops answering pings.
func (s *SeriesSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.logger.WarnContext(ctx, "websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	logger := s.logger.With(
		slog.String("client_id", uuid.New().String()),
		slog.String("request_id", middleware.GetReqID(ctx)),
	)
	connectedAt := time.Now()
	logger.InfoContext(ctx, "websocket client connected", slog.String("remote_addr", r.RemoteAddr))

	done := make(chan struct{})
	defer close(done)
	go s.ping(conn, done, logger)

	conn.SetReadLimit(socketMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(socketPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(socketPongWait))
	})

	received := 0
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.WarnContext(ctx, "unexpected websocket close", slog.String("error", err.Error()))
			}
			break
		}
		received++

		msg := s.handle(ctx, data)
		_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
		if err := conn.WriteJSON(msg); err != nil {
			logger.WarnContext(ctx, "websocket write failed", slog.String("error", err.Error()))
			break
		}
	}

	logger.InfoContext(ctx, "websocket client disconnected",
		slog.Duration("connection_duration", time.Since(connectedAt)),
		slog.Int("messages_received", received))
}

// ping keeps idle connections alive until done is closed. WriteControl may
// run concurrently with the reader loop's writes.
func (s *SeriesSocket) ping(conn *websocket.Conn, done <-chan struct{}, logger *slog.Logger) {
	ticker := time.NewTicker(socketPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(socketWriteWait)); err != nil {
				logger.Debug("Failed to send ping message", slog.String("error", err.Error()))
				return
			}
		}
	}
}

func (s *SeriesSocket) handle(ctx context.Context, data []byte) api.SocketMessage {
	var query api.SeriesQuery
	if err := json.Unmarshal(data, &query); err != nil {
		return socketFailure(apierrors.InvalidRequestWithError(err))
	}

	view, err := s.dashboard.service.Series(ctx, services.SeriesRequest{
		Rows:  query.Rows,
		Chart: query.Chart,
		Name:  query.Name,
	})
	if err != nil {
		return socketFailure(s.dashboard.mapServiceError(err))
	}

	resp := toSeriesResponse(view)
	return api.SocketMessage{Type: api.SocketSeries, Series: &resp}
}

func socketFailure(err error) api.SocketMessage {
	failure := &api.SocketFailure{
		Status:  http.StatusInternalServerError,
		Code:    apierrors.CodeInternal,
		Message: "An unexpected error occurred",
	}
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		failure.Status = apiErr.StatusCode
		failure.Code = apiErr.ErrorCode
		failure.Message = apiErr.Message
		failure.Details = apiErr.Details
	}
	return api.SocketMessage{Type: api.SocketError, Error: failure}
}
