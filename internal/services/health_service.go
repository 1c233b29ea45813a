package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"sampledash/internal/infrastructure"
)

// Health status values
const (
	StatusOK       = "ok"
	StatusAlive    = "alive"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// ReadinessChecker is a dependency the readiness probe asks before
// reporting ready.
type ReadinessChecker interface {
	Name() string
	Ready(ctx context.Context) error
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	checkers  []ReadinessChecker
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service reporting version and asking
// the given checkers for readiness.
func NewHealthService(version, buildTime string, logger *slog.Logger, checkers ...ReadinessChecker) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "health_service"))
	logger.Debug("health service initialized",
		slog.String("version", version),
		slog.Int("checkers", len(checkers)))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		checkers:  checkers,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck asks every checker and reports not_ready if any fails.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]ServiceHealth, len(hs.checkers)),
	}

	for _, c := range hs.checkers {
		if err := c.Ready(ctx); err != nil {
			hs.logger.WarnContext(ctx, "readiness check failed",
				slog.String("service", c.Name()),
				slog.String("error", err.Error()))
			status.Services[c.Name()] = ServiceHealth{Status: StatusNotReady, Message: err.Error()}
			status.Status = StatusNotReady
			continue
		}
		status.Services[c.Name()] = ServiceHealth{Status: StatusReady}
	}

	return status
}

// IsReady reports whether a readiness status is ready.
func (s HealthStatus) IsReady() bool {
	return s.Status == StatusReady
}

// LivenessCheck returns liveness status with a runtime snapshot
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime:   infrastructure.ReadRuntimeStats(hs.startTime).FormatStats(),
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}

	return result
}
