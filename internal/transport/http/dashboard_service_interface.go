package http

import (
	"context"
	"io"

	"sampledash/internal/config"
	"sampledash/internal/services"
)

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	Config() config.DashboardConfig
	Series(ctx context.Context, req services.SeriesRequest) (*services.SeriesView, error)
	Map(ctx context.Context) *services.MapView
	Upload(ctx context.Context, filename string, r io.Reader, withSummary bool) (*services.UploadView, error)
}

// Ensure the concrete service satisfies the interface
var _ DashboardService = (*services.DashboardService)(nil)
