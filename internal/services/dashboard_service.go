package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"sampledash/internal/config"
	"sampledash/internal/geo"
	"sampledash/internal/infrastructure"
	"sampledash/internal/series"
	"sampledash/internal/table"
)

// DefaultName greets visitors who leave the name field blank.
const DefaultName = "Guest"

// Upload formats, chosen by the filename extension.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// DashboardService composes the series, table and geo packages under the
// dashboard configuration. It holds no per-request state.
type DashboardService struct {
	cfg       config.DashboardConfig
	metrics   *infrastructure.BusinessMetrics
	tracer    trace.Tracer
	validate  *validator.Validate
	clock     func() time.Time
	mapSource func() rand.Source
	logger    *slog.Logger
}

// DashboardOption customizes a DashboardService.
type DashboardOption func(*DashboardService)

// WithClock replaces time.Now as the reference time for series dates.
func WithClock(clock func() time.Time) DashboardOption {
	return func(s *DashboardService) { s.clock = clock }
}

// WithMapSource replaces the random source factory used for map samples.
func WithMapSource(source func() rand.Source) DashboardOption {
	return func(s *DashboardService) { s.mapSource = source }
}

// NewDashboardService creates the dashboard service. A nil metrics value
// records into a no-op meter.
func NewDashboardService(cfg config.DashboardConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger, opts ...DashboardOption) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics, _ = infrastructure.CreateBusinessMetrics(noop.NewMeterProvider().Meter(infrastructure.MeterName))
	}

	s := &DashboardService{
		cfg:      cfg,
		metrics:  metrics,
		tracer:   otel.Tracer(infrastructure.MeterName),
		validate: validator.New(),
		clock:    time.Now,
		logger:   logger.With(slog.String("component", "dashboard_service")),
	}
	s.mapSource = s.defaultMapSource
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the dashboard configuration the service was built with.
func (s *DashboardService) Config() config.DashboardConfig {
	return s.cfg
}

// SeriesRequest carries the sidebar inputs.
type SeriesRequest struct {
	Rows  int
	Chart string
	Name  string `validate:"max=80"`
}

// SeriesView is everything the page needs to draw the series section.
type SeriesView struct {
	Series   series.Series
	Preview  []series.Point
	Chart    series.ChartType
	Rows     int
	Name     string
	Greeting string
}

// Series validates the request and generates the random walk ending now.
// A zero Rows selects the configured default.
func (s *DashboardService) Series(ctx context.Context, req SeriesRequest) (*SeriesView, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.series")
	defer span.End()

	rows := req.Rows
	if rows == 0 {
		rows = s.cfg.DefaultRows
	}
	if err := s.validate.Var(rows, fmt.Sprintf("min=%d,max=%d", s.cfg.MinRows, s.cfg.MaxRows)); err != nil {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidRows, rows, s.cfg.MinRows, s.cfg.MaxRows)
	}

	chart, err := series.ParseChartType(req.Chart)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidChart, req.Chart)
	}

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: name longer than 80 characters", ErrInvalidInput)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = DefaultName
	}

	generated := series.Generate(rows, s.clock(), s.cfg.Seed)

	attrs := metric.WithAttributes(attribute.String("chart", chart.String()))
	s.metrics.SeriesGenerated.Add(ctx, 1, attrs)
	s.metrics.SeriesRows.Record(ctx, int64(rows), attrs)
	infrastructure.SetSpanAttributes(ctx,
		attribute.Int("series.rows", rows),
		attribute.String("series.chart", chart.String()),
	)

	s.logger.DebugContext(ctx, "series generated",
		slog.Int("rows", rows),
		slog.String("chart", chart.String()),
		slog.Uint64("seed", s.cfg.Seed),
	)

	return &SeriesView{
		Series:   generated,
		Preview:  generated.Head(s.cfg.SeriesPreviewRows),
		Chart:    chart,
		Rows:     rows,
		Name:     name,
		Greeting: Greeting(name),
	}, nil
}

// Greeting is the welcome line shown above the sample data.
func Greeting(name string) string {
	return fmt.Sprintf("Hello, %s! Welcome to your sample dashboard.", name)
}

// MapView is the map section: the configured centre, the sample and its
// bounding box.
type MapView struct {
	Center geo.Point
	Points []geo.Point
	Bounds *geo.Box
}

// Points draws the configured number of Gaussian points around the map
// centre. With a non-zero map seed every call returns the same sample.
func (s *DashboardService) Points(ctx context.Context) []geo.Point {
	return s.PointsN(ctx, s.cfg.MapPoints)
}

// PointsN is Points with an explicit count.
func (s *DashboardService) PointsN(ctx context.Context, count int) []geo.Point {
	center := geo.Point{Lat: s.cfg.MapCenterLat, Lon: s.cfg.MapCenterLon}
	points := geo.Generate(center, count, s.cfg.MapSigma, s.mapSource())

	s.metrics.MapPointsGenerated.Add(ctx, int64(len(points)))
	return points
}

// Map returns the map section view.
func (s *DashboardService) Map(ctx context.Context) *MapView {
	ctx, span := s.tracer.Start(ctx, "dashboard.map")
	defer span.End()

	points := s.Points(ctx)
	view := &MapView{
		Center: geo.Point{Lat: s.cfg.MapCenterLat, Lon: s.cfg.MapCenterLon},
		Points: points,
	}
	if box, ok := geo.Bounds(points); ok {
		view.Bounds = &box
	}
	return view
}

func (s *DashboardService) defaultMapSource() rand.Source {
	if s.cfg.MapSeed != 0 {
		return rand.NewPCG(s.cfg.MapSeed, s.cfg.MapSeed)
	}
	return rand.NewPCG(uint64(s.clock().UnixNano()), rand.Uint64())
}

// UploadView is the parsed upload: the table preview, column kinds and, when
// requested, the descriptive summary.
type UploadView struct {
	Filename string
	Format   string
	Size     int64
	Rows     int
	Columns  []table.Column
	Preview  *table.Table
	Summary  *table.Summary
}

// Upload reads at most the configured number of bytes from r and parses them
// as a workbook when the filename ends in .xlsx, otherwise as CSV. Parser
// failures are returned as *table.ParseError.
func (s *DashboardService) Upload(ctx context.Context, filename string, r io.Reader, withSummary bool) (*UploadView, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.upload")
	defer span.End()

	if r == nil {
		return nil, ErrMissingFile
	}

	format := UploadFormat(filename)
	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxUploadBytes+1))
	if err != nil {
		s.recordUpload(ctx, format, "read_error")
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		s.recordUpload(ctx, format, "too_large")
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrUploadTooLarge, s.cfg.MaxUploadBytes)
	}

	var parsed *table.Table
	switch format {
	case FormatXLSX:
		parsed, err = table.ParseWorkbook(bytes.NewReader(data))
	default:
		parsed, err = table.Parse(bytes.NewReader(data))
	}
	if err != nil {
		s.recordUpload(ctx, format, "parse_error")
		s.metrics.UploadParseFailure.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
		infrastructure.RecordError(ctx, err)

		var parseErr *table.ParseError
		line := 0
		if errors.As(err, &parseErr) {
			line = parseErr.Line
		}
		s.logger.WarnContext(ctx, "upload rejected by parser",
			slog.String("filename", filename),
			slog.String("format", format),
			slog.Int("line", line),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.recordUpload(ctx, format, "ok")
	s.metrics.UploadBytes.Record(ctx, int64(len(data)), metric.WithAttributes(attribute.String("format", format)))
	s.metrics.UploadRowsParsed.Add(ctx, int64(parsed.NumRows()), metric.WithAttributes(attribute.String("format", format)))

	view := &UploadView{
		Filename: filename,
		Format:   format,
		Size:     int64(len(data)),
		Rows:     parsed.NumRows(),
		Columns:  parsed.Columns,
		Preview:  parsed.Head(s.cfg.UploadPreviewRows),
	}

	if withSummary {
		summary := table.Summarize(parsed)
		view.Summary = &summary
		s.metrics.SummariesComputed.Add(ctx, 1)
	}

	infrastructure.SetSpanAttributes(ctx,
		attribute.String("upload.format", format),
		attribute.Int("upload.rows", parsed.NumRows()),
		attribute.Int("upload.columns", parsed.NumColumns()),
	)
	s.logger.InfoContext(ctx, "upload parsed",
		slog.String("filename", filename),
		slog.String("format", format),
		slog.Int("bytes", len(data)),
		slog.Int("rows", parsed.NumRows()),
		slog.Int("columns", parsed.NumColumns()),
		slog.Bool("summary", withSummary),
	)

	return view, nil
}

func (s *DashboardService) recordUpload(ctx context.Context, format, status string) {
	s.metrics.UploadsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("status", status),
	))
}

// UploadFormat maps a filename to the parser that will read it. Only .xlsx
// is special; any other name, including none, is read as CSV.
func UploadFormat(filename string) string {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Name identifies the service in readiness reports.
func (s *DashboardService) Name() string {
	return "dashboard"
}

// Ready generates a minimal series and map sample to prove the generators
// work with the loaded configuration.
func (s *DashboardService) Ready(ctx context.Context) error {
	generated := series.Generate(s.cfg.MinRows, s.clock(), s.cfg.Seed)
	if generated.Len() != s.cfg.MinRows {
		return fmt.Errorf("series generator returned %d rows, want %d", generated.Len(), s.cfg.MinRows)
	}
	center := geo.Point{Lat: s.cfg.MapCenterLat, Lon: s.cfg.MapCenterLon}
	if got := geo.Generate(center, 1, s.cfg.MapSigma, s.mapSource()); len(got) != 1 {
		return errors.New("geo generator returned no points")
	}
	return nil
}
