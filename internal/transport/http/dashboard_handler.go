package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"sampledash/internal/config"
	apierrors "sampledash/internal/errors"
	"sampledash/internal/exporter"
	dashmw "sampledash/internal/middleware"
	"sampledash/internal/series"
	"sampledash/internal/services"
	"sampledash/internal/table"
	api "sampledash/pkg/contracts/api/v1"
)

// DashboardHandler serves the series, map and upload API.
type DashboardHandler struct {
	service      DashboardService
	csv          *exporter.CSVWriter
	validation   *dashmw.ValidationMiddleware
	query        *dashmw.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a dashboard handler. The validation middleware
// bounds upload bodies and checks their content type.
func NewDashboardHandler(service DashboardService, validation *dashmw.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		csv:          exporter.NewCSVWriter(logger),
		validation:   validation,
		query:        dashmw.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard API routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/series", h.GetSeries)
		r.Get("/map", h.GetMap)
	})

	r.Get("/series.csv", h.GetSeriesCSV)

	r.With(
		h.validation.LimitBody,
		h.validation.RequireContentType("multipart/form-data"),
	).Post("/uploads", h.PostUpload)

	return r
}

func chartNames() []string {
	types := series.ChartTypes()
	names := make([]string, len(types))
	for i, c := range types {
		names[i] = c.String()
	}
	return names
}

// GetSeries handles GET /api/series
func (h *DashboardHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.query.ValidateInt(w, r, "rows", 0)
	if !ok {
		return
	}
	chart, ok := h.query.ValidateEnum(w, r, "chart", chartNames(), series.ChartLine.String())
	if !ok {
		return
	}

	view, err := h.service.Series(r.Context(), services.SeriesRequest{
		Rows:  rows,
		Chart: chart,
		Name:  r.URL.Query().Get("name"),
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	render.JSON(w, r, toSeriesResponse(view))
}

// GetSeriesCSV handles GET /api/series.csv
func (h *DashboardHandler) GetSeriesCSV(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.query.ValidateInt(w, r, "rows", 0)
	if !ok {
		return
	}
	bom, ok := h.query.ValidateBool(w, r, "bom", false)
	if !ok {
		return
	}

	view, err := h.service.Series(r.Context(), services.SeriesRequest{Rows: rows})
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="series-%d.csv"`, view.Rows))
	if err := h.csv.WriteSeries(w, view.Series, exporter.WriteOptions{BOMPrefix: bom}); err != nil {
		// Headers are already sent; the client sees a truncated body.
		h.logger.ErrorContext(r.Context(), "failed to write series csv",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
}

// GetMap handles GET /api/map
func (h *DashboardHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, toMapResponse(h.service.Map(r.Context())))
}

// PostUpload handles POST /api/uploads
func (h *DashboardHandler) PostUpload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	withSummary, ok := h.query.ValidateBool(w, r, "summary", false)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(h.service.Config().MaxUploadBytes); err != nil {
		h.errorHandler.HandleError(w, r, h.mapFormError(err))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.logger.WarnContext(r.Context(), "failed to remove multipart temp files",
				slog.String("error", err.Error()))
		}
	}()

	file, header, err := r.FormFile(config.UploadFormField)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapFormError(err))
		return
	}
	defer file.Close()

	req := api.UploadRequest{Filename: header.Filename, Summary: withSummary}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "upload received",
		slog.String("request_id", reqID),
		slog.String("filename", req.Filename),
		slog.Int64("size", header.Size),
		slog.Bool("summary", req.Summary),
	)

	view, err := h.service.Upload(r.Context(), req.Filename, file, req.Summary)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	render.JSON(w, r, toUploadResponse(view))
}

// mapFormError converts multipart parsing failures into API errors.
func (h *DashboardHandler) mapFormError(err error) error {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return err
	case errors.Is(err, http.ErrMissingFile):
		return apierrors.MissingParameter(config.UploadFormField)
	default:
		return apierrors.InvalidRequestWithError(err)
	}
}

// mapServiceError converts service sentinel errors into API errors. Parse
// errors pass through so the error handler can report the failing line.
func (h *DashboardHandler) mapServiceError(err error) error {
	var parseErr *table.ParseError
	switch {
	case errors.As(err, &parseErr):
		return err
	case errors.Is(err, services.ErrInvalidRows):
		cfg := h.service.Config()
		return apierrors.ErrValidation("rows", fmt.Sprintf("rows must be between %d and %d", cfg.MinRows, cfg.MaxRows))
	case errors.Is(err, services.ErrInvalidChart):
		return apierrors.ErrValidation("chart", "chart must be one of: "+strings.Join(chartNames(), ", "))
	case errors.Is(err, services.ErrInvalidInput):
		return apierrors.InvalidRequestWithError(err)
	case errors.Is(err, services.ErrUploadTooLarge):
		return apierrors.PayloadTooLarge(h.service.Config().MaxUploadBytes)
	case errors.Is(err, services.ErrMissingFile):
		return apierrors.MissingParameter(config.UploadFormField)
	default:
		return err
	}
}
