package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	apierrors "sampledash/internal/errors"
	"sampledash/internal/series"
	"sampledash/internal/services"
	"sampledash/pkg/contracts"
)

//go:embed web/templates/*.html web/content/*.md
var webFS embed.FS

// MaxNameLength bounds the name shown in the greeting.
const MaxNameLength = 80

// PageHandler renders the dashboard page.
type PageHandler struct {
	service      DashboardService
	tmpl         *template.Template
	intro        template.HTML
	about        template.HTML
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

type chartOption struct {
	Value    string
	Label    string
	Selected bool
}

type previewRow struct {
	Date  string
	Value string
}

type pageData struct {
	Title          string
	Intro          template.HTML
	About          template.HTML
	Version        string
	Name           string
	MaxNameLength  int
	Greeting       string
	Charts         []chartOption
	Chart          string
	Rows           int
	MinRows        int
	MaxRows        int
	Preview        []previewRow
	SeriesURL      string
	SeriesCSVURL   string
	MapURL         string
	UploadURL      string
	SocketURL      string
	MaxUploadBytes int64
}

// NewPageHandler parses the embedded template and renders the page text
// from markdown once.
func NewPageHandler(service DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) (*PageHandler, error) {
	tmpl, err := template.ParseFS(webFS, "web/templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}

	intro, err := renderMarkdownFile("web/content/intro.md")
	if err != nil {
		return nil, err
	}
	about, err := renderMarkdownFile("web/content/about.md")
	if err != nil {
		return nil, err
	}

	return &PageHandler{
		service:      service,
		tmpl:         tmpl,
		intro:        intro,
		about:        about,
		logger:       logger.With(slog.String("component", "page_handler")),
		errorHandler: errorHandler,
	}, nil
}

func renderMarkdownFile(name string) (template.HTML, error) {
	src, err := webFS.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return RenderMarkdown(src), nil
}

// RenderMarkdown converts trusted markdown to HTML.
func RenderMarkdown(src []byte) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank})
	return template.HTML(markdown.ToHTML(src, p, renderer))
}

// ServeHTTP handles GET /. Out-of-range rows are clamped, an unknown chart
// falls back to line and long names are cut.
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cfg := h.service.Config()
	q := r.URL.Query()

	rows := cfg.DefaultRows
	if raw := strings.TrimSpace(q.Get("rows")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			rows = min(max(n, cfg.MinRows), cfg.MaxRows)
		}
	}

	chart, err := series.ParseChartType(q.Get("chart"))
	if err != nil {
		chart = series.ChartLine
	}

	name := truncateRunes(strings.TrimSpace(q.Get("name")), MaxNameLength)

	view, err := h.service.Series(r.Context(), services.SeriesRequest{Rows: rows, Chart: chart.String(), Name: name})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	data := pageData{
		Title:          cfg.Title,
		Intro:          h.intro,
		About:          h.about,
		Version:        contracts.GetVersionString(),
		Name:           view.Name,
		MaxNameLength:  MaxNameLength,
		Greeting:       view.Greeting,
		Chart:          view.Chart.String(),
		Rows:           view.Rows,
		MinRows:        cfg.MinRows,
		MaxRows:        cfg.MaxRows,
		Preview:        make([]previewRow, len(view.Preview)),
		SeriesURL:      "/api/series?" + url.Values{"rows": {strconv.Itoa(view.Rows)}, "chart": {view.Chart.String()}}.Encode(),
		SeriesCSVURL:   "/api/series.csv?" + url.Values{"rows": {strconv.Itoa(view.Rows)}}.Encode(),
		MapURL:         "/api/map",
		UploadURL:      "/api/uploads",
		SocketURL:      "/ws/series",
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	for _, c := range series.ChartTypes() {
		data.Charts = append(data.Charts, chartOption{Value: c.String(), Label: c.Label(), Selected: c == view.Chart})
	}
	for i, p := range view.Preview {
		data.Preview[i] = previewRow{Date: p.Date.Format("2006-01-02 15:04"), Value: strconv.FormatFloat(p.Value, 'f', 4, 64)}
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render dashboard", slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.NewInternalError("Error rendering page"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
