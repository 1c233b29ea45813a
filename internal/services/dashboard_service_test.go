package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sampledash/internal/config"
	"sampledash/internal/infrastructure"
	"sampledash/internal/series"
	"sampledash/internal/shared/testutil"
	"sampledash/internal/table"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, mutate func(*config.DashboardConfig), opts ...DashboardOption) (*DashboardService, *testutil.BufferedSlogHandler) {
	t.Helper()
	cfg := config.Default().Dashboard
	if mutate != nil {
		mutate(&cfg)
	}
	logger, logs := testutil.NewTestLogger(t)
	opts = append([]DashboardOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewDashboardService(cfg, nil, logger, opts...), logs
}

func TestDashboardService_Series(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		view, err := svc.Series(ctx, SeriesRequest{})
		require.NoError(t, err)

		assert.Equal(t, 50, view.Rows)
		assert.Equal(t, 50, view.Series.Len())
		assert.Len(t, view.Preview, 10)
		assert.Equal(t, series.ChartLine, view.Chart)
		assert.Equal(t, DefaultName, view.Name)
		assert.Equal(t, "Hello, Guest! Welcome to your sample dashboard.", view.Greeting)

		last, ok := view.Series.Last()
		require.True(t, ok)
		assert.Equal(t, fixedNow, last.Date)
		assert.Equal(t, fixedNow.AddDate(0, 0, -49), view.Series.Points[0].Date)
	})

	t.Run("explicit inputs", func(t *testing.T) {
		view, err := svc.Series(ctx, SeriesRequest{Rows: 120, Chart: "Area", Name: "  Ayesha "})
		require.NoError(t, err)

		assert.Equal(t, 120, view.Series.Len())
		assert.Equal(t, series.ChartArea, view.Chart)
		assert.Equal(t, "Ayesha", view.Name)
		assert.Contains(t, view.Greeting, "Ayesha")
	})

	t.Run("same seed same values", func(t *testing.T) {
		a, err := svc.Series(ctx, SeriesRequest{Rows: 30})
		require.NoError(t, err)
		b, err := svc.Series(ctx, SeriesRequest{Rows: 30, Chart: "bar"})
		require.NoError(t, err)

		assert.Equal(t, a.Series.Values(), b.Series.Values())
		assert.Equal(t, series.Generate(30, fixedNow, 42).Values(), a.Series.Values())
	})

	t.Run("preview shorter than series", func(t *testing.T) {
		view, err := svc.Series(ctx, SeriesRequest{Rows: 10})
		require.NoError(t, err)
		assert.Equal(t, view.Series.Points, view.Preview)
	})
}

func TestDashboardService_SeriesValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)

	tests := []struct {
		name    string
		req     SeriesRequest
		wantErr error
	}{
		{"below minimum", SeriesRequest{Rows: 9}, ErrInvalidRows},
		{"above maximum", SeriesRequest{Rows: 201}, ErrInvalidRows},
		{"negative", SeriesRequest{Rows: -1}, ErrInvalidRows},
		{"unknown chart", SeriesRequest{Rows: 20, Chart: "pie"}, ErrInvalidChart},
		{"long name", SeriesRequest{Rows: 20, Name: strings.Repeat("x", 81)}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := svc.Series(context.Background(), tt.req)
			assert.Nil(t, view)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDashboardService_SeriesBoundsFromConfig(t *testing.T) {
	svc, _ := newTestService(t, func(cfg *config.DashboardConfig) {
		cfg.MinRows = 5
		cfg.MaxRows = 8
		cfg.DefaultRows = 6
	})

	view, err := svc.Series(context.Background(), SeriesRequest{Rows: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, view.Series.Len())

	_, err = svc.Series(context.Background(), SeriesRequest{Rows: 9})
	assert.ErrorIs(t, err, ErrInvalidRows)
}

func TestDashboardService_Points(t *testing.T) {
	t.Run("within bounds of the centre", func(t *testing.T) {
		svc, _ := newTestService(t, nil)
		points := svc.Points(context.Background())

		require.Len(t, points, 10)
		for _, p := range points {
			assert.InDelta(t, 24.86, p.Lat, 0.1)
			assert.InDelta(t, 67.01, p.Lon, 0.1)
		}
	})

	t.Run("fixed map seed repeats", func(t *testing.T) {
		svc, _ := newTestService(t, func(cfg *config.DashboardConfig) { cfg.MapSeed = 7 })
		assert.Equal(t, svc.Points(context.Background()), svc.Points(context.Background()))
	})

	t.Run("custom source", func(t *testing.T) {
		source := func() rand.Source { return rand.NewPCG(1, 2) }
		a, _ := newTestService(t, nil, WithMapSource(source))
		b, _ := newTestService(t, nil, WithMapSource(source))
		assert.Equal(t, a.PointsN(context.Background(), 25), b.PointsN(context.Background(), 25))
	})

	t.Run("zero sigma collapses onto the centre", func(t *testing.T) {
		svc, _ := newTestService(t, func(cfg *config.DashboardConfig) { cfg.MapSigma = 0 })
		for _, p := range svc.PointsN(context.Background(), 3) {
			assert.Equal(t, 24.86, p.Lat)
			assert.Equal(t, 67.01, p.Lon)
		}
	})
}

func TestDashboardService_Map(t *testing.T) {
	svc, _ := newTestService(t, nil)
	view := svc.Map(context.Background())

	assert.Equal(t, 24.86, view.Center.Lat)
	require.Len(t, view.Points, 10)
	require.NotNil(t, view.Bounds)
	for _, p := range view.Points {
		assert.GreaterOrEqual(t, p.Lat, view.Bounds.MinLat)
		assert.LessOrEqual(t, p.Lat, view.Bounds.MaxLat)
		assert.GreaterOrEqual(t, p.Lon, view.Bounds.MinLon)
		assert.LessOrEqual(t, p.Lon, view.Bounds.MaxLon)
	}
}

func TestDashboardService_UploadCSV(t *testing.T) {
	svc, logs := newTestService(t, nil)
	ctx := context.Background()

	t.Run("numeric with summary", func(t *testing.T) {
		view, err := svc.Upload(ctx, "data.csv", strings.NewReader(testutil.NumericCSV), true)
		require.NoError(t, err)

		assert.Equal(t, FormatCSV, view.Format)
		assert.Equal(t, 3, view.Rows)
		assert.Equal(t, int64(len(testutil.NumericCSV)), view.Size)
		assert.Equal(t, 3, view.Preview.NumRows())
		require.NotNil(t, view.Summary)
		require.Len(t, view.Summary.Columns, 1)
		num := view.Summary.Columns[0].Numeric
		require.NotNil(t, num)
		assert.Equal(t, 2.0, num.Mean)
		assert.Equal(t, 1.0, num.Min)
		assert.Equal(t, 3.0, num.Max)
		testutil.AssertLogContains(t, logs, slog.LevelInfo, "upload parsed")
	})

	t.Run("mixed kinds without summary", func(t *testing.T) {
		view, err := svc.Upload(ctx, "cities.csv", strings.NewReader(testutil.MixedCSV), false)
		require.NoError(t, err)

		assert.Nil(t, view.Summary)
		kinds := make([]table.ColumnKind, len(view.Columns))
		for i, c := range view.Columns {
			kinds[i] = c.Kind
		}
		assert.Equal(t, []table.ColumnKind{table.KindText, table.KindNumeric, table.KindBoolean, table.KindText}, kinds)
	})

	t.Run("preview is capped", func(t *testing.T) {
		rows := [][]string{{"n"}}
		for i := 0; i < 20; i++ {
			rows = append(rows, []string{"1"})
		}
		view, err := svc.Upload(ctx, "", strings.NewReader(testutil.CSV(rows...)), false)
		require.NoError(t, err)

		assert.Equal(t, 20, view.Rows)
		assert.Equal(t, 5, view.Preview.NumRows())
	})

	t.Run("header only", func(t *testing.T) {
		view, err := svc.Upload(ctx, "empty.csv", strings.NewReader(testutil.HeaderOnlyCSV), true)
		require.NoError(t, err)

		assert.Equal(t, 0, view.Rows)
		assert.Len(t, view.Columns, 3)
		require.NotNil(t, view.Summary)
		assert.Len(t, view.Summary.Columns, 3)
	})
}

func TestDashboardService_UploadErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("parse error passes through", func(t *testing.T) {
		svc, logs := newTestService(t, nil)
		_, err := svc.Upload(ctx, "ragged.csv", strings.NewReader(testutil.RaggedCSV), false)

		var parseErr *table.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, 3, parseErr.Line)
		assert.ErrorIs(t, err, table.ErrFieldCount)
		testutil.AssertLogContains(t, logs, slog.LevelWarn, "upload rejected by parser")
	})

	t.Run("empty input", func(t *testing.T) {
		svc, _ := newTestService(t, nil)
		_, err := svc.Upload(ctx, "blank.csv", strings.NewReader(""), false)
		assert.ErrorIs(t, err, table.ErrNoColumns)
	})

	t.Run("too large", func(t *testing.T) {
		svc, _ := newTestService(t, func(cfg *config.DashboardConfig) { cfg.MaxUploadBytes = 4 })
		_, err := svc.Upload(ctx, "data.csv", strings.NewReader(testutil.NumericCSV), false)
		assert.ErrorIs(t, err, ErrUploadTooLarge)
	})

	t.Run("exactly at the limit", func(t *testing.T) {
		svc, _ := newTestService(t, func(cfg *config.DashboardConfig) { cfg.MaxUploadBytes = int64(len(testutil.NumericCSV)) })
		_, err := svc.Upload(ctx, "data.csv", strings.NewReader(testutil.NumericCSV), false)
		assert.NoError(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		svc, _ := newTestService(t, nil)
		_, err := svc.Upload(ctx, "data.csv", nil, false)
		assert.ErrorIs(t, err, ErrMissingFile)
	})

	t.Run("read failure", func(t *testing.T) {
		svc, _ := newTestService(t, nil)
		boom := errors.New("connection reset")
		_, err := svc.Upload(ctx, "data.csv", io.MultiReader(strings.NewReader("a\n"), &failingReader{err: boom}), false)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("bad workbook", func(t *testing.T) {
		svc, _ := newTestService(t, nil)
		_, err := svc.Upload(ctx, "book.xlsx", strings.NewReader("not a zip"), false)
		assert.ErrorIs(t, err, table.ErrWorkbook)
	})
}

type failingReader struct{ err error }

func (r *failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestDashboardService_UploadWorkbook(t *testing.T) {
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"x"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{1}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{2}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{3}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	svc, _ := newTestService(t, nil)
	fromBook, err := svc.Upload(context.Background(), "Data.XLSX", bytes.NewReader(buf.Bytes()), true)
	require.NoError(t, err)
	fromCSV, err := svc.Upload(context.Background(), "data.csv", strings.NewReader(testutil.NumericCSV), true)
	require.NoError(t, err)

	assert.Equal(t, FormatXLSX, fromBook.Format)
	assert.Equal(t, fromCSV.Columns, fromBook.Columns)
	assert.Equal(t, fromCSV.Summary, fromBook.Summary)
}

func TestUploadFormat(t *testing.T) {
	tests := map[string]string{
		"data.csv":   FormatCSV,
		"data.CSV":   FormatCSV,
		"data.txt":   FormatCSV,
		"":           FormatCSV,
		"book.xlsx":  FormatXLSX,
		"BOOK.XLSX":  FormatXLSX,
		"book.xlsx ": FormatCSV,
	}
	for name, want := range tests {
		assert.Equal(t, want, UploadFormat(name), name)
	}
}

func TestDashboardService_Ready(t *testing.T) {
	svc, _ := newTestService(t, nil)
	assert.Equal(t, "dashboard", svc.Name())
	assert.NoError(t, svc.Ready(context.Background()))
}

func TestDashboardService_RecordsMetrics(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	svc := NewDashboardService(config.Default().Dashboard, metrics, logger)
	ctx := context.Background()
	_, err = svc.Series(ctx, SeriesRequest{Rows: 25, Chart: "bar"})
	require.NoError(t, err)
	_, err = svc.Upload(ctx, "data.csv", strings.NewReader(testutil.NumericCSV), true)
	require.NoError(t, err)
	_, err = svc.Upload(ctx, "bad.csv", strings.NewReader(testutil.RaggedCSV), false)
	require.Error(t, err)
	svc.Map(ctx)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, "dashboard_series_generated_total")
	assert.Contains(t, body, `chart="bar"`)
	assert.Contains(t, body, "dashboard_uploads_total")
	assert.Contains(t, body, `status="parse_error"`)
	assert.Contains(t, body, "dashboard_upload_parse_failures_total")
	assert.Contains(t, body, "dashboard_summaries_computed_total")
	assert.Contains(t, body, "dashboard_map_points_generated_total")
}
