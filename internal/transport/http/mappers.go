package http

import (
	"time"

	"sampledash/internal/geo"
	"sampledash/internal/series"
	"sampledash/internal/services"
	"sampledash/internal/table"
	api "sampledash/pkg/contracts/api/v1"
)

func toSeriesResponse(view *services.SeriesView) api.SeriesResponse {
	return api.SeriesResponse{
		Name:       view.Name,
		Greeting:   view.Greeting,
		Chart:      view.Chart.String(),
		ChartLabel: view.Chart.Label(),
		Rows:       view.Rows,
		Seed:       view.Series.Seed,
		Points:     toSeriesPoints(view.Series.Points),
		Preview:    toSeriesPoints(view.Preview),
	}
}

func toSeriesPoints(points []series.Point) []api.SeriesPoint {
	out := make([]api.SeriesPoint, len(points))
	for i, p := range points {
		out[i] = api.SeriesPoint{Date: p.Date.Format(time.RFC3339), Value: p.Value}
	}
	return out
}

func toLatLon(p geo.Point) api.LatLon {
	return api.LatLon{Lat: p.Lat, Lon: p.Lon}
}

func toMapResponse(view *services.MapView) api.MapResponse {
	resp := api.MapResponse{
		Center: toLatLon(view.Center),
		Points: make([]api.LatLon, len(view.Points)),
	}
	for i, p := range view.Points {
		resp.Points[i] = toLatLon(p)
	}
	if view.Bounds != nil {
		resp.Bounds = &api.Bounds{
			South: view.Bounds.MinLat,
			West:  view.Bounds.MinLon,
			North: view.Bounds.MaxLat,
			East:  view.Bounds.MaxLon,
		}
	}
	return resp
}

func toUploadResponse(view *services.UploadView) api.UploadResponse {
	resp := api.UploadResponse{
		Filename: view.Filename,
		Format:   view.Format,
		Size:     view.Size,
		Rows:     view.Rows,
		Columns:  make([]api.Column, len(view.Columns)),
		Preview:  make([][]interface{}, 0, view.Preview.NumRows()),
	}
	for i, c := range view.Columns {
		resp.Columns[i] = api.Column{Name: c.Name, Kind: string(c.Kind)}
	}
	for _, row := range view.Preview.Rows {
		values := make([]interface{}, len(row))
		for i, cell := range row {
			values[i] = cellValue(cell)
		}
		resp.Preview = append(resp.Preview, values)
	}
	if view.Summary != nil {
		resp.Summary = toSummary(*view.Summary)
	}
	return resp
}

// cellValue turns a cell into its JSON value: float64, bool, string or nil.
func cellValue(c table.Cell) interface{} {
	switch c.Kind() {
	case table.CellNumber:
		v, _ := c.Float()
		if p := api.NullableFloat(v); p != nil {
			return *p
		}
		return nil
	case table.CellBool:
		b, _ := c.BoolValue()
		return b
	case table.CellText:
		return c.String()
	default:
		return nil
	}
}

func toSummary(sum table.Summary) *api.Summary {
	out := &api.Summary{Rows: sum.Rows, Columns: make([]api.ColumnSummary, len(sum.Columns))}
	for i, col := range sum.Columns {
		cs := api.ColumnSummary{Name: col.Name, Kind: string(col.Kind), Missing: col.Missing}
		if n := col.Numeric; n != nil {
			cs.Numeric = &api.NumericSummary{
				Count:  n.Count,
				Mean:   api.NullableFloat(n.Mean),
				Std:    api.NullableFloat(n.Std),
				Min:    api.NullableFloat(n.Min),
				Q1:     api.NullableFloat(n.Q1),
				Median: api.NullableFloat(n.Median),
				Q3:     api.NullableFloat(n.Q3),
				Max:    api.NullableFloat(n.Max),
			}
		}
		if c := col.Categorical; c != nil {
			cs.Categorical = &api.CategoricalSummary{Count: c.Count, Unique: c.Unique, Freq: c.Freq}
			if c.Count > 0 {
				top := c.Top
				cs.Categorical.Top = &top
			}
		}
		out.Columns[i] = cs
	}
	return out
}
