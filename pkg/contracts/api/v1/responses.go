package api

import "math"

// SeriesPoint is one dated value of the random walk. Date is RFC 3339.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// SeriesResponse is the body of GET /api/series.
type SeriesResponse struct {
	Name       string        `json:"name"`
	Greeting   string        `json:"greeting"`
	Chart      string        `json:"chart"`
	ChartLabel string        `json:"chart_label"`
	Rows       int           `json:"rows"`
	Seed       uint64        `json:"seed"`
	Points     []SeriesPoint `json:"points"`
	Preview    []SeriesPoint `json:"preview"`
}

// LatLon is a map coordinate in degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is the viewport enclosing every map point.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// MapResponse is the body of GET /api/map.
type MapResponse struct {
	Center LatLon   `json:"center"`
	Points []LatLon `json:"points"`
	Bounds *Bounds  `json:"bounds,omitempty"`
}

// Column names an uploaded column and its inferred kind.
type Column struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// NumericSummary describes a numeric column. Fields are null when the
// statistic is undefined, such as the mean of zero values.
type NumericSummary struct {
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Q1     *float64 `json:"25%"`
	Median *float64 `json:"50%"`
	Q3     *float64 `json:"75%"`
	Max    *float64 `json:"max"`
}

// CategoricalSummary describes a text or boolean column.
type CategoricalSummary struct {
	Count  int     `json:"count"`
	Unique int     `json:"unique"`
	Top    *string `json:"top"`
	Freq   int     `json:"freq"`
}

// ColumnSummary is the description of one column.
type ColumnSummary struct {
	Name        string              `json:"name"`
	Kind        string              `json:"kind"`
	Missing     int                 `json:"missing"`
	Numeric     *NumericSummary     `json:"numeric,omitempty"`
	Categorical *CategoricalSummary `json:"categorical,omitempty"`
}

// Summary describes every column of an upload.
type Summary struct {
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
}

// UploadResponse is the body of POST /api/uploads. Preview cells are
// numbers, booleans, strings or null for missing values.
type UploadResponse struct {
	Filename string          `json:"filename"`
	Format   string          `json:"format"`
	Size     int64           `json:"size_bytes"`
	Rows     int             `json:"rows"`
	Columns  []Column        `json:"columns"`
	Preview  [][]interface{} `json:"preview"`
	Summary  *Summary        `json:"summary,omitempty"`
}

// NullableFloat returns nil for NaN and infinities, which JSON cannot carry.
func NullableFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Socket frame types sent on /ws/series.
const (
	SocketSeries = "series"
	SocketError  = "error"
)

// SocketMessage is one server frame on /ws/series. Clients send SeriesQuery
// frames and receive either a series or an error for each.
type SocketMessage struct {
	Type   string          `json:"type"`
	Series *SeriesResponse `json:"series,omitempty"`
	Error  *SocketFailure  `json:"error,omitempty"`
}

// SocketFailure mirrors the status and error code the HTTP API would have
// returned for the same input.
type SocketFailure struct {
	Status  int         `json:"status"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
