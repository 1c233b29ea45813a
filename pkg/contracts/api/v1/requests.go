// Package api contains the JSON contract of the dashboard HTTP API.
// Version v1 represents the current stable API version.
package api

// SeriesQuery is the query string of GET /api/series and the frame clients
// send on /ws/series. Zero values select the configured defaults.
type SeriesQuery struct {
	Rows  int    `json:"rows" query:"rows"`
	Chart string `json:"chart" query:"chart" validate:"omitempty,oneof=line area bar"`
	Name  string `json:"name" query:"name" validate:"max=80"`
}

// UploadRequest describes the multipart upload accepted by POST /api/uploads.
// The file travels in the "file" form field.
type UploadRequest struct {
	Filename string `json:"filename" validate:"required,filename"`
	Summary  bool   `json:"summary" query:"summary"`
}
