// Package http implements the HTTP handlers of the dashboard. Handlers are a
// thin layer over services.DashboardService and services.HealthService: they
// parse and validate request input, call the service, map the result onto
// the v1 API contract and hand every error to the central
// errors.ErrorHandler, which renders RFC 7807 problem details.
//
// # Routes
//
//	GET  /                  dashboard page
//	GET  /api/series        series JSON (rows, chart, name)
//	GET  /api/series.csv    series CSV export (rows, bom)
//	GET  /api/map           map sample and bounds
//	POST /api/uploads       multipart "file" upload (summary)
//	GET  /api/health        health, live, ready and version probes
//	GET  /metrics           Prometheus scrape endpoint
//	GET  /ws/series         websocket: series frames for each sidebar change
//
// Parse failures in an upload become 422 problems carrying the offending
// line; the server keeps serving every other route.
package http
