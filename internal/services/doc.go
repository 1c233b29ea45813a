// Package services implements the business logic between the HTTP handlers
// and the pure generator and parser packages.
//
// DashboardService turns sidebar inputs into a series view, draws the map
// sample and parses uploads into a preview and optional summary. It is
// stateless: every call reads the immutable configuration and records
// business metrics, so one instance serves all requests.
//
// HealthService reports liveness, readiness and version information.
// Readiness asks every registered ReadinessChecker.
//
// Services return sentinel errors wrapped with context (ErrInvalidRows,
// ErrInvalidChart, ErrUploadTooLarge, ErrMissingFile); parser failures are
// passed through as *table.ParseError. The transport layer maps both to
// RFC 7807 responses.
package services
