// Package app wires the dashboard together and manages its lifecycle.
//
// NewApplication takes a loaded configuration and a logger, initializes
// OpenTelemetry, builds the services and mounts the handlers behind the
// middleware chain:
//
//	RequestID → RealIP → OTel → Logger → Recoverer → SecurityHeaders → CORS → RateLimit → Timeout
//
// Run serves until the context is cancelled or SIGINT/SIGTERM arrives, then
// drains in-flight requests within the configured shutdown timeout and
// flushes telemetry. Errors are returned to the caller; the package never
// calls os.Exit.
package app
