package config

import "sampledash/pkg/contracts"

// Application constants
const (
	AppName    = "sampledash"
	AppTitle   = "Sample Dashboard"
	AppVersion = contracts.Version
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

// UploadFormField is the multipart field carrying the uploaded file.
const UploadFormField = "file"
