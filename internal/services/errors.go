package services

import "errors"

// Dashboard service errors. Callers match them with errors.Is; the returned
// errors wrap them with the offending value.
var (
	ErrInvalidRows    = errors.New("invalid row count")
	ErrInvalidChart   = errors.New("invalid chart type")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUploadTooLarge = errors.New("upload too large")
	ErrMissingFile    = errors.New("missing upload file")
)
