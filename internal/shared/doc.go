// Package shared holds code used across packages that belongs to no single
// layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//	- A buffered slog handler for asserting on log output
//	- Sample CSV bodies and multipart upload builders
//	- An in-memory .xlsx workbook builder
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    body, contentType := testutil.MultipartUpload(t, "file", "data.csv", []byte(testutil.NumericCSV))
//	    ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "upload parsed")
//	}
//
// Nothing in this package is imported by production code.
package shared
