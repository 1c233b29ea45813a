// Package exporter writes dashboard data as CSV.
//
// CSVWriter is the core: it writes a header and records to any io.Writer or
// to a file, optionally prefixed with a UTF-8 BOM so spreadsheet programs
// detect the encoding. StreamWriter writes records one at a time.
//
// The series, table and summary helpers convert domain values into records:
//
//	w := exporter.NewCSVWriter(logger)
//	err := w.WriteSeries(rw, generated, exporter.WriteOptions{BOMPrefix: true})
package exporter
