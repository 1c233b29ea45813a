package testutil

import (
	"bytes"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sample CSV bodies shared by service and handler tests.
const (
	// NumericCSV summarizes to mean 2, min 1, max 3.
	NumericCSV = "x\n1\n2\n3\n"
	// MixedCSV has one column of each inferred kind plus missing values.
	MixedCSV = "city,population,coastal,note\n" +
		"Karachi,20.4,true,port\n" +
		"Lahore,13.1,false,\n" +
		"Quetta,NA,false,hills\n"
	// HeaderOnlyCSV has a header and no data rows.
	HeaderOnlyCSV = "a,b,c\n"
	// RaggedCSV has a row wider than its header.
	RaggedCSV = "a,b\n1,2\n3,4,5\n"
)

// CSV joins rows of already-escaped fields into CSV text.
func CSV(rows ...[]string) string {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// MultipartUpload builds a multipart/form-data body with a single file part
// and returns it with its Content-Type header value.
func MultipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, w.FormDataContentType()
}

// Workbook builds an .xlsx file whose first sheet holds rows from A1 down.
func Workbook(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}
