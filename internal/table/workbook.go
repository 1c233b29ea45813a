package table

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrWorkbook is returned when an .xlsx upload cannot be opened.
var ErrWorkbook = errors.New("unreadable workbook")

// ParseWorkbook reads the first sheet of an .xlsx workbook with the same
// header and inference rules as Parse. Cells to the right of the header get
// positional "Unnamed: N" columns, since spreadsheets carry no field count.
func ParseWorkbook(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("%s: %v", ErrWorkbook, err), Err: errors.Join(ErrWorkbook, err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Reason: ErrNoColumns.Error(), Err: ErrNoColumns}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("read sheet %q: %v", sheets[0], err), Err: errors.Join(ErrWorkbook, err)}
	}

	// Skip fully blank rows, matching the CSV reader.
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		if !blank(row) {
			records = append(records, row)
		}
	}
	if len(records) == 0 {
		return nil, &ParseError{Reason: ErrNoColumns.Error(), Err: ErrNoColumns}
	}

	header, body := records[0], records[1:]
	width := len(header)
	for _, row := range body {
		width = max(width, len(row))
	}
	for len(header) < width {
		header = append(header, "")
	}

	return build(header, body), nil
}

func blank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
