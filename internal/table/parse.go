package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNoColumns is returned for empty or blank input.
	ErrNoColumns = errors.New("no columns to parse from file")
	// ErrFieldCount is returned when a row has more fields than the header.
	ErrFieldCount = errors.New("too many fields")
	// ErrEncoding is returned for input that is not valid UTF-8.
	ErrEncoding = errors.New("invalid UTF-8 encoding")
	// ErrMalformed wraps quoting and structural failures from the reader.
	ErrMalformed = errors.New("malformed CSV")
)

// ParseError reports why an upload could not be turned into a Table.
// Line is 1-based and zero when the failure is not tied to a line.
type ParseError struct {
	Line   int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// missingTokens are the field values treated as the missing-value marker in
// addition to the empty field.
var missingTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"-NaN": {},
	"null": {},
	"NULL": {},
	"None": {},
	"#N/A": {},
	"<NA>": {},
}

// IsMissingToken reports whether a raw field denotes a missing value.
// Surrounding whitespace is ignored.
func IsMissingToken(s string) bool {
	_, ok := missingTokens[strings.TrimSpace(s)]
	return ok
}

// Parse reads comma separated text. The first record is the header; every
// later record becomes a row. Empty and whitespace-only lines are skipped.
// Rows shorter than the header are padded with missing cells. A header with
// no data rows yields an empty table.
func Parse(r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Reason: "read upload: " + err.Error(), Err: err}
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	if !utf8.Valid(raw) {
		return nil, &ParseError{Line: invalidUTF8Line(raw), Reason: ErrEncoding.Error(), Err: ErrEncoding}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &ParseError{Reason: ErrNoColumns.Error(), Err: ErrNoColumns}
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1

	header, err := readRecord(reader)
	if err != nil {
		return nil, csvError(err)
	}

	records := make([][]string, 0, 64)
	for {
		record, err := readRecord(reader)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, &ParseError{
				Line:   line,
				Reason: fmt.Sprintf("expected %d fields, saw %d", len(header), len(record)),
				Err:    ErrFieldCount,
			}
		}
		records = append(records, record)
	}

	return build(header, records), nil
}

// readRecord returns the next record that is not a whitespace-only line.
func readRecord(reader *csv.Reader) ([]string, error) {
	for {
		record, err := reader.Read()
		if err != nil {
			return nil, err
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		return record, nil
	}
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.Line, Reason: pe.Err.Error(), Err: errors.Join(ErrMalformed, err)}
	}
	return &ParseError{Reason: err.Error(), Err: errors.Join(ErrMalformed, err)}
}

func invalidUTF8Line(b []byte) int {
	line := 1
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			return line
		}
		if r == '\n' {
			line++
		}
		b = b[size:]
	}
	return 0
}

// build names unnamed header positions, infers one kind per column and
// converts every field into a Cell of that kind.
func build(header []string, records [][]string) *Table {
	columns := make([]Column, len(header))
	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		columns[i] = Column{Name: name}
	}

	for i := range columns {
		columns[i].Kind = inferKind(records, i)
	}

	rows := make([][]Cell, len(records))
	for r, record := range records {
		row := make([]Cell, len(columns))
		for i, col := range columns {
			if i >= len(record) {
				row[i] = Missing()
				continue
			}
			row[i] = convert(record[i], col.Kind)
		}
		rows[r] = row
	}

	return &Table{Columns: columns, Rows: rows}
}

func inferKind(records [][]string, col int) ColumnKind {
	seen := 0
	numeric, boolean := true, true
	for _, record := range records {
		if col >= len(record) || IsMissingToken(record[col]) {
			continue
		}
		seen++
		if numeric {
			if _, ok := parseNumber(record[col]); !ok {
				numeric = false
			}
		}
		if boolean {
			if _, ok := parseBool(record[col]); !ok {
				boolean = false
			}
		}
		if !numeric && !boolean {
			return KindText
		}
	}

	switch {
	case seen == 0:
		return KindEmpty
	case numeric:
		return KindNumeric
	case boolean:
		return KindBoolean
	default:
		return KindText
	}
}

func convert(field string, kind ColumnKind) Cell {
	if IsMissingToken(field) {
		return Missing()
	}
	switch kind {
	case KindNumeric:
		v, _ := parseNumber(field)
		return Number(v)
	case KindBoolean:
		v, _ := parseBool(field)
		return Bool(v)
	default:
		return Text(field)
	}
}

// parseNumber accepts finite decimal numbers with optional surrounding
// spaces. Infinities and hex floats stay text.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}
