package table

import (
	"encoding/json"
	"strconv"
)

// CellKind identifies which variant a Cell holds.
type CellKind int

const (
	CellMissing CellKind = iota
	CellNumber
	CellBool
	CellText
)

// Cell is a single parsed value. The zero value is a missing cell.
type Cell struct {
	kind CellKind
	num  float64
	b    bool
	text string
}

// Number returns a numeric cell.
func Number(v float64) Cell { return Cell{kind: CellNumber, num: v} }

// Bool returns a boolean cell.
func Bool(v bool) Cell { return Cell{kind: CellBool, b: v} }

// Text returns a text cell.
func Text(v string) Cell { return Cell{kind: CellText, text: v} }

// Missing returns the missing-value marker.
func Missing() Cell { return Cell{} }

func (c Cell) Kind() CellKind { return c.kind }

func (c Cell) IsMissing() bool { return c.kind == CellMissing }

// Float returns the numeric value and whether the cell is a number.
func (c Cell) Float() (float64, bool) {
	return c.num, c.kind == CellNumber
}

// BoolValue returns the boolean value and whether the cell is a boolean.
func (c Cell) BoolValue() (bool, bool) {
	return c.b, c.kind == CellBool
}

// String renders the cell for previews and categorical counts. Missing
// cells render as the empty string.
func (c Cell) String() string {
	switch c.kind {
	case CellNumber:
		return strconv.FormatFloat(c.num, 'g', -1, 64)
	case CellBool:
		return strconv.FormatBool(c.b)
	case CellText:
		return c.text
	default:
		return ""
	}
}

// MarshalJSON encodes numbers and booleans natively, text as a string and
// missing cells as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case CellNumber:
		return json.Marshal(c.num)
	case CellBool:
		return json.Marshal(c.b)
	case CellText:
		return json.Marshal(c.text)
	default:
		return []byte("null"), nil
	}
}

// ColumnKind is the type inferred for a whole column.
type ColumnKind string

const (
	// KindEmpty marks a column with no non-missing values.
	KindEmpty   ColumnKind = "empty"
	KindNumeric ColumnKind = "numeric"
	KindBoolean ColumnKind = "boolean"
	KindText    ColumnKind = "text"
)

// IsNumeric reports whether the column takes part in numeric aggregates.
// Empty columns count as numeric so they summarize to zero counts and NaN.
func (k ColumnKind) IsNumeric() bool {
	return k == KindNumeric || k == KindEmpty
}
