package exporter

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the date format used for series rows.
const DateLayout = "2006-01-02"

// formatFloat formats a float64 with up to six decimals and no trailing
// zeros. NaN is written as an empty field.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	if math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}
