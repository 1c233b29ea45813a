package series

import (
	"errors"
	"fmt"
	"strings"
)

// ChartType selects how the renderer draws a series.
type ChartType string

const (
	ChartLine ChartType = "line"
	ChartArea ChartType = "area"
	ChartBar  ChartType = "bar"
)

// ErrUnknownChartType is returned for anything other than line, area or bar.
var ErrUnknownChartType = errors.New("unknown chart type")

// ChartTypes lists the selectable chart types in dropdown order.
func ChartTypes() []ChartType {
	return []ChartType{ChartLine, ChartArea, ChartBar}
}

// ParseChartType accepts "Line", "area", " BAR " and so on. An empty string
// selects the line chart.
func ParseChartType(s string) (ChartType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "line":
		return ChartLine, nil
	case "area":
		return ChartArea, nil
	case "bar":
		return ChartBar, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownChartType, s)
	}
}

// Label is the dropdown caption.
func (c ChartType) Label() string {
	switch c {
	case ChartArea:
		return "Area"
	case ChartBar:
		return "Bar"
	default:
		return "Line"
	}
}

// String implements fmt.Stringer.
func (c ChartType) String() string {
	return string(c)
}
