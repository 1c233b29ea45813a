package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseChartType(t *testing.T) {
	tests := []struct {
		input   string
		want    ChartType
		wantErr bool
	}{
		{input: "Line", want: ChartLine},
		{input: "area", want: ChartArea},
		{input: " BAR ", want: ChartBar},
		{input: "", want: ChartLine},
		{input: "pie", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseChartType(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownChartType)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChartType_Label(t *testing.T) {
	labels := make([]string, 0, 3)
	for _, c := range ChartTypes() {
		labels = append(labels, c.Label())
	}
	assert.Equal(t, []string{"Line", "Area", "Bar"}, labels)
}
