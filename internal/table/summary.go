package table

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// NumericSummary holds the describe() row for a numeric column. Fields other
// than Count are NaN when Count is zero; Std is also NaN when Count is one.
type NumericSummary struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// CategoricalSummary holds the describe() row for a text or boolean column.
// Ties for Top go to the value seen first.
type CategoricalSummary struct {
	Count  int
	Unique int
	Top    string
	Freq   int
}

// ColumnSummary pairs a column with exactly one of its statistic sets.
type ColumnSummary struct {
	Name        string
	Kind        ColumnKind
	Missing     int
	Numeric     *NumericSummary
	Categorical *CategoricalSummary
}

// Summary is the per-column describe() of a table, in column order.
type Summary struct {
	Rows    int
	Columns []ColumnSummary
}

var quartiles = []float64{25, 50, 75}

// Summarize computes descriptive statistics for every column. Missing cells
// are excluded from aggregates and reported in Missing.
func Summarize(t *Table) Summary {
	summary := Summary{Rows: t.NumRows(), Columns: make([]ColumnSummary, 0, t.NumColumns())}

	for i, col := range t.Columns {
		cells := t.Column(i)
		cs := ColumnSummary{Name: col.Name, Kind: col.Kind}
		for _, c := range cells {
			if c.IsMissing() {
				cs.Missing++
			}
		}

		if col.Kind.IsNumeric() {
			cs.Numeric = summarizeNumeric(cells)
		} else {
			cs.Categorical = summarizeCategorical(cells)
		}
		summary.Columns = append(summary.Columns, cs)
	}

	return summary
}

func summarizeNumeric(cells []Cell) *NumericSummary {
	values := make(stats.Float64Data, 0, len(cells))
	for _, c := range cells {
		if v, ok := c.Float(); ok {
			values = append(values, v)
		}
	}

	if len(values) == 0 {
		nan := math.NaN()
		return &NumericSummary{Mean: nan, Std: nan, Min: nan, Q1: nan, Median: nan, Q3: nan, Max: nan}
	}

	desc, err := stats.DescribePercentileFunc(values, false, &quartiles, LinearPercentile)
	if err != nil {
		nan := math.NaN()
		return &NumericSummary{Count: len(values), Mean: nan, Std: nan, Min: nan, Q1: nan, Median: nan, Q3: nan, Max: nan}
	}

	// Describe reports the population deviation; the table view uses the
	// sample deviation.
	std, _ := stats.StandardDeviationSample(values)

	ns := &NumericSummary{
		Count: desc.Count,
		Mean:  desc.Mean,
		Std:   std,
		Min:   desc.Min,
		Max:   desc.Max,
	}
	for _, p := range desc.DescriptionPercentiles {
		switch p.Percentile {
		case 25:
			ns.Q1 = p.Value
		case 50:
			ns.Median = p.Value
		case 75:
			ns.Q3 = p.Value
		}
	}
	return ns
}

func summarizeCategorical(cells []Cell) *CategoricalSummary {
	counts := make(map[string]int)
	order := make([]string, 0)
	cs := &CategoricalSummary{}

	for _, c := range cells {
		if c.IsMissing() {
			continue
		}
		cs.Count++
		v := c.String()
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}

	cs.Unique = len(order)
	for _, v := range order {
		if counts[v] > cs.Freq {
			cs.Top = v
			cs.Freq = counts[v]
		}
	}
	return cs
}

// LinearPercentile returns the percent-th percentile (0 to 100) using linear
// interpolation between closest ranks, position (n-1)*p.
func LinearPercentile(input stats.Float64Data, percent float64) (float64, error) {
	if input.Len() == 0 {
		return math.NaN(), stats.ErrEmptyInput
	}
	if percent < 0 || percent > 100 {
		return math.NaN(), stats.ErrBounds
	}

	sorted := make([]float64, input.Len())
	copy(sorted, input)
	sort.Float64s(sorted)

	h := float64(len(sorted)-1) * percent / 100
	lo := math.Floor(h)
	i := int(lo)
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1], nil
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i]), nil
}
