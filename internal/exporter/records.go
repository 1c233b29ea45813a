package exporter

import (
	"io"
	"log/slog"

	"sampledash/internal/series"
	"sampledash/internal/table"
)

// SeriesHeaders is the header row of a series export.
var SeriesHeaders = []string{"date", "value"}

// SummaryHeaders is the header row of a summary export. Numeric and
// categorical statistics share the row; fields that do not apply are empty.
var SummaryHeaders = []string{
	"column", "kind", "missing", "count",
	"mean", "std", "min", "25%", "50%", "75%", "max",
	"unique", "top", "freq",
}

// SeriesRecords converts a series into date,value records, oldest first.
func SeriesRecords(s series.Series) [][]string {
	records := make([][]string, 0, s.Len())
	for _, p := range s.Points {
		records = append(records, []string{formatDate(p.Date), formatFloat(p.Value)})
	}
	return records
}

// TableRecords converts table rows into records. Missing cells are empty.
func TableRecords(t *table.Table) [][]string {
	records := make([][]string, 0, t.NumRows())
	for _, row := range t.Rows {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = formatCell(cell)
		}
		records = append(records, record)
	}
	return records
}

// SummaryRecords converts a summary into one record per column.
func SummaryRecords(sum table.Summary) [][]string {
	records := make([][]string, 0, len(sum.Columns))
	for _, col := range sum.Columns {
		record := make([]string, len(SummaryHeaders))
		record[0] = col.Name
		record[1] = string(col.Kind)
		record[2] = formatInt(int64(col.Missing))

		switch {
		case col.Numeric != nil:
			n := col.Numeric
			record[3] = formatInt(int64(n.Count))
			record[4] = formatFloat(n.Mean)
			record[5] = formatFloat(n.Std)
			record[6] = formatFloat(n.Min)
			record[7] = formatFloat(n.Q1)
			record[8] = formatFloat(n.Median)
			record[9] = formatFloat(n.Q3)
			record[10] = formatFloat(n.Max)
		case col.Categorical != nil:
			c := col.Categorical
			record[3] = formatInt(int64(c.Count))
			record[11] = formatInt(int64(c.Unique))
			if c.Count > 0 {
				record[12] = c.Top
				record[13] = formatInt(int64(c.Freq))
			}
		}
		records = append(records, record)
	}
	return records
}

func formatCell(c table.Cell) string {
	if v, ok := c.Float(); ok {
		return formatFloat(v)
	}
	if b, ok := c.BoolValue(); ok {
		return formatBool(b)
	}
	return c.String()
}

// WriteSeries writes a series as date,value CSV. Headers and Records in
// opts are replaced.
func (w *CSVWriter) WriteSeries(out io.Writer, s series.Series, opts WriteOptions) error {
	opts.Headers = SeriesHeaders
	opts.Records = SeriesRecords(s)
	w.logger.Debug("exporting series", slog.Int("rows", s.Len()), slog.Uint64("seed", s.Seed))
	return w.Write(out, opts)
}

// WriteTable writes a parsed table with its original header.
func (w *CSVWriter) WriteTable(out io.Writer, t *table.Table, opts WriteOptions) error {
	opts.Headers = t.Names()
	opts.Records = TableRecords(t)
	return w.Write(out, opts)
}

// WriteSummary writes one summary row per column.
func (w *CSVWriter) WriteSummary(out io.Writer, sum table.Summary, opts WriteOptions) error {
	opts.Headers = SummaryHeaders
	opts.Records = SummaryRecords(sum)
	return w.Write(out, opts)
}
