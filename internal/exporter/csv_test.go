package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sampledash/internal/series"
	"sampledash/internal/shared/testutil"
	"sampledash/internal/table"
)

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriter_Write(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	writer := NewCSVWriter(logger)

	tests := []struct {
		name     string
		options  WriteOptions
		expected string
	}{
		{
			name: "headers and records",
			options: WriteOptions{
				Headers: []string{"name", "value"},
				Records: [][]string{{"a", "1"}, {"b", "2"}},
			},
			expected: "name,value\na,1\nb,2\n",
		},
		{
			name: "records only",
			options: WriteOptions{
				Records: [][]string{{"a", "1"}},
			},
			expected: "a,1\n",
		},
		{
			name: "quotes fields with commas",
			options: WriteOptions{
				Headers: []string{"note"},
				Records: [][]string{{"hello, world"}},
			},
			expected: "note\n\"hello, world\"\n",
		},
		{
			name: "BOM prefix",
			options: WriteOptions{
				Headers:   []string{"x"},
				BOMPrefix: true,
			},
			expected: "\ufeffx\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writer.Write(&buf, tt.options))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestCSVWriter_WriteFile(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	writer := NewCSVWriter(logger)

	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	err := writer.WriteFile(path, WriteOptions{
		Headers: []string{"a"},
		Records: [][]string{{"1"}, {"2"}},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n2\n", string(data))

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Writing CSV file")
	testutil.AssertLogAttr(t, handler, "component", "csv_writer")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCSVWriter_WriteError(t *testing.T) {
	writer := NewCSVWriter(nil)

	err := writer.Write(failingWriter{}, WriteOptions{Headers: []string{"a"}, BOMPrefix: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOM")

	err = writer.Write(failingWriter{}, WriteOptions{Headers: []string{"a"}, Records: [][]string{{"1"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestStreamWriter(t *testing.T) {
	var buf bytes.Buffer
	stream, err := NewStreamWriter(&buf, []string{"id", "name"}, false)
	require.NoError(t, err)

	for i, name := range []string{"one", "two", "three"} {
		require.NoError(t, stream.WriteRecord([]string{formatInt(int64(i + 1)), name}))
	}
	require.NoError(t, stream.Flush())

	assert.Equal(t, 3, stream.Count())
	records := readCSV(t, buf.Bytes())
	require.Len(t, records, 4)
	assert.Equal(t, []string{"id", "name"}, records[0])
	assert.Equal(t, []string{"3", "three"}, records[3])
}

func TestCSVWriter_WriteSeries(t *testing.T) {
	ref := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	s := series.Generate(3, ref, 42)

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(nil).WriteSeries(&buf, s, WriteOptions{}))

	records := readCSV(t, buf.Bytes())
	require.Len(t, records, 4)
	assert.Equal(t, SeriesHeaders, records[0])
	assert.Equal(t, "2024-03-13", records[1][0])
	assert.Equal(t, "2024-03-15", records[3][0])
	assert.Equal(t, formatFloat(s.Points[2].Value), records[3][1])
}

func TestCSVWriter_WriteSeriesWithBOM(t *testing.T) {
	s := series.Generate(1, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 7)

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(nil).WriteSeries(&buf, s, WriteOptions{BOMPrefix: true}))
	assert.True(t, strings.HasPrefix(buf.String(), "\ufeffdate,value\n2024-01-01,"))
}

func TestCSVWriter_WriteTable(t *testing.T) {
	parsed, err := table.Parse(strings.NewReader(testutil.MixedCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(nil).WriteTable(&buf, parsed, WriteOptions{}))

	records := readCSV(t, buf.Bytes())
	require.Len(t, records, 4)
	assert.Equal(t, []string{"city", "population", "coastal", "note"}, records[0])
	assert.Equal(t, []string{"Karachi", "20.4", "true", "port"}, records[1])
	assert.Equal(t, []string{"Lahore", "13.1", "false", ""}, records[2])
	assert.Equal(t, []string{"Quetta", "", "false", "hills"}, records[3])
}

func TestSummaryRecords(t *testing.T) {
	parsed, err := table.Parse(strings.NewReader(testutil.MixedCSV))
	require.NoError(t, err)

	records := SummaryRecords(table.Summarize(parsed))
	require.Len(t, records, 4)

	byName := make(map[string][]string, len(records))
	for _, r := range records {
		require.Len(t, r, len(SummaryHeaders))
		byName[r[0]] = r
	}

	population := byName["population"]
	assert.Equal(t, "numeric", population[1])
	assert.Equal(t, "1", population[2])
	assert.Equal(t, "2", population[3])
	assert.Equal(t, "16.75", population[4])
	assert.Equal(t, "13.1", population[6])
	assert.Equal(t, "20.4", population[10])
	assert.Empty(t, population[11])

	city := byName["city"]
	assert.Equal(t, "text", city[1])
	assert.Equal(t, "3", city[3])
	assert.Equal(t, "3", city[11])
	assert.Equal(t, "Karachi", city[12])
	assert.Equal(t, "1", city[13])
	assert.Empty(t, city[4])

	coastal := byName["coastal"]
	assert.Equal(t, "boolean", coastal[1])
	assert.Equal(t, "2", coastal[11])
	assert.Equal(t, "false", coastal[12])
	assert.Equal(t, "2", coastal[13])
}

func TestSummaryRecordsSingleValueHasEmptyStd(t *testing.T) {
	parsed, err := table.Parse(strings.NewReader("x\n5\n"))
	require.NoError(t, err)

	records := SummaryRecords(table.Summarize(parsed))
	require.Len(t, records, 1)
	assert.Equal(t, "5", records[0][4])
	assert.Empty(t, records[0][5], "std of a single value is NaN")
}
