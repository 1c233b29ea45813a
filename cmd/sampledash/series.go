package main

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sampledash/internal/exporter"
	"sampledash/internal/series"
	"sampledash/internal/services"
	"sampledash/internal/validation"
)

func newSeriesCmd(c *cli) *cobra.Command {
	var (
		rows  int
		asCSV bool
		out   string
		bom   bool
	)

	cmd := &cobra.Command{
		Use:   "series",
		Short: "Print the seeded random-walk series",
		Long: `Generate the random-walk series the dashboard charts, ending today.

The same seed and row count always produce the same values.

Example: sampledash series --rows 30 --csv --out data/series.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := c.dashboard().Series(cmd.Context(), services.SeriesRequest{
				Rows:  rows,
				Chart: string(series.ChartLine),
			})
			if err != nil {
				return err
			}

			writer := exporter.NewCSVWriter(c.logger)
			opts := exporter.WriteOptions{BOMPrefix: bom}

			if out != "" {
				validator := validation.NewFileValidator(c.logger, 0)
				if err := validator.ValidateOutputDirectory(filepath.Dir(out)); err != nil {
					return err
				}
				opts.Headers = exporter.SeriesHeaders
				opts.Records = exporter.SeriesRecords(view.Series)
				if err := writer.WriteFile(out, opts); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", view.Rows, out)
				return nil
			}

			if asCSV {
				return writer.WriteSeries(cmd.OutOrStdout(), view.Series, opts)
			}
			return printSeries(cmd.OutOrStdout(), view.Series)
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 0, "Number of rows (default: configured default_rows)")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "Write CSV instead of an aligned table")
	cmd.Flags().StringVar(&out, "out", "", "Write CSV to this file instead of stdout")
	cmd.Flags().BoolVar(&bom, "bom", false, "Prefix CSV output with a UTF-8 byte order mark")

	return cmd
}

func printSeries(w io.Writer, s series.Series) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tVALUE")
	for _, p := range s.Points {
		fmt.Fprintf(tw, "%s\t%.4f\n", p.Date.Format(exporter.DateLayout), p.Value)
	}
	return tw.Flush()
}
