package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sampledash/internal/exporter"
	"sampledash/internal/services"
	"sampledash/internal/table"
	"sampledash/internal/validation"
)

func newDescribeCmd(c *cli) *cobra.Command {
	var (
		withSummary bool
		asCSV       bool
	)

	cmd := &cobra.Command{
		Use:   "describe FILE",
		Short: "Parse a CSV or .xlsx file and print its preview and summary",
		Long: `Parse a table file exactly as the upload endpoint does.

Files ending in .xlsx are read from their first sheet; anything else is read
as CSV. Without --summary the column kinds and the first rows are printed.

Example: sampledash describe data/cities.csv --summary`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			validator := validation.NewFileValidator(c.logger, c.cfg.Dashboard.MaxUploadBytes)
			if err := validator.ValidateUploadFile(path); err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()

			view, err := c.dashboard().Upload(cmd.Context(), filepath.Base(path), f, withSummary)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asCSV {
				writer := exporter.NewCSVWriter(c.logger)
				if view.Summary != nil {
					return writer.WriteSummary(out, *view.Summary, exporter.WriteOptions{})
				}
				return writer.WriteTable(out, view.Preview, exporter.WriteOptions{})
			}
			return printUpload(out, view)
		},
	}

	cmd.Flags().BoolVar(&withSummary, "summary", false, "Compute descriptive statistics per column")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "Write the preview (or the summary) as CSV")

	return cmd
}

func printUpload(w io.Writer, view *services.UploadView) error {
	fmt.Fprintf(w, "%s: %s, %d bytes, %d rows, %d columns\n\n",
		view.Filename, view.Format, view.Size, view.Rows, len(view.Columns))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, col := range view.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprintf(tw, "%s (%s)", col.Name, col.Kind)
	}
	fmt.Fprintln(tw)
	for _, row := range view.Preview.Rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell.String())
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if view.Summary == nil {
		return nil
	}
	fmt.Fprintln(w)
	return printSummary(w, *view.Summary)
}

func printSummary(w io.Writer, sum table.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tKIND\tMISSING\tCOUNT\tMEAN\tSTD\tMIN\t25%\t50%\t75%\tMAX\tUNIQUE\tTOP\tFREQ")
	for _, col := range sum.Columns {
		fields := []string{col.Name, string(col.Kind), strconv.Itoa(col.Missing)}
		switch {
		case col.Numeric != nil:
			n := col.Numeric
			fields = append(fields, strconv.Itoa(n.Count),
				stat(n.Mean), stat(n.Std), stat(n.Min), stat(n.Q1), stat(n.Median), stat(n.Q3), stat(n.Max),
				"", "", "")
		case col.Categorical != nil:
			cs := col.Categorical
			fields = append(fields, strconv.Itoa(cs.Count), "", "", "", "", "", "", "",
				strconv.Itoa(cs.Unique))
			if cs.Count > 0 {
				fields = append(fields, cs.Top, strconv.Itoa(cs.Freq))
			} else {
				fields = append(fields, "", "")
			}
		}
		for i, f := range fields {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, f)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func stat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
