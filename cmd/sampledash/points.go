package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"sampledash/internal/exporter"
)

func newPointsCmd(c *cli) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "points",
		Short: "Print random map points around the configured centre as CSV",
		Long: `Draw points scattered normally around the dashboard map centre.

With dashboard.map_seed set the sample is the same on every run.

Example: sampledash points --count 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("count") {
				count = c.cfg.Dashboard.MapPoints
			}

			points := c.dashboard().PointsN(cmd.Context(), count)

			records := make([][]string, 0, len(points))
			for _, p := range points {
				records = append(records, []string{
					strconv.FormatFloat(p.Lat, 'f', 6, 64),
					strconv.FormatFloat(p.Lon, 'f', 6, 64),
				})
			}

			return exporter.NewCSVWriter(c.logger).Write(cmd.OutOrStdout(), exporter.WriteOptions{
				Headers: []string{"lat", "lon"},
				Records: records,
			})
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "Number of points (default: configured map_points)")

	return cmd
}
