package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"sampledash/internal/app"
	"sampledash/internal/infrastructure"
)

func newServeCmd(c *cli) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		Long: `Run the dashboard HTTP server until interrupted.

Configuration comes from config.yaml, a .env file and DASH_* environment
variables, in that order.

Example: sampledash serve --port 9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				c.cfg.Server.Port = port
			}

			logger, err := infrastructure.InitializeLogger(c.cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer infrastructure.CloseLogFile()

			application, err := app.NewApplication(c.cfg, logger)
			if err != nil {
				logger.Error("Failed to initialize application", slog.String("error", err.Error()))
				return err
			}

			return application.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Override the configured listen port")

	return cmd
}
