// Command sampledash serves the sample dashboard and exposes its generators
// and upload parser on the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"sampledash/internal/config"
	"sampledash/internal/infrastructure"
	"sampledash/internal/services"
	"sampledash/pkg/contracts"
)

// cli carries the state shared by every subcommand once the root command has
// loaded the configuration.
type cli struct {
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "sampledash",
		Short:         "Sample dashboard: random-walk series, table uploads and a map",
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
			return c.load(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.configFile, "config", "", "Path to a YAML config file (default: config.yaml or configs/config.yaml)")

	rootCmd.AddCommand(
		newServeCmd(c),
		newSeriesCmd(c),
		newDescribeCmd(c),
		newPointsCmd(c),
	)

	return rootCmd
}

// load reads the configuration and builds the command logger. Logs go to
// logOut so that command output on stdout stays machine-readable.
func (c *cli) load(logOut io.Writer) error {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, logOut)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	c.cfg = cfg
	c.logger = logger
	return nil
}

// dashboard builds the service the offline commands share with the server.
func (c *cli) dashboard() *services.DashboardService {
	return services.NewDashboardService(c.cfg.Dashboard, nil, c.logger)
}
