// SPDX-License-Identifier: Apache-2.0

// Package commands implements the sof-mcp command line.
package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sofproj/sof-mcp/internal/config"
	"github.com/sofproj/sof-mcp/internal/errors"
	"github.com/sofproj/sof-mcp/internal/logger"
	"github.com/sofproj/sof-mcp/internal/metrics"
	"github.com/sofproj/sof-mcp/internal/sof/extract"
)

// app is the state shared by every subcommand once the root command has
// loaded the configuration.
type app struct {
	configPath string
	logLevel   string
	logJSON    bool

	cfg *config.Config
}

// NewRootCmd builds the sof-mcp command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "sof-mcp",
		Short: "sof-mcp - Statement of Facts event extraction",
		Long: `sof-mcp extracts typed, time-stamped port call events from maritime
Statement of Facts documents.

Available commands:
  serve    - Run the MCP server on stdio
  extract  - Extract events from files and print them as JSON, CSV or YAML
  catalog  - Validate and inspect pattern catalogs
  version  - Show version information

Examples:
  sof-mcp serve --metrics-addr :9464
  sof-mcp extract --format csv sof-mv-star.txt
  sof-mcp catalog validate rules.yaml`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (toml, yaml or json)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	root.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "Log as JSON (overrides config)")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newExtractCmd(a))
	root.AddCommand(newCatalogCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

// load reads the configuration and initializes the global logger.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON = a.logJSON
	}
	if err := logger.Initialize(cfg.Log.Logger()); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	a.cfg = cfg
	return nil
}

// pipeline builds the extraction pipeline from the loaded configuration. A
// nil m disables metrics.
func (a *app) pipeline(log *zap.SugaredLogger, m *metrics.Metrics) (*extract.Pipeline, error) {
	cfg, err := a.cfg.Extraction.Build()
	if err != nil {
		return nil, err
	}
	opts := []extract.Option{extract.WithLogger(log)}
	if m != nil {
		opts = append(opts, extract.WithMetrics(m))
	}
	return extract.New(cfg, opts...)
}
