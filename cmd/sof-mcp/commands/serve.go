// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/sofproj/sof-mcp/internal/errors"
	"github.com/sofproj/sof-mcp/internal/logger"
	"github.com/sofproj/sof-mcp/internal/metrics"
	"github.com/sofproj/sof-mcp/internal/tool"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		Short:   "Run the MCP server on stdio",
		Long: `Serve the extract_sof_events, export_sof_events and query_sof_events tools
over the MCP stdio transport. Logs go to stderr.

With --metrics-addr (or server.metrics_addr in the config file) a Prometheus
endpoint is served on /metrics alongside a /healthz health check.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("metrics-addr") {
				metricsAddr = a.cfg.Server.MetricsAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, metricsAddr, &mcp.StdioTransport{})
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address for the Prometheus endpoint, e.g. :9464 (empty disables it)")
	return cmd
}

// serve runs the MCP server on transport until ctx is done or the client
// disconnects.
func (a *app) serve(ctx context.Context, metricsAddr string, transport mcp.Transport) error {
	log := logger.Named("serve")

	var m *metrics.Metrics
	if metricsAddr != "" {
		m = metrics.New(nil)
		srv := metrics.NewServer(metricsAddr, m)
		go func() {
			if err := srv.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("Metrics server failed", "addr", metricsAddr, "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warnw("Metrics server shutdown failed", "error", err)
			}
		}()
		log.Infow("Serving metrics", "addr", metricsAddr)
	}

	p, err := a.pipeline(logger.Named("extract"), m)
	if err != nil {
		return err
	}
	ts := tool.NewToolset(p, a.cfg.Export, logger.Named("tool"))
	server := tool.NewServer(Version, ts)

	log.Infow("Starting MCP server", "name", tool.ServerName, "version", Version)
	if err := server.Run(ctx, transport); err != nil && ctx.Err() == nil {
		return errors.Wrap(err, "mcp server")
	}
	return nil
}
