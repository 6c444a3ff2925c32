package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/examples/counter"
	"github.com/vango-dev/reactor/pkg/live"
	"github.com/vango-dev/reactor/pkg/telemetry"
)

func serveCmd(g *globals) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the live preview server",
		Long: `Serve the counter app to browsers. The page receives host
operations over a WebSocket and sends events back.

Examples:
  reactor serve
  reactor serve --port=8080
  reactor serve --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Dev.Port = port
			}
			if host != "" {
				cfg.Dev.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts := []live.Option{
				live.WithLogger(logger),
				live.WithTitle(cfg.Name),
				live.WithAllowedOrigins(cfg.Dev.AllowedOrigins...),
			}
			if cfg.Metrics.Enabled {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				m := telemetry.NewMetrics(telemetry.WithRegistry(reg), telemetry.WithNamespace(cfg.Metrics.Namespace))
				opts = append(opts, live.WithMetrics(m, reg))
			}
			if cfg.Tracing.Enabled {
				opts = append(opts, live.WithObserver(telemetry.NewTracer(telemetry.WithTracerName(cfg.Tracing.Name))))
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			success(cmd.OutOrStdout(), "Serving %s on %s", cfg.Name, cfg.DevURL())
			return live.New(counter.New(logger), opts...).ListenAndServe(ctx, cfg.DevAddress())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")

	return cmd
}
