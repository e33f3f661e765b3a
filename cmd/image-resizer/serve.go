package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-resizer/internal/config"
	"github.com/ironsheep/image-resizer/internal/fetch"
	"github.com/ironsheep/image-resizer/internal/imaging"
	"github.com/ironsheep/image-resizer/internal/logging"
	"github.com/ironsheep/image-resizer/internal/metrics"
	"github.com/ironsheep/image-resizer/internal/resizer"
	"github.com/ironsheep/image-resizer/internal/server"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "listen port (overrides PORT)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logging.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	slog.InfoContext(ctx, "configuration loaded",
		"version", Version,
		"commit", GitCommit,
		"environment", cfg.Environment,
		"port", cfg.Port,
		"workers", cfg.Workers,
		"allowed_hosts", cfg.AllowedHosts,
		"statsd", cfg.StatsDHost != "",
	)

	imaging.Startup()

	statsd, err := metrics.NewStatsD(cfg.StatsDHost, metrics.DefaultNamespace, "env:"+cfg.Environment)
	if err != nil {
		return err
	}
	defer func() {
		if err := statsd.Close(); err != nil {
			slog.Warn("failed to close statsd client", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	sink := metrics.Multi{statsd, metrics.NewPrometheus(registry, server.TimedRoutes()...)}

	allowlist := fetch.NewAllowlist(cfg.AllowedHosts)
	client := fetch.NewClient("image-resizer/"+Version,
		fetch.WithAllowlist(allowlist),
		fetch.WithTimeout(cfg.FetchTimeout),
	)

	svc := resizer.New(allowlist, client, resizer.Options{
		Workers:        cfg.Workers,
		DefaultQuality: cfg.DefaultQuality,
		Cache: resizer.CacheHeaders{
			ExpirationHours: cfg.CacheExpiration,
			JitterSeconds:   cfg.CacheJitter,
		},
	})

	return server.New(svc, sink, registry).Run(ctx, cfg.Port)
}
