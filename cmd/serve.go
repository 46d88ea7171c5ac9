package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/catalog"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/gallery"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/gallerycmd"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/handlers"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/monitoring"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string
	var snapshotPath string
	var noWarmup bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gallery HTTP API",
		Long: `Starts the gallery API on the specified port.

The catalog is fetched once at startup (unless --no-warmup is given) and
kept in memory until POST /api/refresh replaces it. Concurrent refreshes
share a single fetch. Prometheus metrics are served on /metrics.`,
		Example: `  # Start server on default port 8888
  buckshot serve

  # Serve an exported snapshot on a custom port
  buckshot serve --port 3000 --snapshot catalog.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			metrics := monitoring.NewMetrics()

			fetcher := gallerycmd.NewFetcher(cfg, snapshotPath)
			if client, ok := fetcher.(*catalog.Client); ok {
				client.WithRecorder(metrics)
			}
			session := gallery.NewSession(fetcher).WithObserver(metrics)

			if !noWarmup {
				go func() {
					if _, err := session.Refresh(cmd.Context()); err != nil {
						slog.Warn("Initial catalog fetch failed", "error", err)
					}
				}()
			}

			handler := handlers.New(session, cfg)

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(metrics.Handler(), metrics),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Gallery API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Serve an exported snapshot instead of the bucket")
	cmd.Flags().BoolVar(&noWarmup, "no-warmup", false, "Fetch the catalog on first request instead of at startup")

	return cmd
}
