// ABOUTME: serve command running the HTTP media host
// ABOUTME: Loads config, opens media, runs the server with graceful shutdown
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/stream-media-source/internal/application/config"
	"github.com/harper/stream-media-source/internal/application/manager"
	"github.com/harper/stream-media-source/internal/infrastructure/http"
)

func newServeCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP media host",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, cfgPath)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "config.yaml", "config file path")
	return cmd
}

func runServe(cmd *cobra.Command, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := setupLogging(cmd, cfg.Logging)
	if err != nil {
		return err
	}

	mgr, err := manager.NewFromConfig(cfg, manager.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create manager: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Unavailable items are reported and served as 503.
	if err := mgr.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("some media failed to load")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Listen.Host, cfg.Listen.Port)
	srv := &nethttp.Server{
		Addr:        addr,
		Handler:     http.NewRouter(mgr, logger),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return context.Background()
		},
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Msgf("listening on http://%s (try /media)", addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			if shutErr := mgr.Shutdown(); shutErr != nil {
				logger.Error().Err(shutErr).Msg("shutdown media")
			}
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}

	if err := mgr.Shutdown(); err != nil {
		return fmt.Errorf("shutdown media: %w", err)
	}

	logger.Info().Msg("shutdown complete")
	return nil
}
