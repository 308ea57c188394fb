package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/anime-shed/sharpness-inspector-go/internal/container"
	"github.com/anime-shed/sharpness-inspector-go/internal/logger"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	var port string
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve [--port <port>] [--debug]",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := applyServeFlags(cmd, port, debug); err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			c, err := container.NewContainer(cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			server := &http.Server{
				Addr:         cfg.ServerAddress(),
				Handler:      c.Handler(),
				ReadTimeout:  cfg.RequestTimeout,
				WriteTimeout: cfg.RequestTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.WithFields(logrus.Fields{
					"address": cfg.ServerAddress(),
					"timeout": cfg.RequestTimeout,
					"workers": cfg.MaxWorkers,
				}).Info("Starting HTTP server")

				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-quit:
			}

			logger.Info("Shutting down server...")

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				logger.WithError(err).Error("Server forced to shutdown")
				return err
			}

			logger.Info("Server exited")
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "8080", "Port to run HTTP server on (overrides PORT)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debugging (pprof) - WARNING: do not enable in production")
	return cmd
}

// applyServeFlags exports explicitly set flags so they override .env values
func applyServeFlags(cmd *cobra.Command, port string, debug bool) error {
	if cmd.Flags().Changed("port") {
		if err := os.Setenv("PORT", port); err != nil {
			return fmt.Errorf("failed to set PORT: %w", err)
		}
	}
	if cmd.Flags().Changed("debug") && debug {
		if err := os.Setenv("DEBUG", "true"); err != nil {
			return fmt.Errorf("failed to set DEBUG: %w", err)
		}
	}
	return nil
}
