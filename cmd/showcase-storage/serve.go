package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vertextoedge/showcase-storage/internal/logger"
	"github.com/vertextoedge/showcase-storage/internal/service/server"
)

// tempFileMaxAge is how old an unfinished upload must be before startup removes it
const tempFileMaxAge = 24 * time.Hour

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin and upload HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			zapLogger := logger.GetZapLogger()
			zapLogger.Info("starting showcase-storage",
				zap.String("version", version),
				zap.String("config", opts.configPath),
			)

			a, err := newApp(cfg, zapLogger)
			if err != nil {
				return err
			}
			defer a.Close()

			a.cleanTempFiles()

			httpServer := server.New(&server.Config{
				BindAddr:       cfg.HTTP.BindAddr,
				AdminUsername:  cfg.HTTP.AdminUsername,
				AdminPassword:  cfg.HTTP.AdminPassword,
				ReadTimeout:    cfg.HTTP.GetReadTimeout(),
				WriteTimeout:   cfg.HTTP.GetWriteTimeout(),
				IdleTimeout:    cfg.HTTP.GetIdleTimeout(),
				MaxUploadBytes: cfg.HTTP.GetMaxUploadBytes(),
			}, a.registry, a.discovery, a.selector, a.fs, zapLogger)

			if cfg.HTTP.AdminPassword == "" {
				zapLogger.Warn("http.admin_password is empty, admin API is unauthenticated")
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- httpServer.Start()
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			zapLogger.Info("application started successfully",
				zap.String("http_addr", cfg.HTTP.BindAddr),
				zap.Strings("roots", a.selector.Roots()),
			)

			select {
			case err := <-errCh:
				if err != nil {
					zapLogger.Error("HTTP server failed", zap.Error(err))
					return err
				}
			case <-sigChan:
				zapLogger.Info("shutdown signal received, stopping server...")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := httpServer.Stop(shutdownCtx); err != nil {
				zapLogger.Error("failed to stop HTTP server gracefully", zap.Error(err))
			}

			zapLogger.Info("application stopped successfully")
			return nil
		},
	}
}

// cleanTempFiles removes uploads interrupted by a previous crash
func (a *app) cleanTempFiles() {
	for _, root := range a.selector.Roots() {
		n, err := a.fs.CleanOldTempFiles(root, tempFileMaxAge)
		if err != nil {
			a.logger.Warn("failed to clean temp files", zap.String("root", root), zap.Error(err))
			continue
		}
		if n > 0 {
			a.logger.Info("cleaned interrupted uploads", zap.String("root", root), zap.Int("count", n))
		}
	}
}
