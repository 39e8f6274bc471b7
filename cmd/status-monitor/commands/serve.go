package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/miradorstack/status-monitor/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the gRPC health service and the HTTP check trigger",
	Long: `serve exposes the last classified state through the gRPC health protocol and
accepts POST /v1/status/check from an external trigger. It does not schedule checks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadRuntime()
		if err != nil {
			return err
		}
		defer env.Close()
		logger := env.logger
		cfg := env.cfg

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		service, err := newStatusService(ctx, env)
		if err != nil {
			return err
		}

		server, err := api.NewServer(cfg.Server)
		if err != nil {
			return err
		}
		service.OnResult(server.Publish)

		logger.Info("starting status-monitor",
			slog.String("grpc_address", server.Address()),
			slog.String("http_address", cfg.Server.HTTPAddress),
		)

		var httpServer *http.Server
		if cfg.Server.HTTPAddress != "" {
			httpServer = &http.Server{
				Addr:         cfg.Server.HTTPAddress,
				Handler:      api.NewHTTPHandler(logger, service, cfg.Server.CheckTimeout),
				ReadTimeout:  5 * time.Second,
				WriteTimeout: cfg.Server.CheckTimeout + 5*time.Second,
			}
			go func() {
				logger.Info("http server listening", slog.String("address", cfg.Server.HTTPAddress))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server exited", slog.Any("error", err))
					stop()
				}
			}()
		}

		go func() {
			if serveErr := server.Start(); serveErr != nil {
				logger.Error("gRPC server exited", slog.Any("error", serveErr))
				stop()
			}
		}()

		<-ctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer cancel()
		server.Shutdown(shutdownCtx)

		if httpServer != nil {
			if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("http server shutdown", slog.Any("error", err))
			}
		}

		logger.Info("status-monitor stopped")
		return nil
	},
}
