package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/miradorstack/status-monitor/internal/config"
	"github.com/miradorstack/status-monitor/internal/repo"
	"github.com/miradorstack/status-monitor/internal/services"
	"github.com/miradorstack/status-monitor/internal/utils"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger, closer := utils.NewLoggerFromConfig(cfg.Logging)
	defer closer.Close()

	if err := cfg.Validate(false, true); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	sp := cfg.StatusPage
	client := repo.NewStatusPageClient(logger, sp.BaseURL, sp.APIKey, sp.PageID, sp.Timeout)
	handler := services.NewUpdateHandler(logger, client, sp.ComponentIDs, sp.PageID)

	logger.Info("status-page-update ready", slog.String("page_id", sp.PageID))
	lambda.Start(handler.HandleRaw)
}
