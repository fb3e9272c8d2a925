package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/assemblysync/internal/buildinfo"
	"github.com/dmitrijs2005/assemblysync/internal/cli"
	"github.com/dmitrijs2005/assemblysync/internal/config"
	"github.com/dmitrijs2005/assemblysync/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)
}
