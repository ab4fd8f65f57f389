package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/citybreaks/internal/buildinfo"
	"github.com/dmitrijs2005/citybreaks/internal/logging"
	"github.com/dmitrijs2005/citybreaks/internal/server"
	"github.com/dmitrijs2005/citybreaks/internal/server/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	return app.Run(ctx)
}
