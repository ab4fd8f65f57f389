package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/citybreaks/internal/buildinfo"
	"github.com/dmitrijs2005/citybreaks/internal/client/cli"
	"github.com/dmitrijs2005/citybreaks/internal/client/config"
	"github.com/dmitrijs2005/citybreaks/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger, closer := logging.NewFileLogger(logging.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
		Verbose:    cfg.Verbose,
	})
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Run(ctx)
}
