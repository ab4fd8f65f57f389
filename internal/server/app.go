// Package server wires storage, services and transports of the citybreaks
// server and runs them until the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/citybreaks/internal/logging"
	"github.com/dmitrijs2005/citybreaks/internal/server/config"
	"github.com/dmitrijs2005/citybreaks/internal/server/export"
	"github.com/dmitrijs2005/citybreaks/internal/server/health"
	"github.com/dmitrijs2005/citybreaks/internal/server/httpapi"
	"github.com/dmitrijs2005/citybreaks/internal/server/push"
	"github.com/dmitrijs2005/citybreaks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/citybreaks/internal/server/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	hub         *push.Hub
	health      *health.Server
	httpServer  *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config, l logging.Logger) (*App, error) {
	m, err := repomanager.New(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := m.RunMigrations(ctx); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var store services.ObjectStore
	if cfg.S3Bucket != "" {
		s3, err := export.NewS3Store(ctx, export.Options{
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			BaseEndpoint: cfg.S3BaseEndpoint,
			Bucket:       cfg.S3Bucket,
			LinkTTL:      cfg.ExportLinkTTL,
		})
		if err != nil {
			_ = m.Close()
			return nil, err
		}
		store = s3
	} else {
		l.Info(ctx, "S3 bucket not configured, export disabled")
	}

	users := services.NewUserService(m, cfg)
	hub := push.NewHub(users, l)
	cityBreaks := services.NewCityBreakService(m, hub, l)
	exports := services.NewExportService(m, store)

	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(httpapi.Deps{
		Users:      users,
		CityBreaks: cityBreaks,
		Exports:    exports,
		Push:       hub,
		Logger:     l,
	})

	return &App{
		config:      cfg,
		logger:      l,
		repomanager: m,
		hub:         hub,
		health:      health.NewServer(cfg.HealthAddr, m, l),
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run serves HTTP, the push hub and the health endpoint until ctx is done or
// one of them fails.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...", "http", app.config.HTTPAddr, "health", app.config.HealthAddr)
	defer app.repomanager.Close()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.hub.Run(ctx)
	})

	g.Go(func() error {
		return app.health.Run(ctx)
	})

	g.Go(func() error {
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return app.httpServer.Shutdown(sctx)
	})

	return g.Wait()
}
