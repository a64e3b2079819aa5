package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	distributionservice "github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service"
	postgresadapter "github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/adapters/postgres"
	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/adapters/webhook"
	"github.com/Fhkhdu777/chase-linker-payout/internal/platform/config"
	"github.com/Fhkhdu777/chase-linker-payout/internal/platform/db"
	"github.com/Fhkhdu777/chase-linker-payout/internal/platform/events"
	"github.com/Fhkhdu777/chase-linker-payout/internal/platform/httpserver"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server       *httpserver.Server
	postgres     *db.Postgres
	distribution distributionservice.Module
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := distributionservice.NewModule(distributionservice.Dependencies{
		Repository:  repo,
		Audit:       repo,
		Webhook:     webhook.NewSender(cfg.CallbackTimeout),
		IDGenerator: postgresadapter.UUIDGenerator{},
		Bus:         events.NewBus(),
		Logger:      logger,
	})

	server := httpserver.New(module, logger, cfg.HTTPListenAddr)
	return &APIApp{
		server:       server,
		postgres:     pg,
		distribution: module,
		logger:       logger,
	}, nil
}

// Run starts the distribution scheduler and serves HTTP until the listener
// fails or ctx is cancelled.
func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	schedulerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.distribution.Scheduler.Run(schedulerCtx)
	}()

	err := a.server.Start()

	cancel()
	a.distribution.AutoConfig.Close()
	<-done
	return err
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}
