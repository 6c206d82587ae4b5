package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/charmbracelet/log"

	"github.com/duitku/duitku/infra/initializer"
	"github.com/duitku/duitku/pkg/app"
	"github.com/duitku/duitku/pkg/config"
	"github.com/duitku/duitku/pkg/jobs"
	"github.com/duitku/duitku/pkg/service/outbox"
	"github.com/duitku/duitku/pkg/service/reconciliation"
	"github.com/duitku/duitku/webapi"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	logger := deps.Logger

	application := app.New(deps, cfg)

	// Background workers: the outbox drain and the balance reconciler.
	manager := jobs.New()
	manager.Register(outbox.New(
		deps.Uow.Outbox(),
		deps.Accounts,
		deps.EventBus,
		logger,
		cfg.Outbox.PollInterval,
		cfg.Outbox.BatchSize,
		cfg.Outbox.MaxAttempts,
	))
	manager.Register(reconciliation.New(
		deps.Accounts,
		deps.Uow.Transactions(),
		deps.EventBus,
		logger,
		cfg.Reconciler.Interval,
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobsDone := make(chan struct{})
	go func() {
		manager.Start(ctx)
		close(jobsDone)
	}()

	fiberApp := webapi.SetupApp(application)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
	)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- fiberApp.Listen(addr)
	}()

	select {
	case err := <-serverErr:
		stop()
		<-jobsDone
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		if err := fiberApp.Shutdown(); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
		<-jobsDone
		return nil
	}
}
