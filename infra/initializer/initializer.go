// Package initializer builds the application's infrastructure dependencies.
package initializer

import (
	"fmt"

	"github.com/duitku/duitku/infra"
	infraeventbus "github.com/duitku/duitku/infra/eventbus"
	accountrepo "github.com/duitku/duitku/infra/repository/account"
	goalrepo "github.com/duitku/duitku/infra/repository/goal"
	ledgerrepo "github.com/duitku/duitku/infra/repository/ledger"
	"github.com/duitku/duitku/pkg/app"
	"github.com/duitku/duitku/pkg/config"
)

// InitializeDependencies opens the three store connections, applies their
// schemas and wires the repositories and event bus.
func InitializeDependencies(cfg *config.App) (*app.Deps, error) {
	deps := &app.Deps{}
	logger := setupLogger(cfg.Log)
	deps.Logger = logger

	stores, err := infra.NewStores(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize store connections", "error", err)
		return nil, fmt.Errorf("failed to initialize store connections: %w", err)
	}
	if err := stores.Migrate(); err != nil {
		logger.Error("Failed to migrate stores", "error", err)
		return nil, fmt.Errorf("failed to migrate stores: %w", err)
	}

	deps.Uow = ledgerrepo.NewUoW(stores.Ledger)
	deps.Accounts = accountrepo.New(stores.Accounts)
	deps.Goals = goalrepo.New(stores.Goals)
	deps.EventBus = infraeventbus.NewWithMemory(logger)

	return deps, nil
}
