// Package app assembles the application's services from their dependencies.
package app

import (
	"log/slog"

	"github.com/duitku/duitku/pkg/config"
	"github.com/duitku/duitku/pkg/eventbus"
	accountrepo "github.com/duitku/duitku/pkg/repository/account"
	goalrepo "github.com/duitku/duitku/pkg/repository/goal"
	ledgerrepo "github.com/duitku/duitku/pkg/repository/ledger"
	accountsvc "github.com/duitku/duitku/pkg/service/account"
	goalsvc "github.com/duitku/duitku/pkg/service/goal"
	ledgersvc "github.com/duitku/duitku/pkg/service/ledger"
	transfersvc "github.com/duitku/duitku/pkg/service/transfer"
)

// Deps contains the infrastructure dependencies the services are built on.
type Deps struct {
	Uow      ledgerrepo.UnitOfWork
	Accounts accountrepo.Repository
	Goals    goalrepo.Repository
	EventBus eventbus.Bus
	Logger   *slog.Logger
}

// App holds the assembled services.
type App struct {
	Deps            *Deps
	Config          *config.App
	LedgerService   *ledgersvc.Service
	AccountService  *accountsvc.Service
	TransferService *transfersvc.Service
	GoalService     *goalsvc.Service
}

// New wires the services. The ledger service depends only on repositories;
// the account and goal services reach the journal through it.
func New(deps *Deps, cfg *config.App) *App {
	a := &App{
		Deps:   deps,
		Config: cfg,
	}
	a.LedgerService = ledgersvc.New(
		deps.Uow, deps.Accounts, deps.EventBus, deps.Logger, cfg.Ledger.MaxTransactionAmount)
	a.AccountService = accountsvc.New(
		deps.Accounts, a.LedgerService, deps.Logger, cfg.Ledger.LowBalanceThreshold)
	a.TransferService = transfersvc.New(
		deps.Uow, deps.Accounts, deps.Goals, deps.EventBus, deps.Logger,
		cfg.Ledger.MaxTransactionAmount)
	a.GoalService = goalsvc.New(deps.Goals, a.LedgerService, deps.Logger)
	return a
}
