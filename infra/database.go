// Package infra wires the three independent store connections.
package infra

import (
	"errors"
	"time"

	"github.com/duitku/duitku/infra/repository/model"
	"github.com/duitku/duitku/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Stores holds one connection per independent store. The deliberate
// partitioning is the point: no transaction ever spans two of these.
type Stores struct {
	Accounts *gorm.DB
	Ledger   *gorm.DB
	Goals    *gorm.DB
}

// NewStores opens the three store connections from config.
func NewStores(cfg *config.DB, appEnv string) (*Stores, error) {
	accounts, err := newConnection(cfg.AccountURL, appEnv)
	if err != nil {
		return nil, err
	}
	ledger, err := newConnection(cfg.LedgerURL, appEnv)
	if err != nil {
		return nil, err
	}
	goals, err := newConnection(cfg.GoalURL, appEnv)
	if err != nil {
		return nil, err
	}
	return &Stores{Accounts: accounts, Ledger: ledger, Goals: goals}, nil
}

// Migrate applies each store's schema onto its own connection.
func (s *Stores) Migrate() error {
	if err := s.Accounts.AutoMigrate(&model.Account{}, &model.BalanceAdjustment{}); err != nil {
		return err
	}
	if err := s.Ledger.AutoMigrate(
		&model.Transaction{}, &model.CategorySplit{},
		&model.TransferLink{}, &model.OutboxRecord{}); err != nil {
		return err
	}
	return s.Goals.AutoMigrate(&model.Goal{}, &model.GoalContribution{})
}

func newConnection(databaseURL, appEnv string) (*gorm.DB, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL is not set")
	}

	logMode := logger.Silent
	if appEnv == "development" {
		logMode = logger.Info
	}

	connection, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	return connection, nil
}
