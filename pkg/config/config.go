// Package config loads application configuration from the environment.
package config

import (
	"time"
)

// DB carries one connection URL per independent store.
type DB struct {
	AccountURL string `envconfig:"ACCOUNT_URL"`
	LedgerURL  string `envconfig:"LEDGER_URL"`
	GoalURL    string `envconfig:"GOAL_URL"`
}

// Jwt configures the token verification middleware. Token issuance lives in
// the external auth layer; key material is injected, never hard-coded.
type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

// Ledger carries the core's tunables. Amounts are in minor units.
type Ledger struct {
	MaxTransactionAmount int64 `envconfig:"MAX_TRANSACTION_AMOUNT" default:"100000000000"`
	LowBalanceThreshold  int64 `envconfig:"LOW_BALANCE_THRESHOLD" default:"5000000"`
}

// Outbox configures the balance-adjustment worker.
type Outbox struct {
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"2s"`
	BatchSize    int           `envconfig:"BATCH_SIZE" default:"50"`
	MaxAttempts  int           `envconfig:"MAX_ATTEMPTS" default:"10"`
}

// Reconciler configures the periodic balance reconciliation job.
type Reconciler struct {
	Interval time.Duration `envconfig:"INTERVAL" default:"5m"`
}

// Log configures the logger.
type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[duitku]"`
}

// Server configures the HTTP listener.
type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

// App is the root configuration.
type App struct {
	Env        string      `envconfig:"APP_ENV" default:"development"`
	Server     *Server     `envconfig:"SERVER"`
	Log        *Log        `envconfig:"LOG"`
	DB         *DB         `envconfig:"DATABASE"`
	Jwt        *Jwt        `envconfig:"JWT"`
	Ledger     *Ledger     `envconfig:"LEDGER"`
	Outbox     *Outbox     `envconfig:"OUTBOX"`
	Reconciler *Reconciler `envconfig:"RECONCILER"`
}
