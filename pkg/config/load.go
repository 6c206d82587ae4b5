package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from the environment, optionally seeding it from
// a .env file first.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()

	if len(envFilePath) == 0 {
		if err := godotenv.Load(); err != nil {
			logger.Warn("No .env file found in current directory")
		}
		return loadFromEnv()
	}

	for _, path := range envFilePath {
		if err := godotenv.Load(path); err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}
		return loadFromEnv()
	}

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found in current directory")
	}
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}

	slog.Default().Info("App config loaded",
		"env", cfg.Env,
		"account_db", maskValue(cfg.DB.AccountURL),
		"ledger_db", maskValue(cfg.DB.LedgerURL),
		"goal_db", maskValue(cfg.DB.GoalURL),
		"max_transaction_amount", cfg.Ledger.MaxTransactionAmount,
		"outbox_poll_interval", cfg.Outbox.PollInterval,
		"reconciler_interval", cfg.Reconciler.Interval,
	)
	return &cfg, nil
}

func maskValue(v string) string {
	if len(v) <= 6 {
		return "****"
	}
	return v[:3] + "****" + v[len(v)-3:]
}
