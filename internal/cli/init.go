// Package cli provides common initialization for the kaikei binaries.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/channkenn/pta-kaikei/internal/config"
	"github.com/channkenn/pta-kaikei/internal/core"
	applog "github.com/channkenn/pta-kaikei/internal/log"
	"github.com/channkenn/pta-kaikei/internal/storage"
)

// SetupLogger initializes structured logging with default settings.
// Returns the configured logger and sets it as the default logger.
func SetupLogger(component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Component = component
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitRepository initializes the local SQLite repository.
// Returns the repository or exits the process on failure.
func InitRepository(logger *applog.Logger, dbPath string) *storage.Repository {
	repo, err := storage.NewRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// Categories builds the category configuration, falling back to the
// built-in defaults for any side not overridden.
func Categories(cfg *config.Config) *core.CategorySet {
	defaults := core.DefaultCategorySet()
	income := cfg.IncomeList()
	if income == nil {
		income = defaults.Income()
	}
	expense := cfg.ExpenseList()
	if expense == nil {
		expense = defaults.Expense()
	}
	return core.NewCategorySet(income, expense)
}
