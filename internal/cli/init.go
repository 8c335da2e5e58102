// Package cli provides common CLI initialization utilities shared by
// the bilancio commands.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"bilancio/internal/backend"
	"bilancio/internal/classify"
	"bilancio/internal/config"
	applog "bilancio/internal/log"
	"bilancio/internal/services"
)

// SetupLogger initializes structured logging from the configured level.
// Returns the configured logger and sets it as the default logger.
func SetupLogger(level string) *slog.Logger {
	return applog.New(level)
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitClassifier builds the classifier from the configured model path and
// keyword rules file. A missing rules file falls back to the built-in table.
func InitClassifier(logger *slog.Logger, cfg *config.Config) *classify.Classifier {
	keywords := classify.DefaultKeywordTable()
	if cfg.KeywordRulesPath != "" {
		rules, err := classify.LoadKeywordRules(cfg.KeywordRulesPath)
		if err != nil {
			logger.Warn("Failed to load keyword rules, using built-in table",
				applog.FieldError, err, "path", cfg.KeywordRulesPath)
		} else {
			keywords = classify.NewKeywordTable(rules)
		}
	}
	return classify.NewClassifier(cfg.ModelPath, keywords)
}

// InitService wires the configured backend and classifier into a ledger
// service. Returns the service and its cleanup function, or exits the
// process on failure.
func InitService(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*services.LedgerService, func()) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Failed to build backend config", applog.FieldError, err)
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend",
			applog.FieldError, err, applog.FieldBackend, backendCfg.Type.String())
		os.Exit(1)
	}

	svc := services.NewLedgerService(result.Store, InitClassifier(logger, cfg), cfg.ClassifyConcurrency)

	cleanup := func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", applog.FieldError, err)
			}
		}
	}
	return svc, cleanup
}
