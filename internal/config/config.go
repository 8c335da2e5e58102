package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// Storage backend selection
	DataBackend  string
	SQLiteDBPath string

	// Classifier
	ModelPath           string
	KeywordRulesPath    string
	ClassifyConcurrency int

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/bilancio.db"),

		ModelPath:           getEnv("MODEL_PATH", "./data/category_model.gob"),
		KeywordRulesPath:    getEnv("KEYWORD_RULES_PATH", ""),
		ClassifyConcurrency: getEnvInt("CLASSIFY_CONCURRENCY", 4),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if err := ensureDir(c.SQLiteDBPath); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create SQLite database directory for '%s': %v", c.SQLiteDBPath, err))
		}
	}

	if c.ModelPath == "" {
		errors = append(errors, "model path cannot be empty")
	} else if err := ensureDir(c.ModelPath); err != nil {
		errors = append(errors, fmt.Sprintf("cannot create model directory for '%s': %v", c.ModelPath, err))
	}

	if c.KeywordRulesPath != "" {
		if _, err := os.Stat(c.KeywordRulesPath); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("keyword rules file does not exist: %s", c.KeywordRulesPath))
		}
	}

	if c.ClassifyConcurrency < 1 {
		errors = append(errors, fmt.Sprintf("invalid classify concurrency %d: must be at least 1", c.ClassifyConcurrency))
	} else if c.ClassifyConcurrency > 64 {
		errors = append(errors, fmt.Sprintf("invalid classify concurrency %d: must be at most 64", c.ClassifyConcurrency))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
