package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tmp := t.TempDir()

	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid sqlite backend config",
			config: Config{
				DataBackend:         "sqlite",
				SQLiteDBPath:        filepath.Join(tmp, "test.db"),
				ModelPath:           filepath.Join(tmp, "model.gob"),
				ClassifyConcurrency: 4,
				LogLevel:            "info",
			},
			wantErr: false,
		},
		{
			name: "valid memory backend config",
			config: Config{
				DataBackend:         "memory",
				ModelPath:           filepath.Join(tmp, "model.gob"),
				ClassifyConcurrency: 1,
				LogLevel:            "debug",
			},
			wantErr: false,
		},
		{
			name: "invalid data backend",
			config: Config{
				DataBackend:         "invalid",
				ModelPath:           filepath.Join(tmp, "model.gob"),
				ClassifyConcurrency: 4,
				LogLevel:            "info",
			},
			wantErr:     true,
			errorString: "invalid data backend 'invalid'",
		},
		{
			name: "sqlite backend missing database path",
			config: Config{
				DataBackend:         "sqlite",
				SQLiteDBPath:        "",
				ModelPath:           filepath.Join(tmp, "model.gob"),
				ClassifyConcurrency: 4,
				LogLevel:            "info",
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty",
		},
		{
			name: "empty model path",
			config: Config{
				DataBackend:         "memory",
				ModelPath:           "",
				ClassifyConcurrency: 4,
				LogLevel:            "info",
			},
			wantErr:     true,
			errorString: "model path cannot be empty",
		},
		{
			name: "missing keyword rules file",
			config: Config{
				DataBackend:         "memory",
				ModelPath:           filepath.Join(tmp, "model.gob"),
				KeywordRulesPath:    filepath.Join(tmp, "nope.json"),
				ClassifyConcurrency: 4,
				LogLevel:            "info",
			},
			wantErr:     true,
			errorString: "keyword rules file does not exist",
		},
		{
			name: "concurrency too low",
			config: Config{
				DataBackend:         "memory",
				ModelPath:           filepath.Join(tmp, "model.gob"),
				ClassifyConcurrency: 0,
				LogLevel:            "info",
			},
			wantErr:     true,
			errorString: "invalid classify concurrency 0",
		},
		{
			name: "concurrency too high",
			config: Config{
				DataBackend:         "memory",
				ModelPath:           filepath.Join(tmp, "model.gob"),
				ClassifyConcurrency: 128,
				LogLevel:            "info",
			},
			wantErr:     true,
			errorString: "invalid classify concurrency 128",
		},
		{
			name: "invalid log level",
			config: Config{
				DataBackend:         "memory",
				ModelPath:           filepath.Join(tmp, "model.gob"),
				ClassifyConcurrency: 4,
				LogLevel:            "loud",
			},
			wantErr:     true,
			errorString: "invalid log level 'loud'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Fatalf("error %q does not contain %q", err.Error(), tt.errorString)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATA_BACKEND", "SQLITE_DB_PATH", "MODEL_PATH", "KEYWORD_RULES_PATH", "CLASSIFY_CONCURRENCY", "LOG_LEVEL"} {
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.DataBackend != "memory" {
		t.Errorf("default backend = %s, want memory", cfg.DataBackend)
	}
	if cfg.ClassifyConcurrency != 4 {
		t.Errorf("default concurrency = %d, want 4", cfg.ClassifyConcurrency)
	}
	if cfg.ModelPath == "" {
		t.Error("default model path should not be empty")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("CLASSIFY_CONCURRENCY", "8")
	t.Setenv("LOG_LEVEL", "warn")

	cfg := Load()
	if cfg.DataBackend != "sqlite" {
		t.Errorf("backend = %s, want sqlite", cfg.DataBackend)
	}
	if cfg.ClassifyConcurrency != 8 {
		t.Errorf("concurrency = %d, want 8", cfg.ClassifyConcurrency)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log level = %s, want warn", cfg.LogLevel)
	}
}
