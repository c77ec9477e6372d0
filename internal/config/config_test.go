package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validConfigJSON = `{
    "api_base_url": "http://trader.local:5000/api",
    "symbols": ["XAUUSD", "EURUSD"],
    "default_symbol": "EURUSD",
    "default_timeframe": "1d",
    "poll_interval_ms": 2500,
    "request_timeout_ms": 3000,
    "retries": 1,
    "debug_logging": true
}`

func setupTestConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "Valid JSON config",
			file:    "config.json",
			content: validConfigJSON,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://trader.local:5000/api", cfg.APIBaseURL)
				assert.Equal(t, "EURUSD", cfg.DefaultSymbol)
				assert.Equal(t, "1d", cfg.DefaultTimeframe)
				assert.Equal(t, 2500*time.Millisecond, cfg.PollEvery())
				assert.Equal(t, 3*time.Second, cfg.Timeout())
				assert.True(t, cfg.DebugLogging)
				assert.Equal(t, DefaultHistoryLimit, cfg.HistoryLimit)
			},
		},
		{
			name:    "YAML config with defaults",
			file:    "config.yaml",
			content: "default_symbol: XAUUSD\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
				assert.Equal(t, DefaultSymbols, cfg.Symbols)
				assert.Equal(t, 5*time.Second, cfg.PollEvery())
				assert.Equal(t, 5*time.Second, cfg.BannerLifetime())
			},
		},
		{
			name:    "Unknown default symbol",
			file:    "config.json",
			content: `{"default_symbol": "BTCUSD"}`,
			wantErr: true,
		},
		{
			name:    "Invalid JSON syntax",
			file:    "config.json",
			content: "{invalid json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := setupTestConfig(t, tt.file, tt.content)

			cfg, err := LoadConfig(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigWithoutFile(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, DefaultRetries, cfg.Retries)
	assert.Equal(t, DefaultExportDir, cfg.ExportDir)
}

func TestLoadConfigEnvironmentOverride(t *testing.T) {
	t.Setenv("PAPER_TRADER_API_BASE_URL", "https://demo.example.com/api")
	t.Setenv("PAPER_TRADER_SYMBOLS", "XAUUSD, EURUSD , GBPUSD")
	t.Setenv("PAPER_TRADER_RETRIES", "0")
	t.Setenv("PAPER_TRADER_DEBUG_LOGGING", "true")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://demo.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, []string{"XAUUSD", "EURUSD", "GBPUSD"}, cfg.Symbols)
	assert.Equal(t, 0, cfg.Retries)
	assert.True(t, cfg.DebugLogging)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			APIBaseURL:       "http://localhost:5000/api",
			Symbols:          []string{"XAUUSD"},
			DefaultSymbol:    "XAUUSD",
			DefaultTimeframe: "1h",
			PollInterval:     5000,
			RequestTimeout:   1000,
			BannerTTL:        5000,
			HistoryLimit:     10,
			LogBufferSize:    100,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "Valid configuration", mutate: func(*Config) {}},
		{name: "Missing base URL", mutate: func(c *Config) { c.APIBaseURL = "" }, wantErr: true},
		{name: "Non-HTTP base URL", mutate: func(c *Config) { c.APIBaseURL = "ftp://host/api" }, wantErr: true},
		{name: "No symbols", mutate: func(c *Config) { c.Symbols = nil }, wantErr: true},
		{name: "Bad timeframe", mutate: func(c *Config) { c.DefaultTimeframe = "15m" }, wantErr: true},
		{name: "Zero poll interval", mutate: func(c *Config) { c.PollInterval = 0 }, wantErr: true},
		{name: "Negative retries", mutate: func(c *Config) { c.Retries = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
