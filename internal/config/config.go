// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	APIBaseURL       string   `mapstructure:"api_base_url"`
	Symbols          []string `mapstructure:"symbols"`
	DefaultSymbol    string   `mapstructure:"default_symbol"`
	DefaultTimeframe string   `mapstructure:"default_timeframe"`
	PollInterval     int      `mapstructure:"poll_interval_ms"`
	RequestTimeout   int      `mapstructure:"request_timeout_ms"`
	Retries          int      `mapstructure:"retries"`
	BannerTTL        int      `mapstructure:"banner_ttl_ms"`
	HistoryLimit     int      `mapstructure:"history_limit"`
	DebugLogging     bool     `mapstructure:"debug_logging"`
	LogFile          string   `mapstructure:"log_file"`
	LogBufferSize    int      `mapstructure:"log_buffer_size"`
	ExportDir        string   `mapstructure:"export_dir"`
}

const (
	DefaultAPIBaseURL     = "http://localhost:5000/api"
	DefaultSymbol         = "XAUUSD"
	DefaultTimeframe      = "1h"
	DefaultPollInterval   = 5000
	DefaultRequestTimeout = 10000
	DefaultRetries        = 2
	DefaultBannerTTL      = 5000
	DefaultHistoryLimit   = 10
	DefaultLogFile        = "logs/paper-trader.log"
	DefaultLogBufferSize  = 500
	DefaultExportDir      = "exports"

	envPrefix = "PAPER_TRADER"
)

// DefaultSymbols are the instruments the demo backend serves.
var DefaultSymbols = []string{"XAUUSD", "EURUSD"}

// Timeframes lists the chart timeframes the backend understands.
var Timeframes = []string{"1h", "1d"}

// LoadConfig reads the config file at path (optional), .env and the
// PAPER_TRADER_* environment. An empty path means defaults plus environment.
func LoadConfig(path string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()

	defaults := map[string]interface{}{
		"api_base_url":       DefaultAPIBaseURL,
		"symbols":            DefaultSymbols,
		"default_symbol":     DefaultSymbol,
		"default_timeframe":  DefaultTimeframe,
		"poll_interval_ms":   DefaultPollInterval,
		"request_timeout_ms": DefaultRequestTimeout,
		"retries":            DefaultRetries,
		"banner_ttl_ms":      DefaultBannerTTL,
		"history_limit":      DefaultHistoryLimit,
		"log_file":           DefaultLogFile,
		"log_buffer_size":    DefaultLogBufferSize,
		"export_dir":         DefaultExportDir,
		"debug_logging":      false,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	loadEnvironmentVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if envSymbols := os.Getenv(envPrefix + "_SYMBOLS"); envSymbols != "" {
		cfg.Symbols = splitList(envSymbols)
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.APIBaseURL == "" {
		return errors.New("missing api_base_url in configuration")
	}
	if err := validateURLWithCache(cfg.APIBaseURL, "http"); err != nil {
		return errors.New("invalid api_base_url protocol")
	}
	if len(cfg.Symbols) == 0 {
		return errors.New("symbols is empty")
	}
	if !contains(cfg.Symbols, cfg.DefaultSymbol) {
		return errors.New("default_symbol is not listed in symbols")
	}
	if !contains(Timeframes, cfg.DefaultTimeframe) {
		return errors.New("invalid default_timeframe")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.PollInterval <= 0 {
		return errors.New("invalid poll_interval_ms")
	}
	if cfg.RequestTimeout <= 0 {
		return errors.New("invalid request_timeout_ms")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.BannerTTL <= 0 {
		return errors.New("invalid banner_ttl_ms")
	}
	if cfg.HistoryLimit <= 0 {
		return errors.New("invalid history_limit")
	}
	if cfg.LogBufferSize <= 0 {
		return errors.New("invalid log_buffer_size")
	}
	return nil
}

// PollEvery returns the portfolio/price polling period.
func (c *Config) PollEvery() time.Duration {
	return time.Duration(c.PollInterval) * time.Millisecond
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Millisecond
}

// BannerLifetime returns how long transient banners stay visible.
func (c *Config) BannerLifetime() time.Duration {
	return time.Duration(c.BannerTTL) * time.Millisecond
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		clean := strings.TrimSpace(part)
		if clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
