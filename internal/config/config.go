package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	TelegramToken string
	CatalogPath   string

	LogLevel string
	Debug    bool

	PreferIPv4 bool

	MaxConcurrent  int
	RequestTimeout time.Duration
	HTTPTimeout    time.Duration
	RenderDebounce time.Duration

	SessionIdleTTL time.Duration
	SweepInterval  time.Duration

	WebAddr      string
	CookieSecure bool

	// MetricsAddr serves /metrics for the bot; empty disables it.
	MetricsAddr string
}

// Load reads settings shared by every binary. Nothing here is required.
func Load() (Config, error) {
	cfg := Config{
		CatalogPath:    strings.TrimSpace(os.Getenv("CATALOG_PATH")),
		LogLevel:       strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),
		Debug:          getEnvBool("DEBUG", false),
		PreferIPv4:     getEnvBool("PREFER_IPV4", true),
		MaxConcurrent:  getEnvInt("MAX_CONCURRENT", 8),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		HTTPTimeout:    time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 60)) * time.Second,
		RenderDebounce: time.Duration(getEnvInt("RENDER_DEBOUNCE_MS", 400)) * time.Millisecond,
		SessionIdleTTL: time.Duration(getEnvInt("SESSION_IDLE_MINUTES", 120)) * time.Minute,
		SweepInterval:  time.Duration(getEnvInt("SWEEP_INTERVAL_SECONDS", 60)) * time.Second,
		WebAddr:        strings.TrimSpace(getEnv("WEB_ADDR", ":8080")),
		CookieSecure:   getEnvBool("COOKIE_SECURE", false),
		MetricsAddr:    strings.TrimSpace(os.Getenv("METRICS_ADDR")),
	}
	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 60 * time.Second
	}
	if cfg.RenderDebounce < 0 {
		cfg.RenderDebounce = 0
	}
	if cfg.SessionIdleTTL <= 0 {
		cfg.SessionIdleTTL = 2 * time.Hour
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}

	return cfg, nil
}

// LoadBot is Load plus the settings the Telegram bot cannot run without.
func LoadBot() (Config, error) {
	cfg, err := Load()
	if err != nil {
		return Config{}, err
	}

	switch {
	case cfg.TelegramToken == "":
		return Config{}, errors.New("TELEGRAM_BOT_TOKEN is required")
	}

	return cfg, nil
}

func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
