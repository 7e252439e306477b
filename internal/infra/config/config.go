package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken   string
	DatabaseURL     string
	AdminTelegramID int64
	ReportChatID    int64 // Optional secondary report target; 0 when unset
	LogLevel        string
	Environment     string

	CronSpecResync      string        // Dispatch-job resync tick
	CronSpecOverdueScan string        // Overdue pending-survey scan
	OverdueCutoff       time.Duration // How long a pending survey may sit before escalation
	SessionTTL          time.Duration // In-memory conversation session lifetime
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	if reportChatIDStr := os.Getenv("REPORT_CHAT_ID"); reportChatIDStr != "" {
		cfg.ReportChatID, err = strconv.ParseInt(reportChatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid REPORT_CHAT_ID: %w", err)
		}
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecResync = os.Getenv("CRON_SPEC_RESYNC")
	if cfg.CronSpecResync == "" {
		cfg.CronSpecResync = "@every 10m"
	}

	cfg.CronSpecOverdueScan = os.Getenv("CRON_SPEC_OVERDUE_SCAN")
	if cfg.CronSpecOverdueScan == "" {
		cfg.CronSpecOverdueScan = "@every 30m"
	}

	cfg.OverdueCutoff, err = hoursFromEnv("OVERDUE_CUTOFF_HOURS", 12)
	if err != nil {
		return nil, err
	}

	cfg.SessionTTL, err = hoursFromEnv("SESSION_TTL_HOURS", 12)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func hoursFromEnv(key string, def int) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(def) * time.Hour, nil
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return time.Duration(hours) * time.Hour, nil
}
