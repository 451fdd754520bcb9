// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken    string
	DatabasePath        string
	LogLevel            string
	PortalBaseURL       string
	PollIntervalMinutes int
	ActiveStartHour     int
	ActiveEndHour       int
	TableTimeoutSeconds int
	AllowedUsers        []int64
}

// Load reads configuration from environment variables, after loading an
// optional .env file from the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/bot.db"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	portalURL := os.Getenv("PORTAL_BASE_URL")
	if portalURL == "" {
		portalURL = "https://erp.mit.asia"
	}
	portalURL = strings.TrimRight(portalURL, "/")

	pollInterval, err := envInt("POLL_INTERVAL_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	if pollInterval < 1 {
		return nil, fmt.Errorf("POLL_INTERVAL_MINUTES must be at least 1")
	}

	startHour, err := envInt("ACTIVE_START_HOUR", 8)
	if err != nil {
		return nil, err
	}
	endHour, err := envInt("ACTIVE_END_HOUR", 18)
	if err != nil {
		return nil, err
	}
	if startHour < 0 || endHour > 24 || startHour >= endHour {
		return nil, fmt.Errorf("active hours %d-%d are not a valid window", startHour, endHour)
	}

	tableTimeout, err := envInt("TABLE_TIMEOUT_SECONDS", 15)
	if err != nil {
		return nil, err
	}
	if tableTimeout < 1 {
		return nil, fmt.Errorf("TABLE_TIMEOUT_SECONDS must be at least 1")
	}

	var allowedUsers []int64
	if raw := os.Getenv("ALLOWED_USERS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			uid, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
			}
			allowedUsers = append(allowedUsers, uid)
		}
	}

	return &Config{
		TelegramBotToken:    token,
		DatabasePath:        dbPath,
		LogLevel:            logLevel,
		PortalBaseURL:       portalURL,
		PollIntervalMinutes: pollInterval,
		ActiveStartHour:     startHour,
		ActiveEndHour:       endHour,
		TableTimeoutSeconds: tableTimeout,
		AllowedUsers:        allowedUsers,
	}, nil
}

func envInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}
