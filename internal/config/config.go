package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the planner.
type Config struct {
	TelegramToken    string
	DatabaseURL      string
	ListenAddr       string
	CronSecret       string
	Env              string // "production" enables strict trigger auth
	Timezone         string
	ReminderInterval time.Duration // how often the in-process tick fires
	ReminderWindow   time.Duration // how far ahead a task time may be
	DedupWindow      time.Duration // suppression span per (user, task, kind)
	DigestTime       string        // "HH:MM" for the morning digest; empty disables
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		TelegramToken:    strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ListenAddr:       strings.TrimSpace(os.Getenv("LISTEN_ADDR")),
		CronSecret:       strings.TrimSpace(os.Getenv("CRON_SECRET")),
		Env:              strings.TrimSpace(os.Getenv("APP_ENV")),
		Timezone:         strings.TrimSpace(os.Getenv("TIMEZONE")),
		ReminderInterval: parseMinutes(os.Getenv("REMINDER_INTERVAL_MINUTES"), 5*time.Minute),
		ReminderWindow:   parseMinutes(os.Getenv("REMINDER_WINDOW_MINUTES"), 15*time.Minute),
		DedupWindow:      parseMinutes(os.Getenv("DEDUP_WINDOW_MINUTES"), time.Hour),
		DigestTime:       strings.TrimSpace(os.Getenv("DIGEST_TIME")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "family_planner.db"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}

// Production reports whether strict auth rules apply to the trigger endpoint.
func (c Config) Production() bool {
	return c.Env == "production"
}

// Location resolves the configured timezone, falling back to local time.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func parseMinutes(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return fallback
	}
	return time.Duration(minutes) * time.Minute
}
