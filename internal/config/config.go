// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the monitor service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string // optional; seen-listing cache is skipped when empty

	CheckInterval time.Duration // how often the sweep fires

	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	EmailFrom     string
	EmailFromName string

	TelegramBotToken      string
	TelegramDefaultChatID string
}

// Load reads a .env file (if present) plus environment variables and
// returns a validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	interval := 30 * time.Second
	if s := os.Getenv("CHECK_INTERVAL_SECONDS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("CHECK_INTERVAL_SECONDS must be a positive integer, got %q", s)
		}
		interval = time.Duration(v) * time.Second
	}

	smtpPort := 587
	if s := os.Getenv("SMTP_PORT"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("SMTP_PORT must be a positive integer, got %q", s)
		}
		smtpPort = v
	}

	fromName := os.Getenv("EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "Marktplaats Monitor"
	}

	fromAddr := os.Getenv("EMAIL_FROM_ADDRESS")
	if fromAddr == "" {
		fromAddr = "noreply@example.com"
	}

	port := os.Getenv("MONITOR_PORT")
	if port == "" {
		port = "8082"
	}

	return &Config{
		Port:                  port,
		DatabaseURL:           dbURL,
		RedisURL:              os.Getenv("REDIS_URL"),
		CheckInterval:         interval,
		SMTPHost:              os.Getenv("SMTP_HOST"),
		SMTPPort:              smtpPort,
		SMTPUser:              os.Getenv("SMTP_USER"),
		SMTPPassword:          os.Getenv("SMTP_PASSWORD"),
		EmailFrom:             fromAddr,
		EmailFromName:         fromName,
		TelegramBotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramDefaultChatID: os.Getenv("TELEGRAM_DEFAULT_CHAT_ID"),
	}, nil
}
