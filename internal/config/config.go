package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURI    string
	TelegramToken  string
	TelegramChatID int64

	HorizonDays      int           // lookahead for recurring-event reminders
	DispatchLookback time.Duration // how far back the due query reaches
	RepeatGrace      time.Duration // silence before an unacknowledged reminder repeats
	WorkHoursStart   int           // repeats run within [start, end) hours
	WorkHoursEnd     int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	cfg := &Config{
		DatabaseURI:   os.Getenv("DATABASE_URI"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
	}

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		chatID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", v, err)
		}
		cfg.TelegramChatID = chatID
	}

	var err error
	if cfg.HorizonDays, err = intEnv("HORIZON_DAYS", 1); err != nil {
		return nil, err
	}
	lookback, err := intEnv("DISPATCH_LOOKBACK_MINUTES", 2)
	if err != nil {
		return nil, err
	}
	cfg.DispatchLookback = time.Duration(lookback) * time.Minute
	grace, err := intEnv("REPEAT_GRACE_MINUTES", 15)
	if err != nil {
		return nil, err
	}
	cfg.RepeatGrace = time.Duration(grace) * time.Minute

	cfg.WorkHoursStart, cfg.WorkHoursEnd, err = parseWorkHours(getEnvOrDefault("REPEAT_WORK_HOURS", "7-22"))
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func intEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

// parseWorkHours parses "7-22" into start and end hours. "0-24" (or equal
// bounds) means repeats are never gated.
func parseWorkHours(s string) (int, int, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid REPEAT_WORK_HOURS %q, want \"start-end\"", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid REPEAT_WORK_HOURS start %q: %w", parts[0], err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid REPEAT_WORK_HOURS end %q: %w", parts[1], err)
	}
	if start < 0 || start > 24 || end < 0 || end > 24 || start > end {
		return 0, 0, fmt.Errorf("invalid REPEAT_WORK_HOURS range %q", s)
	}
	return start, end, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
