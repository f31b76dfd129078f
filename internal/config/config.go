package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"k9log/internal/ledger"
)

type Config struct {
	DiscordBotToken  string
	DiscordChannelID string

	// AdminIDs is the static allow-list for destructive cleanup.
	AdminIDs []string

	DBPath    string
	WalkPrice decimal.Decimal

	ReportWeekday time.Weekday
	ReportHour    int
	ReportMinute  int

	DisplayEnabled  bool
	DisplayInterval time.Duration
}

func Load() (*Config, error) {
	botToken := os.Getenv("DISCORD_BOT_TOKEN")
	if botToken == "" {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is not set")
	}
	channelID := os.Getenv("DISCORD_CHANNEL_ID")
	if channelID == "" {
		return nil, fmt.Errorf("DISCORD_CHANNEL_ID is not set")
	}

	weekday, err := parseWeekday(getEnv("REPORT_WEEKDAY", "sunday"))
	if err != nil {
		return nil, err
	}

	walkPrice := decimal.NewFromInt(ledger.DefaultWalkPrice)
	if raw := os.Getenv("WALK_PRICE"); raw != "" {
		walkPrice, err = ledger.ParseAmount(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid WALK_PRICE %q: %w", raw, err)
		}
	}

	return &Config{
		DiscordBotToken:  botToken,
		DiscordChannelID: channelID,
		AdminIDs:         splitIDs(os.Getenv("ADMIN_IDS")),
		DBPath:           getEnv("DB_PATH", "data/k9log.db"),
		WalkPrice:        walkPrice,
		ReportWeekday:    weekday,
		ReportHour:       getEnvInt("REPORT_HOUR", 20),
		ReportMinute:     getEnvInt("REPORT_MINUTE", 0),
		DisplayEnabled:   getEnv("DISPLAY_ENABLED", "true") == "true",
		DisplayInterval:  getEnvDuration("DISPLAY_INTERVAL", 5*time.Second),
	}, nil
}

// Validate aggregates every configuration problem into one error.
func (c *Config) Validate() error {
	var problems []string

	if c.ReportHour < 0 || c.ReportHour > 23 {
		problems = append(problems, fmt.Sprintf("invalid report hour %d: must be 0-23", c.ReportHour))
	}
	if c.ReportMinute < 0 || c.ReportMinute > 59 {
		problems = append(problems, fmt.Sprintf("invalid report minute %d: must be 0-59", c.ReportMinute))
	}
	if c.DBPath == "" {
		problems = append(problems, "database path cannot be empty")
	}
	if !c.WalkPrice.IsPositive() {
		problems = append(problems, "walk price must be positive")
	}
	if c.DisplayInterval < time.Second {
		problems = append(problems, fmt.Sprintf("invalid display interval %v: must be at least 1 second", c.DisplayInterval))
	}
	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// IsAdmin is the allow-list predicate for destructive operations.
func (c *Config) IsAdmin(identity string) bool {
	for _, id := range c.AdminIDs {
		if id == identity {
			return true
		}
	}
	return false
}

func splitIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func parseWeekday(s string) (time.Weekday, error) {
	days := map[string]time.Weekday{
		"sunday": time.Sunday, "sun": time.Sunday,
		"monday": time.Monday, "mon": time.Monday,
		"tuesday": time.Tuesday, "tue": time.Tuesday,
		"wednesday": time.Wednesday, "wed": time.Wednesday,
		"thursday": time.Thursday, "thu": time.Thursday,
		"friday": time.Friday, "fri": time.Friday,
		"saturday": time.Saturday, "sat": time.Saturday,
	}
	if d, ok := days[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("invalid REPORT_WEEKDAY %q", s)
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
