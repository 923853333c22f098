package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken    string        `envconfig:"TELEGRAM_TOKEN" required:"true"`
	DatabaseURL      string        `envconfig:"DATABASE_URL" required:"true"`
	AdminTelegramIDs []int64       `envconfig:"ADMIN_TELEGRAM_IDS" required:"true"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
	Environment      string        `envconfig:"ENVIRONMENT" default:"development"`
	PollTimeout      time.Duration `envconfig:"POLL_TIMEOUT" default:"10s"`

	CronSpecDaily  string `envconfig:"CRON_SPEC_DAILY" default:"0 6 * * *"`
	CronSpecWeekly string `envconfig:"CRON_SPEC_WEEKLY" default:"0 10 * * 1"`

	// Internal chat ids of the scheduled broadcast targets, 0 = unset.
	DailyChatID        int64 `envconfig:"DAILY_CHAT_ID"`
	DailyChannelChatID int64 `envconfig:"DAILY_CHANNEL_CHAT_ID"`
	WeeklyChatID       int64 `envconfig:"WEEKLY_CHAT_ID"`
	DailyChatLinks     Links `envconfig:"DAILY_CHAT_LINKS"`
	DailyChannelLinks  Links `envconfig:"DAILY_CHANNEL_LINKS"`

	FanoutPacing time.Duration `envconfig:"FANOUT_PACING" default:"50ms"`

	GoogleSheetsCredentials   string `envconfig:"GOOGLE_SHEETS_CREDENTIALS"`
	GoogleSheetsSpreadsheetID string `envconfig:"GOOGLE_SHEETS_SPREADSHEET_ID"`
	GoogleSheetsRange         string `envconfig:"GOOGLE_SHEETS_RANGE" default:"A2:K"`

	HelpExampleFile string `envconfig:"HELP_EXAMPLE_FILE" default:"Files/Example.xlsx"`
}

// Link is a titled URL attached to scheduled posts as a button.
type Link struct {
	Title string
	URL   string
}

// Links decodes "Title=URL,Title=URL".
type Links []Link

func (l *Links) Decode(value string) error {
	*l = nil
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		title, url, ok := strings.Cut(pair, "=")
		title, url = strings.TrimSpace(title), strings.TrimSpace(url)
		if !ok || title == "" || url == "" {
			return fmt.Errorf("invalid link %q, want Title=URL", pair)
		}
		*l = append(*l, Link{Title: title, URL: url})
	}
	return nil
}

// SheetsEnabled reports whether offer export is configured.
func (c *AppConfig) SheetsEnabled() bool {
	return c.GoogleSheetsCredentials != "" && c.GoogleSheetsSpreadsheetID != ""
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	if len(c.AdminTelegramIDs) == 0 {
		return fmt.Errorf("ADMIN_TELEGRAM_IDS must list at least one id")
	}
	if c.FanoutPacing <= 0 {
		return fmt.Errorf("FANOUT_PACING must be positive, got %s", c.FanoutPacing)
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.Environment = strings.ToLower(c.Environment)
	return nil
}
