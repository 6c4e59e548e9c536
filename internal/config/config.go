package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kitschmensch/sundaydinner/internal/window"
)

// SMTPConfig holds the email transport credentials and endpoint.
type SMTPConfig struct {
	// Email is the service account address; it is used both to
	// authenticate and as the From header.
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Server   string `yaml:"server"`
	// Port is the implicit-SSL submission port, normally 465.
	Port int `yaml:"port"`
}

// Config is the full application configuration. One value is constructed at
// startup and passed by reference into the orchestrator and dispatchers;
// there is no ambient configuration state.
type Config struct {
	// SpreadsheetID identifies the Google Sheets document holding the
	// events and members tables.
	SpreadsheetID string `yaml:"spreadsheet_id"`
	// APIKey is a Sheets API key with read access to the spreadsheet.
	APIKey string `yaml:"api_key"`

	// EventsRange / MembersRange are A1-notation ranges, header row first.
	EventsRange  string `yaml:"events_range"`
	MembersRange string `yaml:"members_range"`

	// WebhookURL is the Discord-compatible webhook endpoint.
	WebhookURL string `yaml:"webhook_url"`
	// BotName and AvatarURL define the webhook identity shown in chat.
	BotName   string `yaml:"bot_name"`
	AvatarURL string `yaml:"avatar_url"`

	SMTP SMTPConfig `yaml:"smtp"`

	// EventDeltaDays selects events exactly this many days ahead.
	EventDeltaDays int `yaml:"event_delta_days"`
	// BirthdayDeltaDays is the inclusive birthday lookahead window.
	BirthdayDeltaDays int `yaml:"birthday_delta_days"`
	// BirthdayRollForward switches birthday matching to next-occurrence
	// semantics so windows crossing Dec 31 match. Off by default; the
	// default mode reproduces the long-standing year-substitution behavior.
	BirthdayRollForward bool `yaml:"birthday_roll_forward"`

	// WebhookRatePerSec caps channel posts per second.
	WebhookRatePerSec int `yaml:"webhook_rate_per_sec"`

	// SpreadsheetURL is the link shown in notifications. Derived from
	// SpreadsheetID when empty; set it explicitly to deep-link a tab.
	SpreadsheetURL string `yaml:"spreadsheet_url"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns an in-memory default configuration. Credentials and
// identifiers are intentionally empty; a first run with this config logs
// fetch failures and exits cleanly.
func DefaultConfig() *Config {
	return &Config{
		EventsRange:       "Events!A:Z",
		MembersRange:      "Members!A:Z",
		BotName:           "Sunday Dinner Bot",
		AvatarURL:         "https://i.imgur.com/d3N3x2b.jpg",
		SMTP:              SMTPConfig{Port: 465},
		EventDeltaDays:    window.DefaultEventDelta,
		BirthdayDeltaDays: window.DefaultBirthdayDelta,
		WebhookRatePerSec: 1,
		LogLevel:          "info",
	}
}

// Normalize fills in missing/zero values with defaults so partially-filled
// configs still behave correctly.
func (c *Config) Normalize() {
	if c.EventsRange == "" {
		c.EventsRange = "Events!A:Z"
	}
	if c.MembersRange == "" {
		c.MembersRange = "Members!A:Z"
	}
	if c.BotName == "" {
		c.BotName = "Sunday Dinner Bot"
	}
	if c.SMTP.Port <= 0 {
		c.SMTP.Port = 465
	}
	if c.EventDeltaDays <= 0 {
		c.EventDeltaDays = window.DefaultEventDelta
	}
	if c.BirthdayDeltaDays <= 0 {
		c.BirthdayDeltaDays = window.DefaultBirthdayDelta
	}
	if c.WebhookRatePerSec <= 0 {
		c.WebhookRatePerSec = 1
	}
	if c.SpreadsheetURL == "" && c.SpreadsheetID != "" {
		c.SpreadsheetURL = fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit", c.SpreadsheetID)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (0600, parent
// directory created) and returned, so a fresh install leaves an editable
// template behind instead of failing.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, since the file carries SMTP credentials and API keys.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".sundaydinner-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}
