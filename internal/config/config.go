// Package config provides YAML-based configuration loading for consuntivo.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "consuntivo.yaml"

// Config is the top-level consuntivo configuration, loaded from
// consuntivo.yaml.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Source    SourceConfig    `yaml:"source"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Survey    SurveyConfig    `yaml:"survey"`
	Notify    NotifyConfig    `yaml:"notify"`
}

// DatabaseConfig selects and locates the local store.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// Database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// SourceConfig points at the upstream time-tracking export.
type SourceConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	// Refresh is a 5-field cron expression; empty disables scheduled
	// refreshes.
	Refresh string `yaml:"refresh"`
}

// DashboardConfig holds the web dashboard settings.
type DashboardConfig struct {
	Port             int      `yaml:"port"`
	ExcludedProjects []string `yaml:"excluded_projects"`
	WorkdayHours     float64  `yaml:"workday_hours"`
}

// SurveyConfig holds respondent token settings. An empty secret leaves
// surveys open.
type SurveyConfig struct {
	TokenSecret string        `yaml:"token_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
}

// NotifyConfig configures the periodic digest and where it goes.
type NotifyConfig struct {
	Digest     string        `yaml:"digest"`
	WindowDays int           `yaml:"window_days"`
	Slack      ChannelConfig `yaml:"slack"`
	Discord    ChannelConfig `yaml:"discord"`
}

// ChannelConfig is a bot token and the channel it posts to.
type ChannelConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// Enabled reports whether both token and channel are set.
func (c ChannelConfig) Enabled() bool {
	return c.BotToken != "" && c.ChannelID != ""
}

func (c ChannelConfig) partial() bool {
	return (c.BotToken == "") != (c.ChannelID == "")
}

var defaultExcluded = []string{"0005", "0006", "0007", "0009", "0090", "0091", "T2_00", "BG.ND", "BG.00"}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg, err := Parse(nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	cfg := Config{
		Source: SourceConfig{Refresh: "*/15 * * * *"},
		Notify: NotifyConfig{Digest: "0 8 * * 1"},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Path == "" {
		c.Database.Path = "consuntivo.db"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Database.Name == "" {
		c.Database.Name = "consuntivo"
	}
	if c.Source.URL == "" {
		c.Source.URL = "http://localhost:3001/api/commesse"
	}
	if c.Source.Timeout == 0 {
		c.Source.Timeout = 15 * time.Second
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
	if c.Dashboard.ExcludedProjects == nil {
		c.Dashboard.ExcludedProjects = append([]string(nil), defaultExcluded...)
	}
	if c.Dashboard.WorkdayHours == 0 {
		c.Dashboard.WorkdayHours = 8
	}
	if c.Survey.TokenTTL == 0 {
		c.Survey.TokenTTL = 720 * time.Hour
	}
	if c.Notify.WindowDays == 0 {
		c.Notify.WindowDays = 7
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case DriverSQLite, DriverMySQL:
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q must be sqlite or mysql", c.Database.Driver))
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		errs = append(errs, "database.port must be between 1 and 65535")
	}
	if !strings.HasPrefix(c.Source.URL, "http://") && !strings.HasPrefix(c.Source.URL, "https://") {
		errs = append(errs, "source.url must be an http(s) URL")
	}
	if c.Source.Timeout < 0 {
		errs = append(errs, "source.timeout must not be negative")
	}
	if c.Source.Refresh != "" {
		if _, err := cronParser.Parse(c.Source.Refresh); err != nil {
			errs = append(errs, fmt.Sprintf("source.refresh: %v", err))
		}
	}
	if c.Dashboard.Port < 1 || c.Dashboard.Port > 65535 {
		errs = append(errs, "dashboard.port must be between 1 and 65535")
	}
	if c.Dashboard.WorkdayHours < 0 {
		errs = append(errs, "dashboard.workday_hours must be positive")
	}
	if c.Survey.TokenTTL < 0 {
		errs = append(errs, "survey.token_ttl must not be negative")
	}
	if c.Notify.Digest != "" {
		if _, err := cronParser.Parse(c.Notify.Digest); err != nil {
			errs = append(errs, fmt.Sprintf("notify.digest: %v", err))
		}
	}
	if c.Notify.WindowDays < 0 {
		errs = append(errs, "notify.window_days must not be negative")
	}
	if c.Notify.Slack.partial() {
		errs = append(errs, "notify.slack needs both bot_token and channel_id")
	}
	if c.Notify.Discord.partial() {
		errs = append(errs, "notify.discord needs both bot_token and channel_id")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
