package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default source files on the price server.
const (
	DefaultBaseURL       = "https://analysis-navi.com/vegetable/"
	DefaultHistoricalCSV = "例年価格_R1-R3.csv"
	DefaultRecentCSV     = "直近価格.csv"
)

// Config holds all application configuration.
type Config struct {
	Source struct {
		BaseURL       string        `yaml:"base_url"`
		HistoricalCSV string        `yaml:"historical_csv"`
		RecentCSV     string        `yaml:"recent_csv"`
		Encoding      string        `yaml:"encoding"`
		Timeout       time.Duration `yaml:"timeout"`
	} `yaml:"source"`
	Analysis struct {
		TrendPeriods  int `yaml:"trend_periods"`
		RatePrecision int `yaml:"rate_precision"`
	} `yaml:"analysis"`
	Publish struct {
		EndpointURL string `yaml:"endpoint_url"`
		Dir         string `yaml:"dir"`
	} `yaml:"publish"`
	Database struct {
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"database"`
	Schedule struct {
		Cron       string `yaml:"cron"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Server struct {
		Addr    string `yaml:"addr"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then .env and environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env only fills variables that are not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("VEGE_BASE_URL"); v != "" {
		c.Source.BaseURL = v
	}
	if v := os.Getenv("VEGE_HISTORICAL_CSV"); v != "" {
		c.Source.HistoricalCSV = v
	}
	if v := os.Getenv("VEGE_RECENT_CSV"); v != "" {
		c.Source.RecentCSV = v
	}
	if v := os.Getenv("VEGE_CSV_ENCODING"); v != "" {
		c.Source.Encoding = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("PUBLISH_ENDPOINT_URL"); v != "" {
		c.Publish.EndpointURL = v
	}
	if v := os.Getenv("PUBLISH_DIR"); v != "" {
		c.Publish.Dir = v
	}
	if v := os.Getenv("TREND_PERIODS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Analysis.TrendPeriods = n
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Database.PostgresDSN = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		c.Schedule.Cron = v
	}
	if os.Getenv("RUN_ON_START") == "true" {
		c.Schedule.RunOnStart = true
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = DefaultBaseURL
	}
	if c.Source.HistoricalCSV == "" {
		c.Source.HistoricalCSV = DefaultHistoricalCSV
	}
	if c.Source.RecentCSV == "" {
		c.Source.RecentCSV = DefaultRecentCSV
	}
	if c.Source.Encoding == "" {
		c.Source.Encoding = "utf-8"
	}
	if c.Source.Timeout == 0 {
		c.Source.Timeout = 30 * time.Second
	}
	if c.Analysis.TrendPeriods == 0 {
		c.Analysis.TrendPeriods = 36
	}
	if c.Analysis.RatePrecision == 0 {
		c.Analysis.RatePrecision = 3
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 0 6 * * *"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.DataDir == "" {
		c.Server.DataDir = "data/vegetable"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that the loaded values are usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Source.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("source.base_url must be an absolute URL, got %q", c.Source.BaseURL)
	}
	if c.Source.HistoricalCSV == "" || c.Source.RecentCSV == "" {
		return fmt.Errorf("source.historical_csv and source.recent_csv are required")
	}
	switch c.Source.Encoding {
	case "utf-8", "shift_jis":
	default:
		return fmt.Errorf("source.encoding must be utf-8 or shift_jis, got %q", c.Source.Encoding)
	}
	if c.Source.Timeout < 0 {
		return fmt.Errorf("source.timeout must not be negative")
	}
	if c.Analysis.TrendPeriods < 0 {
		return fmt.Errorf("analysis.trend_periods must be positive")
	}
	if c.Analysis.RatePrecision < 1 || c.Analysis.RatePrecision > 10 {
		return fmt.Errorf("analysis.rate_precision must be within 1..10")
	}
	if c.Publish.EndpointURL != "" && c.Publish.Dir != "" {
		return fmt.Errorf("publish.endpoint_url and publish.dir are mutually exclusive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
