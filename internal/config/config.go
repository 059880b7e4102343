package config

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"TranchePlanner/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Plan struct {
		StartingPrice float64 `yaml:"starting_price"`
		Variant       string  `yaml:"variant"`
	} `yaml:"plan"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		BroadcastCron string `yaml:"broadcast_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	if v := os.Getenv("PLAN_STARTING_PRICE"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse PLAN_STARTING_PRICE: %w", err)
		}
		cfg.Plan.StartingPrice = price
	}
	if v := os.Getenv("PLAN_VARIANT"); v != "" {
		cfg.Plan.Variant = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("CRON_BROADCAST"); v != "" {
		cfg.Schedule.BroadcastCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	return cfg, nil
}

// defaults seeds the fields that an absent key or env var leaves unchanged.
// Keys set explicitly in the file, zero values included, override them.
func defaults() *Config {
	cfg := &Config{}
	cfg.Plan.StartingPrice = 2700
	cfg.Plan.Variant = string(strategy.VariantB)
	cfg.Database.SQLitePath = "data/tranche_planner.db"
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	return cfg
}

// Validate checks the fields every command needs.
func (c *Config) Validate() error {
	if p := c.Plan.StartingPrice; math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
		return fmt.Errorf("plan.starting_price must be a positive number, got %v", p)
	}
	if _, err := strategy.ParseVariant(c.Plan.Variant); err != nil {
		return fmt.Errorf("plan.variant: %w", err)
	}
	return nil
}

// ValidateBot checks the additional fields the Telegram bot needs.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// RuleSet returns the tranche rule set named by plan.variant.
func (c *Config) RuleSet() (strategy.RuleSet, error) {
	v, err := strategy.ParseVariant(c.Plan.Variant)
	if err != nil {
		return strategy.RuleSet{}, err
	}
	return strategy.ForVariant(v)
}
