package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type AppConfig struct {
	// Name brands the payment prompt on the payer's handset.
	Name string `yaml:"name"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
	// CheckoutLimit caps checkout attempts per phone within CheckoutWindow.
	CheckoutLimit  int           `yaml:"checkout_limit"`
	CheckoutWindow time.Duration `yaml:"checkout_window"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LivraConfig struct {
	BaseURL       string        `yaml:"base_url"`
	APIKey        string        `yaml:"api_key"`
	CountryPrefix string        `yaml:"country_prefix"` // e.g. "+256"
	PollInterval  time.Duration `yaml:"poll_interval"`
	PollAttempts  int           `yaml:"poll_attempts"`
}

type PaymentConfig struct {
	Livra LivraConfig `yaml:"livra"`
}

type SchedulerConfig struct {
	// ExpiryInterval is how often lapsed agent plans are swept.
	ExpiryInterval time.Duration `yaml:"expiry_interval"`
}

type SecurityConfig struct {
	WatchTokenSecret string `yaml:"watch_token_secret"`
}

type Config struct {
	App       AppConfig       `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Payment   PaymentConfig   `yaml:"payment"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Security  SecurityConfig  `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.App.Name == "" {
		cfg.App.Name = "LUO FILM"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.CheckoutLimit <= 0 {
		cfg.Server.CheckoutLimit = 3
	}
	if cfg.Server.CheckoutWindow <= 0 {
		cfg.Server.CheckoutWindow = 10 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 8
	}
	if cfg.Payment.Livra.CountryPrefix == "" {
		cfg.Payment.Livra.CountryPrefix = "+256"
	}
	if cfg.Payment.Livra.PollInterval <= 0 {
		cfg.Payment.Livra.PollInterval = 6 * time.Second
	}
	if cfg.Payment.Livra.PollAttempts <= 0 {
		cfg.Payment.Livra.PollAttempts = 40
	}
	if cfg.Scheduler.ExpiryInterval <= 0 {
		cfg.Scheduler.ExpiryInterval = time.Hour
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.Addr == "" {
		return nil, errors.New("redis.addr is required")
	}
	if !dev && cfg.Payment.Livra.BaseURL == "" {
		return nil, errors.New("payment.livra.base_url is required")
	}
	if cfg.Security.WatchTokenSecret == "" {
		return nil, errors.New("security.watch_token_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
