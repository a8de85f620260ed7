package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DefaultHostSecret     = "teachISO!"
	DefaultPort           = "8080"
	DefaultMaxPlayers     = 200
	DefaultTimerSeconds   = 30
	DefaultQuestionCount  = 6
	DefaultResultsQueue   = "quiz.results"
	DefaultGeneratorModel = "llama3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" env:"PORT"`
	} `yaml:"server"`
	Host struct {
		Secret string `yaml:"secret" env:"HOST_PASSWORD"`
	} `yaml:"host"`
	Game struct {
		MaxPlayers           int `yaml:"maxPlayers"`
		DefaultTimerSeconds  int `yaml:"defaultTimerSeconds"`
		DefaultQuestionCount int `yaml:"defaultQuestionCount"`
	} `yaml:"game"`
	Generator struct {
		Enabled bool   `yaml:"enabled"`
		BaseURL string `yaml:"baseUrl" env:"GENERATOR_BASE_URL"`
		Model   string `yaml:"model"`
		Timeout string `yaml:"timeout"`
	} `yaml:"generator"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"POSTGRES_URL"`
	} `yaml:"postgres"`
	Catalog struct {
		TTL string `yaml:"ttl"`
	} `yaml:"catalog"`
	RabbitMQ struct {
		URL   string `yaml:"url" env:"RABBITMQ_URL"`
		Queue string `yaml:"queue"`
	} `yaml:"rabbitmq"`
}

// Load reads YAML config from path, applies environment overrides and fills
// defaults. A missing file is not an error; the service runs on defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Host.Secret == "" {
		c.Host.Secret = DefaultHostSecret
	}
	if c.Game.MaxPlayers <= 0 {
		c.Game.MaxPlayers = DefaultMaxPlayers
	}
	if c.Game.DefaultTimerSeconds <= 0 {
		c.Game.DefaultTimerSeconds = DefaultTimerSeconds
	}
	if c.Game.DefaultQuestionCount <= 0 {
		c.Game.DefaultQuestionCount = DefaultQuestionCount
	}
	if c.Generator.Model == "" {
		c.Generator.Model = DefaultGeneratorModel
	}
	if c.RabbitMQ.Queue == "" {
		c.RabbitMQ.Queue = DefaultResultsQueue
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
