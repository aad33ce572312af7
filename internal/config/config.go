package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"` // session record TTL
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Content struct {
		URL     string `yaml:"url"` // Sanity-style query endpoint; empty means Postgres or demo data
		Timeout string `yaml:"timeout"`
		Refs    struct {
			Easy         string `yaml:"easy"`
			Intermediate string `yaml:"intermediate"`
			Legendary    string `yaml:"legendary"`
		} `yaml:"refs"`
	} `yaml:"content"`
	Quiz struct {
		DrawSize int    `yaml:"drawSize"` // questions per attempt, 0 = all
		CacheTTL string `yaml:"cacheTtl"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path and fills defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns a config usable without a file (demo data, memory stores).
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Content.Refs.Easy == "" {
		c.Content.Refs.Easy = "difficulty-easy"
	}
	if c.Content.Refs.Intermediate == "" {
		c.Content.Refs.Intermediate = "difficulty-intermediate"
	}
	if c.Content.Refs.Legendary == "" {
		c.Content.Refs.Legendary = "difficulty-legendary"
	}
	if c.Quiz.DrawSize == 0 {
		c.Quiz.DrawSize = 10
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
