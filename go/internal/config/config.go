// Package config loads touchline.yaml and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/touchline/go/internal/roster"
)

const DefaultPath = "touchline.yaml"

// Store backends
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

type Config struct {
	Season      string        `yaml:"season"`
	Manager     string        `yaml:"manager"`
	HumanClub   string        `yaml:"human_club"`
	Clubs       int           `yaml:"clubs"`
	SquadSize   int           `yaml:"squad_size"`
	Seed        int64         `yaml:"seed"`
	AutoAdvance time.Duration `yaml:"auto_advance"`
	SaveDir     string        `yaml:"save_dir"`
	Store       string        `yaml:"store"`
	LogLevel    string        `yaml:"log_level"`
	Port        string        `yaml:"port"`

	NATS   NATSConfig   `yaml:"nats"`
	Gemini GeminiConfig `yaml:"gemini"`
}

type NATSConfig struct {
	URL           string        `yaml:"url"`
	MaxReconnects int           `yaml:"max_reconnects"`
	ReconnectWait time.Duration `yaml:"reconnect_wait"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// Default returns the settings used when no file is present
func Default() Config {
	return Config{
		Season:      "2026/27",
		Manager:     "Manager",
		Clubs:       20,
		SquadSize:   23,
		AutoAdvance: 2 * time.Second,
		SaveDir:     "save",
		Store:       StoreFile,
		LogLevel:    "info",
		Port:        "8080",
		NATS: NATSConfig{
			URL:           "nats://localhost:4222",
			MaxReconnects: 10,
			ReconnectWait: 2 * time.Second,
		},
		Gemini: GeminiConfig{
			Model: "gemini-1.5-flash",
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file at the default path is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
	case err != nil:
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.SaveDir = getEnv("TOUCHLINE_SAVE_DIR", c.SaveDir)
	c.Store = getEnv("TOUCHLINE_STORE", c.Store)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Port = getEnv("PORT", c.Port)
	c.Seed = int64(getEnvInt("TOUCHLINE_SEED", int(c.Seed)))
	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	c.Gemini.APIKey = getEnv("GEMINI_API_KEY", c.Gemini.APIKey)
	c.Gemini.Model = getEnv("GEMINI_MODEL", c.Gemini.Model)
}

// Validate checks the settings a new game depends on
func (c Config) Validate() error {
	switch {
	case c.Season == "":
		return errors.New("season label is required")
	case c.Clubs < 2:
		return fmt.Errorf("a league needs at least 2 clubs, got %d", c.Clubs)
	case c.SquadSize < roster.MinSquad || c.SquadSize > roster.MinSquad+roster.MaxSeniors:
		return fmt.Errorf("squad_size must be between %d and %d, got %d", roster.MinSquad, roster.MinSquad+roster.MaxSeniors, c.SquadSize)
	case c.AutoAdvance <= 0:
		return fmt.Errorf("auto_advance must be positive, got %s", c.AutoAdvance)
	case c.Store != StoreFile && c.Store != StorePostgres:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

// Level returns the configured zerolog level
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// RandSeed returns the configured seed, or a time-based one when unset
func (c Config) RandSeed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
