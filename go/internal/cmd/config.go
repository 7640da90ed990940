package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/touchline/go/internal/config"
)

// loadConfig reads the config file and sets the global log level from it
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	zerolog.SetGlobalLevel(cfg.Level())
	log.Debug().
		Str("season", cfg.Season).
		Str("store", cfg.Store).
		Int("clubs", cfg.Clubs).
		Msg("config loaded")
	return cfg, nil
}
