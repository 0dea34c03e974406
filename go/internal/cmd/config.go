package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameconfig"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func setupLogging() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}
}

func loadConfig(path string) (gameconfig.Config, error) {
	cfg, err := gameconfig.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to load %s: %w", path, err)
	}
	log.Info().
		Str("path", path).
		Int("turn_min_sec", cfg.Rules.TurnDurationMinSec).
		Int("turn_max_sec", cfg.Rules.TurnDurationMaxSec).
		Int("airing_window_sec", cfg.Rules.AiringWindowSec).
		Int("default_pick_quota", cfg.Rules.PickQuotaDefault).
		Msg("loaded game config")
	return cfg, nil
}
