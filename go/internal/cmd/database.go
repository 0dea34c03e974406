package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/dbconfig"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/dbschema"
)

func setupDatabase(ctx context.Context) (*sql.DB, error) {
	cfg := dbconfig.NewConfigFromEnv()

	database, err := cfg.Open()
	if err != nil {
		return nil, err
	}

	if getEnvAsBool("DB_AUTO_MIGRATE", false) {
		if err := dbschema.Apply(ctx, database); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
		log.Info().Msg("database schema applied")
	}

	log.Info().
		Str("user", cfg.User).
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("connected to database")
	return database, nil
}
