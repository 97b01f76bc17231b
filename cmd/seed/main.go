package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/localnerve/carbonledger/data"
	"github.com/localnerve/carbonledger/internal/config"
	"github.com/localnerve/carbonledger/internal/database"
	"github.com/localnerve/carbonledger/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var catalogue string
	flag.StringVar(&catalogue, "c", "", "path to a reference catalogue YAML file")
	flag.Parse()

	usage := `
Migrate the carbonledger schema and load a reference catalogue (units,
gases, classification, emission factors). Loading is idempotent: rows that
already exist are left alone.

Usage:

seed [-h] [-c CATALOGUE_PATH]

CATALOGUE_PATH: YAML catalogue; the built-in data/reference.yaml when omitted
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		config.InitLogger("info", "console")
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	config.InitLogger(cfg.LogLevel, cfg.LogFormat)

	raw := data.ReferenceYAML
	if catalogue != "" {
		if raw, err = os.ReadFile(catalogue); err != nil {
			log.Fatal().Err(err).Str("file", catalogue).Msg("failed to read catalogue")
		}
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	stats, err := services.SeedReferenceData(context.Background(), db, raw)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed reference data")
	}

	log.Info().
		Int("units", stats.Units).
		Int("gases", stats.Gases).
		Int("factors", stats.Factors).
		Msg("reference data loaded")
}
