// main.go
//
// A greenhouse-gas quantification and aggregation service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of carbonledger.
// carbonledger is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// carbonledger is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with carbonledger.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/carbonledger/data"
	"github.com/localnerve/carbonledger/internal/config"
	"github.com/localnerve/carbonledger/internal/database"
	"github.com/localnerve/carbonledger/internal/handlers"
	"github.com/localnerve/carbonledger/internal/middleware"
	"github.com/localnerve/carbonledger/internal/services"
	"github.com/rs/zerolog/log"

	_ "github.com/localnerve/carbonledger/docs/api" // Swagger docs
)

// @title carbonledger API
// @version 1.0.0
// @description Greenhouse gas quantification and aggregation service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/carbonledger
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.InitLogger("info", "console")
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	config.InitLogger(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	if cfg.SeedReferenceData {
		stats, err := services.SeedReferenceData(context.Background(), db, data.ReferenceYAML)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed reference data")
		}
		log.Info().
			Int("units", stats.Units).
			Int("gases", stats.Gases).
			Int("factors", stats.Factors).
			Msg("reference data seeded")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	prometheus := fiberprometheus.New("carbonledger")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	app.Get("/swagger/*", swagger.HandlerDefault)

	// The Authorizer client is created on the first authenticated request.
	handlers.Register(app, db, middleware.AuthorizerValidator(cfg))
	app.Use(handlers.NotFound)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info().Msg("gracefully shutting down")
		_ = app.Shutdown()
	}()

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}

	log.Info().Msg("server stopped")
}
