// Copyright 2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fund-lens/fl-api/common"
	"github.com/fund-lens/fl-api/database"
	"github.com/fund-lens/fl-api/fund"
	"github.com/fund-lens/fl-api/handler"
	"github.com/fund-lens/fl-api/middleware"
	"github.com/fund-lens/fl-api/observability/opentelemetry"
	"github.com/fund-lens/fl-api/router"
	"github.com/go-co-op/gocron"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 3000, "port to run HTTP server on")
	if err := viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port")); err != nil {
		log.Panic().Err(err).Msg("could not bind port")
	}
	if err := viper.BindEnv("server.port", "PORT"); err != nil {
		log.Panic().Err(err).Msg("could not bind PORT")
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analytics HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()
		common.SetupCache()
		log.Info().Str("Version", common.BuildVersionString()).Msg("starting flapi server")

		shutdownTracing, err := opentelemetry.Setup()
		if err != nil {
			log.Error().Err(err).Msg("could not setup tracing")
			os.Exit(1)
		}

		ctx := context.Background()
		if err := database.Connect(ctx); err != nil {
			log.Error().Err(err).Msg("could not connect to database")
			os.Exit(1)
		}

		store := fund.NewStore()
		if err := store.Refresh(ctx); err != nil {
			log.Error().Err(err).Msg("could not warm fund cache")
			os.Exit(1)
		}

		// pick up enrichment pipeline output as it lands
		scheduler := gocron.NewScheduler(common.GetTimezone())
		if _, err := scheduler.Every(1).Hours().Do(func() {
			if err := store.Refresh(context.Background()); err != nil {
				log.Error().Err(err).Msg("scheduled fund refresh failed")
			}
		}); err != nil {
			log.Error().Err(err).Msg("could not schedule fund refresh")
			os.Exit(1)
		}
		scheduler.StartAsync()

		app := fiber.New()
		app.Use(middleware.NewLogger())
		app.Use(cors.New())

		router.SetupRoutes(app, handler.NewAnalysis(store))

		// run server in a goroutine so SIGINT can drain it
		go func() {
			if err := app.Listen(fmt.Sprintf(":%d", viper.GetInt("server.port"))); err != nil {
				log.Error().Err(err).Msg("server stopped")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt)
		<-quit

		log.Info().Msg("shutting down server")
		scheduler.Stop()
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("could not shutdown server")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("could not shutdown tracing")
		}
	},
}
