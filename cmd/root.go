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
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "flapi",
	Short: "fund-lens portfolio analytics API",
	Long: `flapi analyzes weighted mutual-fund portfolios: holdings
overlap and sector concentration, NAV-derived risk and return
statistics, and Monte Carlo wealth projections.`,
}

// Execute dispatches to the requested sub-command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func init() {
	// logging
	rootCmd.PersistentFlags().String("log-level", "warning", "set log level: debug, info, warning, error")
	if err := viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		log.Panic().Err(err).Msg("could not bind log-level")
	}
	if err := viper.BindEnv("log.level", "LOG_LEVEL"); err != nil {
		log.Panic().Err(err).Msg("could not bind LOG_LEVEL")
	}

	rootCmd.PersistentFlags().Bool("log-report-caller", false, "include the file and line of the log call site")
	if err := viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller")); err != nil {
		log.Panic().Err(err).Msg("could not bind log-report-caller")
	}

	rootCmd.PersistentFlags().String("log-output", "stdout", "write logs to stdout, stderr, or a file path")
	if err := viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output")); err != nil {
		log.Panic().Err(err).Msg("could not bind log-output")
	}

	rootCmd.PersistentFlags().Bool("log-pretty", false, "use the human readable console writer")
	if err := viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty")); err != nil {
		log.Panic().Err(err).Msg("could not bind log-pretty")
	}

	// database
	rootCmd.PersistentFlags().String("database-url", "host=localhost port=5432", "DSN for connecting to the fund database")
	if err := viper.BindPFlag("database.url", rootCmd.PersistentFlags().Lookup("database-url")); err != nil {
		log.Panic().Err(err).Msg("could not bind database-url")
	}
	if err := viper.BindEnv("database.url", "DATABASE_URL"); err != nil {
		log.Panic().Err(err).Msg("could not bind DATABASE_URL")
	}

	// cache
	viper.SetDefault("cache.local_size", 1000)
	viper.SetDefault("cache.fund_size", 1024)
	viper.SetDefault("cache.ttl", 3600)
	if err := viper.BindEnv("cache.redis_url", "REDIS_URL"); err != nil {
		log.Panic().Err(err).Msg("could not bind REDIS_URL")
	}

	// simulation
	viper.SetDefault("simulation.paths", 1000)
	viper.SetDefault("simulation.default_return", 0.12)
	viper.SetDefault("simulation.default_stddev", 0.15)

	// tracing
	if err := viper.BindEnv("otlp.endpoint", "OTLP_ENDPOINT"); err != nil {
		log.Panic().Err(err).Msg("could not bind OTLP_ENDPOINT")
	}
}
