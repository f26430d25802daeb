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
	"fmt"
	"os"

	"github.com/fund-lens/fl-api/common"
	"github.com/fund-lens/fl-api/forecast"
	"github.com/fund-lens/fl-api/fund"
	"github.com/fund-lens/fl-api/metrics"
	"github.com/fund-lens/fl-api/portfolio"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	analyzeInitialAmount float64
	analyzeYears         int
	analyzeSIPMonths     int
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().Float64Var(&analyzeInitialAmount, "amount", 0, "initial amount for the wealth projection; 0 skips it")
	analyzeCmd.Flags().IntVar(&analyzeYears, "years", 10, "projection horizon in years")
	analyzeCmd.Flags().IntVar(&analyzeSIPMonths, "sip-months", 60, "trailing window for the SIP simulation")
}

// analyzeFile mirrors the HTTP request body: portfolio weights plus
// inline fund documents
type analyzeFile struct {
	Portfolio map[string]float64 `json:"portfolio"`
	Funds     []json.RawMessage  `json:"funds"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <portfolio.json>",
	Args:  cobra.ExactArgs(1),
	Short: "Analyze a portfolio file offline and print the reports as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()

		raw, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatal().Err(err).Str("File", args[0]).Msg("could not read portfolio file")
		}

		var in analyzeFile
		if err := json.Unmarshal(raw, &in); err != nil {
			log.Fatal().Err(err).Msg("could not parse portfolio file")
		}
		if len(in.Portfolio) == 0 || len(in.Funds) == 0 {
			log.Fatal().Msg("portfolio file needs portfolio weights and inline fund documents")
		}

		funds := make([]*fund.Fund, 0, len(in.Funds))
		for _, doc := range in.Funds {
			f, err := fund.ParseDocument(doc)
			if err != nil {
				log.Fatal().Err(err).Msg("could not parse fund document")
			}
			funds = append(funds, f)
		}

		weights := portfolio.Weights(in.Portfolio)
		out := map[string]any{
			"diversification": portfolio.Diversification(funds, weights),
			"covariance":      portfolio.Covariance(funds, weights),
		}

		returns := make([]*metrics.RollingReturns, 0, len(funds))
		sips := make([]*metrics.SIPResult, 0, len(funds))
		risks := make([]*metrics.RiskInsights, 0, len(funds))
		for _, f := range funds {
			returns = append(returns, metrics.Rolling(f))
			if sip := metrics.SimulateSIP(f, analyzeSIPMonths); sip != nil {
				sips = append(sips, sip)
			}
			risks = append(risks, metrics.Insights(f, metrics.CategoryDefaults))
		}
		out["returns"] = returns
		out["sip"] = sips
		out["risk"] = risks

		if analyzeInitialAmount > 0 {
			cov := out["covariance"].(*portfolio.CovarianceReport)
			meanReturn, stdDev := forecast.Defaults()
			if cov.Months >= 12 {
				meanReturn = cov.AnnualizedReturn
				stdDev = cov.AnnualizedStdDev
			}
			proj, err := forecast.Project(analyzeInitialAmount, meanReturn, stdDev, analyzeYears, forecast.Paths())
			if err != nil {
				log.Fatal().Err(err).Msg("could not run projection")
			}
			out["projection"] = proj
		}

		body, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			log.Fatal().Err(err).Msg("could not serialize report")
		}
		fmt.Println(string(body))
	},
}
