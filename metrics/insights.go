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

package metrics

import "github.com/fund-lens/fl-api/fund"

// RiskDefaults supplies fallback values for metrics absent from a
// fund's document; typically the category averages
type RiskDefaults struct {
	Alpha       float64
	Beta        float64
	SharpeRatio float64
	StdDev      float64
}

// CategoryDefaults are the equity category averages applied when a
// fund's document carries no risk block at all
var CategoryDefaults = RiskDefaults{
	Alpha:       0.0,
	Beta:        1.0,
	SharpeRatio: 0.8,
	StdDev:      15.0,
}

// RiskInsights pairs each scraped risk statistic with a plain-language
// label. FromDocument marks metrics actually present in the fund's
// document as opposed to category fallbacks.
type RiskInsights struct {
	FundID       string          `json:"fundId"`
	Alpha        float64         `json:"alpha"`
	Beta         float64         `json:"beta"`
	SharpeRatio  float64         `json:"sharpeRatio"`
	StdDev       float64         `json:"stdDev"`
	FromDocument map[string]bool `json:"fromDocument"`
	Labels       map[string]string `json:"labels"`
}

// Insights resolves the fund's risk metrics against the supplied
// defaults and attaches interpretation labels. Each metric falls back
// independently.
func Insights(f *fund.Fund, defaults RiskDefaults) *RiskInsights {
	risk := f.Risk()

	out := &RiskInsights{
		FundID:       f.ID,
		FromDocument: make(map[string]bool, 4),
		Labels:       make(map[string]string, 4),
	}

	out.Alpha, out.FromDocument["alpha"] = resolve(risk.Alpha, defaults.Alpha)
	out.Beta, out.FromDocument["beta"] = resolve(risk.Beta, defaults.Beta)
	out.SharpeRatio, out.FromDocument["sharpeRatio"] = resolve(risk.SharpeRatio, defaults.SharpeRatio)
	out.StdDev, out.FromDocument["stdDev"] = resolve(risk.StdDev, defaults.StdDev)

	out.Labels["beta"] = betaLabel(out.Beta)
	out.Labels["alpha"] = alphaLabel(out.Alpha)
	out.Labels["sharpeRatio"] = sharpeLabel(out.SharpeRatio)
	out.Labels["stdDev"] = volatilityLabel(out.StdDev)

	return out
}

func resolve(v *float64, fallback float64) (float64, bool) {
	if v != nil {
		return *v, true
	}
	return fallback, false
}

func betaLabel(beta float64) string {
	switch {
	case beta < 0.8:
		return "defensive"
	case beta > 1.2:
		return "aggressive"
	default:
		return "market-like"
	}
}

func alphaLabel(alpha float64) string {
	if alpha > 0 {
		return "outperforming"
	}
	if alpha < 0 {
		return "lagging"
	}
	return "in line"
}

func sharpeLabel(sharpe float64) string {
	switch {
	case sharpe > 1:
		return "strong risk-adjusted returns"
	case sharpe < 0.5:
		return "weak risk-adjusted returns"
	default:
		return "adequate risk-adjusted returns"
	}
}

func volatilityLabel(stdDev float64) string {
	switch {
	case stdDev > 20:
		return "highly volatile"
	case stdDev < 10:
		return "low volatility"
	default:
		return "moderately volatile"
	}
}
