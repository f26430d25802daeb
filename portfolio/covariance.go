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

package portfolio

import (
	"math"
	"sort"

	"github.com/fund-lens/fl-api/fund"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const monthsPerYear = 12

// CovarianceReport holds the monthly return covariance structure of
// the portfolio. Matrix entries are rounded to 4 decimals, percentage
// scalars to 2; std deviations are reported as percentages.
type CovarianceReport struct {
	FundIDs                   []string    `json:"fundIds"`
	Months                    int         `json:"months"`
	Covariance                [][]float64 `json:"covariance"`
	Correlation               [][]float64 `json:"correlation"`
	FundStdDevPct             []float64   `json:"fundStdDevPct"`
	PortfolioVariance         float64     `json:"portfolioVariance"`
	PortfolioStdDevPct        float64     `json:"portfolioStdDevPct"`
	WeightedAvgStdDevPct      float64     `json:"weightedAvgStdDevPct"`
	DiversificationBenefitPct float64     `json:"diversificationBenefitPct"`

	// annualized portfolio statistics, kept as fractions for the
	// wealth projection
	AnnualizedReturn float64 `json:"annualizedReturn"`
	AnnualizedStdDev float64 `json:"annualizedStdDev"`
}

// Covariance estimates the covariance and correlation of monthly fund
// returns over their common history. Series are positionally aligned
// on the most recent observations of the shortest series; when any
// fund lacks two months of history the window collapses to zero and
// all statistics degrade to zeros rather than NaN.
func Covariance(funds []*fund.Fund, weights Weights) *CovarianceReport {
	active := weights.Active()

	held := make([]*fund.Fund, 0, len(funds))
	for _, f := range funds {
		if _, ok := active[f.ID]; ok {
			held = append(held, f)
		}
	}
	sort.Slice(held, func(i, j int) bool { return held[i].ID < held[j].ID })

	n := len(held)
	report := &CovarianceReport{
		FundIDs:       make([]string, n),
		Covariance:    zeroMatrix(n),
		Correlation:   identityMatrix(n),
		FundStdDevPct: make([]float64, n),
	}

	w := make([]float64, n)
	returns := make([][]float64, n)
	months := math.MaxInt
	for i, f := range held {
		report.FundIDs[i] = f.ID
		w[i] = active[f.ID]
		returns[i] = f.NavHistory.MonthlyReturns()
		if len(returns[i]) < months {
			months = len(returns[i])
		}
	}
	if n == 0 || months < 2 {
		report.Months = 0
		return report
	}
	report.Months = months

	// trim to the common window, most recent observations
	means := make([]float64, n)
	for i := range returns {
		returns[i] = returns[i][len(returns[i])-months:]
		means[i] = stat.Mean(returns[i], nil)
	}

	cov := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var sum float64
			for k := 0; k < months; k++ {
				sum += (returns[i][k] - means[i]) * (returns[j][k] - means[j])
			}
			c := sum / float64(months)
			cov[i*n+j] = c
			cov[j*n+i] = c
		}
	}

	// fund std deviations come off the covariance diagonal so the
	// correlation diagonal and the diversification identities hold
	// exactly
	stds := make([]float64, n)
	for i := 0; i < n; i++ {
		stds[i] = math.Sqrt(cov[i*n+i])
	}

	for i := 0; i < n; i++ {
		report.FundStdDevPct[i] = round2(stds[i] * 100)
		for j := 0; j < n; j++ {
			report.Covariance[i][j] = round4(cov[i*n+j])
			if i != j {
				if stds[i] > 0 && stds[j] > 0 {
					report.Correlation[i][j] = round4(cov[i*n+j] / (stds[i] * stds[j]))
				} else {
					report.Correlation[i][j] = 0
				}
			}
		}
	}

	wVec := mat.NewVecDense(n, w)
	variance := mat.Inner(wVec, mat.NewDense(n, n, cov), wVec)
	if variance < 0 {
		variance = 0
	}
	portStd := math.Sqrt(variance)

	var weightedStd, portMean float64
	for i := 0; i < n; i++ {
		weightedStd += w[i] * stds[i]
		portMean += w[i] * means[i]
	}

	report.PortfolioVariance = round4(variance)
	report.PortfolioStdDevPct = round2(portStd * 100)
	report.WeightedAvgStdDevPct = round2(weightedStd * 100)
	if weightedStd > 0 {
		report.DiversificationBenefitPct = round2((weightedStd - portStd) / weightedStd * 100)
	}

	report.AnnualizedReturn = portMean * monthsPerYear
	report.AnnualizedStdDev = portStd * math.Sqrt(monthsPerYear)

	return report
}

func zeroMatrix(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

func identityMatrix(n int) [][]float64 {
	m := zeroMatrix(n)
	for i := range m {
		m[i][i] = 1
	}
	return m
}
