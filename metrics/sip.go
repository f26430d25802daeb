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

// SIPNotional is the fixed monthly contribution used for the synthetic
// systematic investment plan
const SIPNotional = 10000.0

// minSIPMonths is the smallest usable window; shorter histories make
// the annualized figures meaningless
const minSIPMonths = 12

// SIPResult is the outcome of a synthetic monthly investment plan held
// to the fund's latest NAV
type SIPResult struct {
	FundID     string  `json:"fundId"`
	Months     int     `json:"months"`
	Invested   float64 `json:"invested"`
	FinalValue float64 `json:"finalValue"`
	ReturnPct  float64 `json:"returnPct"`
}

// SimulateSIP replays a fixed monthly contribution over the trailing
// window, buying units at the reference NAV of each month. Months with
// no resolvable NAV are skipped; fewer than 12 usable months yields
// nil.
func SimulateSIP(f *fund.Fund, months int) *SIPResult {
	latest, ok := f.NavHistory.Latest()
	if !ok {
		return nil
	}

	var units, invested float64
	usable := 0
	for m := months; m >= 1; m-- {
		target := latest.Date.AddDate(0, -m, 0)
		ref, ok := f.NavHistory.ClosestPrior(target)
		if !ok || ref.Nav <= 0 {
			continue
		}
		units += SIPNotional / ref.Nav
		invested += SIPNotional
		usable++
	}

	if usable < minSIPMonths {
		return nil
	}

	final := units * latest.Nav
	return &SIPResult{
		FundID:     f.ID,
		Months:     usable,
		Invested:   invested,
		FinalValue: round2(final),
		ReturnPct:  round2((final - invested) / invested * 100),
	}
}
