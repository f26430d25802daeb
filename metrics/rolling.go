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

// Package metrics derives point-in-time performance statistics for a
// single fund from its published NAV history.
package metrics

import (
	"math"
	"time"

	"github.com/fund-lens/fl-api/fund"
)

// Horizons are the trailing windows, in months, reported for every fund
var Horizons = []int{1, 3, 6, 12, 36, 60}

// RollingReturns reports trailing simple returns per horizon. A nil
// entry means the fund's history does not reach back far enough.
type RollingReturns struct {
	FundID  string           `json:"fundId"`
	AsOf    time.Time        `json:"asOf"`
	Returns map[int]*float64 `json:"returns"`
	CAGR    *float64         `json:"cagr,omitempty"`
}

// Rolling computes trailing returns at each standard horizon plus the
// since-inception CAGR. Horizons that predate the fund's history
// resolve to nil instead of an error.
func Rolling(f *fund.Fund) *RollingReturns {
	out := &RollingReturns{
		FundID:  f.ID,
		Returns: make(map[int]*float64, len(Horizons)),
	}

	latest, ok := f.NavHistory.Latest()
	if !ok {
		for _, h := range Horizons {
			out.Returns[h] = nil
		}
		return out
	}
	out.AsOf = latest.Date

	for _, h := range Horizons {
		target := latest.Date.AddDate(0, -h, 0)
		ref, ok := f.NavHistory.OnOrBefore(target)
		if !ok || ref.Nav <= 0 {
			out.Returns[h] = nil
			continue
		}
		r := round2((latest.Nav/ref.Nav - 1) * 100)
		out.Returns[h] = &r
	}

	out.CAGR = cagr(f.NavHistory)
	return out
}

// cagr computes the compound annual growth rate over the full history;
// funds younger than a year report nothing
func cagr(series fund.NavSeries) *float64 {
	first, ok := series.First()
	if !ok {
		return nil
	}
	latest, _ := series.Latest()

	years := toYears(latest.Date.Sub(first.Date))
	if years < 1 || first.Nav <= 0 {
		return nil
	}

	v := round2((math.Pow(latest.Nav/first.Nav, 1/years) - 1) * 100)
	return &v
}

func toYears(d time.Duration) float64 {
	return d.Hours() / (24 * 365.2425)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
