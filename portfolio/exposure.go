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
	"strings"
	"unicode"

	"github.com/fund-lens/fl-api/fund"
)

const (
	maxOverlapStocks = 5
	maxSectors       = 10

	// surfacing thresholds for the diversification report
	overlapExposureFloor = 1.0
	overlapHighThreshold = 5.0
	sectorHighThreshold  = 30.0
)

// StockExposure is a security's weighted share of the whole portfolio,
// aggregated across the funds that hold it
type StockExposure struct {
	SecurityID   string   `json:"securityId"`
	SecurityName string   `json:"securityName"`
	ExposurePct  float64  `json:"exposurePct"`
	FundCount    int      `json:"fundCount"`
	Funds        []string `json:"funds"`
}

// SectorExposure is a sector's weighted share of the whole portfolio
type SectorExposure struct {
	Sector      string  `json:"sector"`
	ExposurePct float64 `json:"exposurePct"`
}

// DiversificationReport summarizes how concentrated the portfolio is
// at the stock and sector level
type DiversificationReport struct {
	OverlappingStocks   []StockExposure  `json:"overlappingStocks"`
	TopSectors          []SectorExposure `json:"topSectors"`
	Score               float64          `json:"score"`
	OverlapStatus       string           `json:"overlapStatus"`
	SectorConcentration string           `json:"sectorConcentration"`
	Similarities        []SimilarityPair `json:"fundSimilarities"`
}

// Diversification aggregates holdings and sector allocations across
// the portfolio. Funds with dust allocations are skipped entirely;
// funds missing holdings or sector data simply contribute nothing.
func Diversification(funds []*fund.Fund, weights Weights) *DiversificationReport {
	active := weights.Active()

	stocks := make(map[string]*stockAgg)
	sectors := make(map[string]float64)

	for _, f := range funds {
		w, ok := active[f.ID]
		if !ok {
			continue
		}
		// placeholder holdings without a security id carry no
		// aggregatable identity
		seen := make(map[string]bool, len(f.TopHoldings))
		for _, h := range f.TopHoldings {
			if h.SecurityID == "" {
				continue
			}
			agg, ok := stocks[h.SecurityID]
			if !ok {
				agg = &stockAgg{name: h.SecurityName}
				stocks[h.SecurityID] = agg
			}
			agg.exposure += h.WeightPct * w
			if !seen[h.SecurityID] {
				agg.funds = append(agg.funds, f.Name)
				seen[h.SecurityID] = true
			}
		}
		for sector, pct := range f.SectorAllocation {
			sectors[titleCase(sector)] += pct * w
		}
	}

	report := &DiversificationReport{
		OverlappingStocks: overlappingStocks(stocks),
		TopSectors:        topSectors(sectors),
		Similarities:      Similarities(funds, weights),
	}

	var topSectorPct float64
	if len(report.TopSectors) > 0 {
		topSectorPct = report.TopSectors[0].ExposurePct
	}
	var overlapSum float64
	var overlapMax float64
	for _, s := range report.OverlappingStocks {
		overlapSum += s.ExposurePct
		if s.ExposurePct > overlapMax {
			overlapMax = s.ExposurePct
		}
	}

	score := 10 - topSectorPct/10 - overlapSum/5
	report.Score = round1(clamp(score, 0, 10))

	switch {
	case len(report.OverlappingStocks) == 0:
		report.OverlapStatus = "Low"
	case overlapMax > overlapHighThreshold:
		report.OverlapStatus = "High"
	default:
		report.OverlapStatus = "Moderate"
	}

	if topSectorPct > sectorHighThreshold {
		report.SectorConcentration = "High"
	} else {
		report.SectorConcentration = "Balanced"
	}

	return report
}

type stockAgg struct {
	name     string
	exposure float64
	funds    []string
}

// overlappingStocks surfaces securities held by more than one fund
// with meaningful combined exposure, largest first
func overlappingStocks(stocks map[string]*stockAgg) []StockExposure {
	out := make([]StockExposure, 0, len(stocks))
	for id, agg := range stocks {
		if len(agg.funds) <= 1 || agg.exposure <= overlapExposureFloor {
			continue
		}
		out = append(out, StockExposure{
			SecurityID:   id,
			SecurityName: agg.name,
			ExposurePct:  round2(agg.exposure),
			FundCount:    len(agg.funds),
			Funds:        agg.funds,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExposurePct != out[j].ExposurePct {
			return out[i].ExposurePct > out[j].ExposurePct
		}
		return out[i].SecurityID < out[j].SecurityID
	})
	if len(out) > maxOverlapStocks {
		out = out[:maxOverlapStocks]
	}
	return out
}

func topSectors(sectors map[string]float64) []SectorExposure {
	out := make([]SectorExposure, 0, len(sectors))
	for name, pct := range sectors {
		out = append(out, SectorExposure{Sector: name, ExposurePct: round2(pct)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExposurePct != out[j].ExposurePct {
			return out[i].ExposurePct > out[j].ExposurePct
		}
		return out[i].Sector < out[j].Sector
	})
	if len(out) > maxSectors {
		out = out[:maxSectors]
	}
	return out
}

// titleCase capitalizes sector names for display; upstream documents
// disagree on casing. Acronym sectors like IT pass through unchanged.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
