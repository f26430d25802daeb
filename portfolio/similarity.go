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
	"sort"

	"github.com/fund-lens/fl-api/fund"
)

const (
	stockOverlapThreshold = 10.0
	sectorCorrelThreshold = 70.0
)

// SimilarityPair flags two funds whose disclosed books substantially
// overlap. Percentages use each fund's own holding weights, not the
// portfolio-scaled exposure.
type SimilarityPair struct {
	FundA                string  `json:"fundA"`
	FundB                string  `json:"fundB"`
	StockOverlapPct      float64 `json:"stockOverlapPct"`
	SectorCorrelationPct float64 `json:"sectorCorrelationPct"`
}

// Similarities compares every unordered pair of actively weighted
// funds. A pair is reported when either measure crosses its threshold.
func Similarities(funds []*fund.Fund, weights Weights) []SimilarityPair {
	active := weights.Active()

	held := make([]*fund.Fund, 0, len(funds))
	for _, f := range funds {
		if _, ok := active[f.ID]; ok {
			held = append(held, f)
		}
	}
	sort.Slice(held, func(i, j int) bool { return held[i].ID < held[j].ID })

	var pairs []SimilarityPair
	for i := 0; i < len(held); i++ {
		for j := i + 1; j < len(held); j++ {
			stock := stockOverlap(held[i], held[j])
			sector := sectorCorrelation(held[i], held[j])
			if stock > stockOverlapThreshold || sector > sectorCorrelThreshold {
				pairs = append(pairs, SimilarityPair{
					FundA:                held[i].Name,
					FundB:                held[j].Name,
					StockOverlapPct:      round2(stock),
					SectorCorrelationPct: round2(sector),
				})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].StockOverlapPct > pairs[j].StockOverlapPct
	})
	return pairs
}

// stockOverlap sums the smaller of the two holding weights for every
// security both funds disclose
func stockOverlap(a, b *fund.Fund) float64 {
	byID := make(map[string]float64, len(a.TopHoldings))
	for _, h := range a.TopHoldings {
		byID[h.SecurityID] = h.WeightPct
	}
	var total float64
	for _, h := range b.TopHoldings {
		if wa, ok := byID[h.SecurityID]; ok {
			total += min(wa, h.WeightPct)
		}
	}
	return total
}

// sectorCorrelation sums the smaller of the two allocations for every
// sector both funds report
func sectorCorrelation(a, b *fund.Fund) float64 {
	norm := make(map[string]float64, len(a.SectorAllocation))
	for sector, pct := range a.SectorAllocation {
		norm[titleCase(sector)] += pct
	}
	var total float64
	for sector, pct := range b.SectorAllocation {
		if pa, ok := norm[titleCase(sector)]; ok {
			total += min(pa, pct)
		}
	}
	return total
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
