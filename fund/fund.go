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

// Package fund models fund master data as delivered by the external
// enrichment pipeline. Documents are semi-structured and frequently
// incomplete; every field of the payload is optional and parsing
// degrades gracefully rather than failing.
package fund

import (
	"strconv"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Holding is a single entry of a fund's disclosed top-holdings list.
// WeightPct is the holding's share of the fund's NAV, in percent.
type Holding struct {
	SecurityID   string  `json:"securityId"`
	SecurityName string  `json:"securityName"`
	WeightPct    float64 `json:"weightPct"`
}

// Fund is a read-only snapshot of a fund's enrichment payload
type Fund struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Category         string             `json:"category"`
	SectorAllocation map[string]float64 `json:"sectorAllocation,omitempty"`
	TopHoldings      []Holding          `json:"topHoldings,omitempty"`
	NavHistory       NavSeries          `json:"-"`

	// riskDoc keeps the raw decoded document for the prioritized
	// risk-metric lookups in riskmeta.go
	riskDoc map[string]any
}

// rawDocument mirrors the enrichment payload shape. navHistory values
// arrive as numbers or numeric strings depending on the upstream
// scraper, so they are decoded loosely.
type rawDocument struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Category         string             `json:"category"`
	SectorAllocation map[string]float64 `json:"sectorAllocation"`
	TopHoldings      []Holding          `json:"topHoldings"`
	NavHistory       map[string]any     `json:"navHistory"`
}

// ParseDocument decodes a fund enrichment document. Missing or null
// sub-documents produce a fund with the corresponding fields empty;
// only an undecodable envelope is an error.
func ParseDocument(doc []byte) (*Fund, error) {
	if len(doc) == 0 {
		return nil, ErrEmptyDocument
	}

	var raw rawDocument
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, err
	}

	f := &Fund{
		ID:               raw.ID,
		Name:             raw.Name,
		Category:         raw.Category,
		SectorAllocation: raw.SectorAllocation,
		TopHoldings:      raw.TopHoldings,
		NavHistory:       ParseNavHistory(raw.NavHistory),
	}

	// keep the full document for risk-metric path lookups
	var full map[string]any
	if err := json.Unmarshal(doc, &full); err == nil {
		f.riskDoc = full
	}

	if f.ID == "" {
		log.Debug().Str("Name", f.Name).Msg("fund document has no id")
	}

	return f, nil
}

// coerceFloat converts a loosely typed document value to float64
func coerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}
