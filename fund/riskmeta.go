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

package fund

import "sort"

// RiskMetrics holds scraped risk statistics for a fund. A nil field
// means the document carried no value for that metric at any of the
// known locations.
type RiskMetrics struct {
	Alpha       *float64
	Beta        *float64
	SharpeRatio *float64
	StdDev      *float64
}

// riskFieldAliases maps each metric to the document keys it may be
// published under. Different enrichment vintages use different names.
var riskFieldAliases = map[string][]string{
	"alpha":       {"alpha"},
	"beta":        {"beta"},
	"sharpeRatio": {"sharpeRatio", "sharpe_ratio", "sharpe"},
	"stdDev":      {"stdDev", "standardDeviation", "std_dev"},
}

// Risk extracts the fund's risk statistics. Each metric is resolved
// independently: root-level keys first, then keys one level down, then
// the risk_volatility.fund_risk_volatility.for3Year block.
func (f *Fund) Risk() RiskMetrics {
	return RiskMetrics{
		Alpha:       f.riskField("alpha"),
		Beta:        f.riskField("beta"),
		SharpeRatio: f.riskField("sharpeRatio"),
		StdDev:      f.riskField("stdDev"),
	}
}

func (f *Fund) riskField(name string) *float64 {
	if f.riskDoc == nil {
		return nil
	}
	aliases := riskFieldAliases[name]

	if v := lookupAliases(f.riskDoc, aliases); v != nil {
		return v
	}

	// one level of nesting; children are visited in sorted key order
	// so resolution is deterministic
	childKeys := make([]string, 0, len(f.riskDoc))
	for k := range f.riskDoc {
		childKeys = append(childKeys, k)
	}
	sort.Strings(childKeys)
	for _, k := range childKeys {
		child, ok := f.riskDoc[k].(map[string]any)
		if !ok {
			continue
		}
		if v := lookupAliases(child, aliases); v != nil {
			return v
		}
	}

	if block := nestedObject(f.riskDoc, "risk_volatility", "fund_risk_volatility", "for3Year"); block != nil {
		if v := lookupAliases(block, aliases); v != nil {
			return v
		}
	}

	return nil
}

func lookupAliases(obj map[string]any, aliases []string) *float64 {
	for _, key := range aliases {
		if raw, ok := obj[key]; ok {
			if f, ok := coerceFloat(raw); ok {
				return &f
			}
		}
	}
	return nil
}

func nestedObject(obj map[string]any, path ...string) map[string]any {
	cur := obj
	for _, key := range path {
		next, ok := cur[key].(map[string]any)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}
