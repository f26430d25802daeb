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

// Package portfolio computes holdings-level exposure, inter-fund
// similarity, and return covariance for a weighted basket of funds.
package portfolio

import (
	"errors"
	"fmt"
)

// minWeight is the allocation floor; funds at or below it are treated
// as residual dust and excluded from every aggregation
const minWeight = 0.0001

var ErrUnknownFund = errors.New("fund not present in portfolio weights")

// Weights maps fund id to its fractional portfolio allocation.
// Fractions are used as-is; callers own normalization.
type Weights map[string]float64

// Weight resolves the allocation for a fund id. Ids outside the
// weight map indicate a malformed request and fail hard.
func (w Weights) Weight(fundID string) (float64, error) {
	v, ok := w[fundID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownFund, fundID)
	}
	return v, nil
}

// Active returns the fund ids carrying a non-dust allocation
func (w Weights) Active() map[string]float64 {
	out := make(map[string]float64, len(w))
	for id, v := range w {
		if v > minWeight {
			out[id] = v
		}
	}
	return out
}

// FundIDs returns all ids present in the weight map
func (w Weights) FundIDs() []string {
	ids := make([]string, 0, len(w))
	for id := range w {
		ids = append(ids, id)
	}
	return ids
}
