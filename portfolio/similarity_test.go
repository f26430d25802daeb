// Copyright 2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package portfolio_test

import (
	"github.com/fund-lens/fl-api/fund"
	"github.com/fund-lens/fl-api/portfolio"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Similarities", func() {
	Context("with two funds holding nearly the same book", func() {
		var pairs []portfolio.SimilarityPair

		BeforeEach(func() {
			funds := []*fund.Fund{
				mustParse(`{
					"id": "F1",
					"name": "Alpha Growth",
					"topHoldings": [
						{"securityId": "INFY", "weightPct": 9.0},
						{"securityId": "TCS", "weightPct": 8.0},
						{"securityId": "HDFC", "weightPct": 7.0}
					],
					"sectorAllocation": {"Finance": 30, "IT": 40}
				}`),
				mustParse(`{
					"id": "F2",
					"name": "Beta Tech",
					"topHoldings": [
						{"securityId": "INFY", "weightPct": 8.5},
						{"securityId": "TCS", "weightPct": 6.0},
						{"securityId": "WIPRO", "weightPct": 5.0}
					],
					"sectorAllocation": {"Finance": 20, "IT": 45}
				}`),
			}
			pairs = portfolio.Similarities(funds, portfolio.Weights{"F1": 0.5, "F2": 0.5})
		})

		It("reports the pair with min-weight overlap sums", func() {
			Expect(pairs).To(HaveLen(1))
			// min(9, 8.5) + min(8, 6)
			Expect(pairs[0].StockOverlapPct).To(BeNumerically("~", 14.5, 1e-9))
			// min(30, 20) + min(40, 45)
			Expect(pairs[0].SectorCorrelationPct).To(BeNumerically("~", 60.0, 1e-9))
			Expect(pairs[0].FundA).To(Equal("Alpha Growth"))
			Expect(pairs[0].FundB).To(Equal("Beta Tech"))
		})
	})

	Context("with disjoint funds", func() {
		It("reports nothing below both thresholds", func() {
			funds := []*fund.Fund{
				mustParse(`{
					"id": "F1",
					"name": "Alpha Growth",
					"topHoldings": [{"securityId": "INFY", "weightPct": 9.0}],
					"sectorAllocation": {"IT": 60}
				}`),
				mustParse(`{
					"id": "F2",
					"name": "Beta Pharma",
					"topHoldings": [{"securityId": "SUNPHARMA", "weightPct": 9.0}],
					"sectorAllocation": {"Healthcare": 60}
				}`),
			}
			pairs := portfolio.Similarities(funds, portfolio.Weights{"F1": 0.5, "F2": 0.5})
			Expect(pairs).To(BeEmpty())
		})
	})

	Context("with heavily correlated sectors but distinct stocks", func() {
		It("reports the pair on sector correlation alone", func() {
			funds := []*fund.Fund{
				mustParse(`{
					"id": "F1",
					"name": "Alpha Index",
					"sectorAllocation": {"Finance": 40, "IT": 40}
				}`),
				mustParse(`{
					"id": "F2",
					"name": "Beta Index",
					"sectorAllocation": {"Finance": 38, "IT": 42}
				}`),
			}
			pairs := portfolio.Similarities(funds, portfolio.Weights{"F1": 0.5, "F2": 0.5})
			Expect(pairs).To(HaveLen(1))
			// min(40, 38) + min(40, 42)
			Expect(pairs[0].SectorCorrelationPct).To(BeNumerically("~", 78.0, 1e-9))
			Expect(pairs[0].StockOverlapPct).To(BeZero())
		})
	})
})
