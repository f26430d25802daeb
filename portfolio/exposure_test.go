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

func mustParse(doc string) *fund.Fund {
	f, err := fund.ParseDocument([]byte(doc))
	Expect(err).To(BeNil())
	return f
}

var _ = Describe("Diversification", func() {
	Context("with two sector-weighted funds", func() {
		var report *portfolio.DiversificationReport

		BeforeEach(func() {
			funds := []*fund.Fund{
				mustParse(`{
					"id": "F1",
					"name": "Alpha Growth",
					"sectorAllocation": {"Finance": 40, "IT": 20}
				}`),
				mustParse(`{
					"id": "F2",
					"name": "Beta Value",
					"sectorAllocation": {"Finance": 50, "IT": 10}
				}`),
			}
			report = portfolio.Diversification(funds, portfolio.Weights{"F1": 0.6, "F2": 0.4})
		})

		It("aggregates sector exposure by portfolio weight", func() {
			Expect(report.TopSectors).To(HaveLen(2))
			Expect(report.TopSectors[0].Sector).To(Equal("Finance"))
			Expect(report.TopSectors[0].ExposurePct).To(BeNumerically("~", 44.0, 1e-9))
			Expect(report.TopSectors[1].Sector).To(Equal("IT"))
			Expect(report.TopSectors[1].ExposurePct).To(BeNumerically("~", 16.0, 1e-9))
		})

		It("labels heavy sector concentration", func() {
			Expect(report.SectorConcentration).To(Equal("High"))
		})

		It("reports low overlap when no stock is shared", func() {
			Expect(report.OverlappingStocks).To(BeEmpty())
			Expect(report.OverlapStatus).To(Equal("Low"))
		})

		It("keeps the score in range", func() {
			Expect(report.Score).To(BeNumerically(">=", 0))
			Expect(report.Score).To(BeNumerically("<=", 10))
			// 10 - 44/10 with no overlap penalty
			Expect(report.Score).To(BeNumerically("~", 5.6, 1e-9))
		})
	})

	Context("with overlapping holdings", func() {
		var report *portfolio.DiversificationReport

		BeforeEach(func() {
			funds := []*fund.Fund{
				mustParse(`{
					"id": "F1",
					"name": "Alpha Growth",
					"topHoldings": [
						{"securityId": "INFY", "securityName": "Infosys", "weightPct": 8.0},
						{"securityId": "TCS", "securityName": "TCS", "weightPct": 6.0},
						{"securityId": "SBIN", "securityName": "SBI", "weightPct": 0.5}
					]
				}`),
				mustParse(`{
					"id": "F2",
					"name": "Beta Value",
					"topHoldings": [
						{"securityId": "INFY", "securityName": "Infosys", "weightPct": 7.0},
						{"securityId": "HDFC", "securityName": "HDFC Bank", "weightPct": 9.0}
					]
				}`),
			}
			report = portfolio.Diversification(funds, portfolio.Weights{"F1": 0.5, "F2": 0.5})
		})

		It("surfaces stocks held by more than one fund", func() {
			Expect(report.OverlappingStocks).To(HaveLen(1))

			infy := report.OverlappingStocks[0]
			Expect(infy.SecurityID).To(Equal("INFY"))
			Expect(infy.FundCount).To(Equal(2))
			Expect(infy.Funds).To(ConsistOf("Alpha Growth", "Beta Value"))
			// 8.0*0.5 + 7.0*0.5
			Expect(infy.ExposurePct).To(BeNumerically("~", 7.5, 1e-9))
		})

		It("labels the overlap by its largest exposure", func() {
			Expect(report.OverlapStatus).To(Equal("High"))
		})
	})

	Context("with funds missing holdings and sectors", func() {
		It("contributes zero exposure without crashing", func() {
			funds := []*fund.Fund{mustParse(`{"id": "F1", "name": "Empty Fund"}`)}
			report := portfolio.Diversification(funds, portfolio.Weights{"F1": 1.0})

			Expect(report.OverlappingStocks).To(BeEmpty())
			Expect(report.TopSectors).To(BeEmpty())
			Expect(report.Score).To(BeNumerically(">=", 0))
			Expect(report.Score).To(BeNumerically("<=", 10))
			Expect(report.SectorConcentration).To(Equal("Balanced"))
		})
	})

	Context("with placeholder holdings lacking a security id", func() {
		It("never aggregates them into an overlapping stock", func() {
			funds := []*fund.Fund{
				mustParse(`{
					"id": "F1",
					"name": "Alpha Growth",
					"topHoldings": [{"securityId": "", "securityName": "Unlisted", "weightPct": 6.0}]
				}`),
				mustParse(`{
					"id": "F2",
					"name": "Beta Value",
					"topHoldings": [{"securityId": "", "securityName": "Unlisted", "weightPct": 6.0}]
				}`),
			}
			report := portfolio.Diversification(funds, portfolio.Weights{"F1": 0.5, "F2": 0.5})

			Expect(report.OverlappingStocks).To(BeEmpty())
			Expect(report.OverlapStatus).To(Equal("Low"))
		})
	})

	Context("with a fund listing the same security twice", func() {
		It("counts the fund as a single contributor", func() {
			funds := []*fund.Fund{
				mustParse(`{
					"id": "F1",
					"name": "Alpha Growth",
					"topHoldings": [
						{"securityId": "INFY", "securityName": "Infosys", "weightPct": 3.0},
						{"securityId": "INFY", "securityName": "Infosys", "weightPct": 3.0}
					]
				}`),
				mustParse(`{
					"id": "F2",
					"name": "Beta Value",
					"topHoldings": [{"securityId": "INFY", "securityName": "Infosys", "weightPct": 3.0}]
				}`),
			}
			report := portfolio.Diversification(funds, portfolio.Weights{"F1": 0.5, "F2": 0.5})

			Expect(report.OverlappingStocks).To(HaveLen(1))
			infy := report.OverlappingStocks[0]
			// both entries still contribute exposure: (3+3)*0.5 + 3*0.5
			Expect(infy.ExposurePct).To(BeNumerically("~", 4.5, 1e-9))
			Expect(infy.FundCount).To(Equal(2))
			Expect(infy.Funds).To(Equal([]string{"Alpha Growth", "Beta Value"}))
		})

		It("does not surface a security held by one fund alone", func() {
			funds := []*fund.Fund{
				mustParse(`{
					"id": "F1",
					"name": "Alpha Growth",
					"topHoldings": [
						{"securityId": "INFY", "securityName": "Infosys", "weightPct": 4.0},
						{"securityId": "INFY", "securityName": "Infosys", "weightPct": 4.0}
					]
				}`),
			}
			report := portfolio.Diversification(funds, portfolio.Weights{"F1": 1.0})
			Expect(report.OverlappingStocks).To(BeEmpty())
		})
	})

	Context("with multi-byte sector names", func() {
		It("capitalizes and unifies them", func() {
			funds := []*fund.Fund{
				mustParse(`{
					"id": "F1",
					"name": "Alpha Growth",
					"sectorAllocation": {"énergie": 10}
				}`),
				mustParse(`{
					"id": "F2",
					"name": "Beta Value",
					"sectorAllocation": {"Énergie": 10}
				}`),
			}
			report := portfolio.Diversification(funds, portfolio.Weights{"F1": 0.5, "F2": 0.5})

			Expect(report.TopSectors).To(HaveLen(1))
			Expect(report.TopSectors[0].Sector).To(Equal("Énergie"))
			Expect(report.TopSectors[0].ExposurePct).To(BeNumerically("~", 10.0, 1e-9))
		})
	})

	Context("with dust allocations", func() {
		It("excludes funds at or below the weight floor", func() {
			funds := []*fund.Fund{
				mustParse(`{
					"id": "F1",
					"name": "Dust Fund",
					"sectorAllocation": {"Finance": 100}
				}`),
			}
			report := portfolio.Diversification(funds, portfolio.Weights{"F1": 0.0001})
			Expect(report.TopSectors).To(BeEmpty())
		})
	})
})
