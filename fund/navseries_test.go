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

package fund_test

import (
	"time"

	"github.com/fund-lens/fl-api/fund"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NavSeries", func() {
	Context("when parsing a raw history map", func() {
		It("accepts every supported date format", func() {
			series := fund.ParseNavHistory(map[string]any{
				"2023-01":              100.0,
				"15-02-2023":           102.0,
				"2023-03-10":           104.0,
				"2023-04-20T00:00:00Z": 106.0,
			})
			Expect(series.Len()).To(Equal(4))

			points := series.Points()
			Expect(points[0].Date).To(BeTemporally("==", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
			Expect(points[1].Date).To(BeTemporally("==", time.Date(2023, 2, 15, 0, 0, 0, 0, time.UTC)))
			Expect(points[2].Date).To(BeTemporally("==", time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC)))
			Expect(points[3].Date).To(BeTemporally("==", time.Date(2023, 4, 20, 0, 0, 0, 0, time.UTC)))
		})

		It("coerces string NAV values", func() {
			series := fund.ParseNavHistory(map[string]any{
				"2023-01-05": "101.25",
			})
			Expect(series.Len()).To(Equal(1))
			Expect(series.Points()[0].Nav).To(BeNumerically("~", 101.25, 1e-9))
		})

		It("drops unparsable dates and non-positive values silently", func() {
			series := fund.ParseNavHistory(map[string]any{
				"not-a-date": 100.0,
				"2023-01-05": 0.0,
				"2023-01-06": -5.0,
				"2023-01-07": "n/a",
				"2023-01-08": 100.0,
			})
			Expect(series.Len()).To(Equal(1))
			Expect(series.Points()[0].Nav).To(Equal(100.0))
		})

		It("handles an empty history", func() {
			series := fund.ParseNavHistory(nil)
			Expect(series.Len()).To(Equal(0))

			_, ok := series.Latest()
			Expect(ok).To(BeFalse())
			_, ok = series.First()
			Expect(ok).To(BeFalse())
			_, ok = series.ClosestPrior(time.Now())
			Expect(ok).To(BeFalse())
		})
	})

	Context("when resolving reference dates", func() {
		var series fund.NavSeries

		BeforeEach(func() {
			series = fund.ParseNavHistory(map[string]any{
				"2023-01-01": 100.0,
				"2023-04-01": 110.0,
			})
		})

		It("returns the floor observation when one exists", func() {
			p, ok := series.OnOrBefore(time.Date(2023, 2, 15, 0, 0, 0, 0, time.UTC))
			Expect(ok).To(BeTrue())
			Expect(p.Nav).To(Equal(100.0))
		})

		It("returns the exact observation on a matching date", func() {
			p, ok := series.OnOrBefore(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
			Expect(ok).To(BeTrue())
			Expect(p.Nav).To(Equal(100.0))
		})

		It("finds nothing before the series starts", func() {
			_, ok := series.OnOrBefore(time.Date(2022, 10, 1, 0, 0, 0, 0, time.UTC))
			Expect(ok).To(BeFalse())
		})

		It("falls back to the ceiling observation when the series starts later", func() {
			p, ok := series.ClosestPrior(time.Date(2022, 10, 1, 0, 0, 0, 0, time.UTC))
			Expect(ok).To(BeTrue())
			Expect(p.Nav).To(Equal(100.0))
		})
	})

	Context("when computing monthly returns", func() {
		It("uses the last NAV of each calendar month", func() {
			series := fund.ParseNavHistory(map[string]any{
				"2023-01-10": 95.0,
				"2023-01-31": 100.0,
				"2023-02-28": 110.0,
				"2023-03-31": 99.0,
			})
			returns := series.MonthlyReturns()
			Expect(returns).To(HaveLen(2))
			Expect(returns[0]).To(BeNumerically("~", 0.10, 1e-9))
			Expect(returns[1]).To(BeNumerically("~", -0.10, 1e-9))
		})

		It("requires at least two distinct months", func() {
			series := fund.ParseNavHistory(map[string]any{
				"2023-01-10": 95.0,
				"2023-01-31": 100.0,
			})
			Expect(series.MonthlyReturns()).To(BeEmpty())
		})
	})
})
