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

package metrics_test

import (
	"time"

	"github.com/fund-lens/fl-api/fund"
	"github.com/fund-lens/fl-api/metrics"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// flatHistory builds a monthly NAV history at a constant price
func flatHistory(months int, nav float64) map[string]any {
	out := make(map[string]any, months)
	d := time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < months; i++ {
		out[d.AddDate(0, -i, 0).Format("2006-01-02")] = nav
	}
	return out
}

var _ = Describe("SimulateSIP", func() {
	Context("with a flat NAV", func() {
		It("returns exactly the invested amount", func() {
			f := &fund.Fund{ID: "F1", NavHistory: fund.ParseNavHistory(flatHistory(24, 100))}

			sip := metrics.SimulateSIP(f, 12)
			Expect(sip).NotTo(BeNil())
			Expect(sip.Months).To(Equal(12))
			Expect(sip.Invested).To(BeNumerically("~", 12*metrics.SIPNotional, 1e-6))
			Expect(sip.FinalValue).To(BeNumerically("~", sip.Invested, 1e-6))
			Expect(sip.ReturnPct).To(BeNumerically("~", 0.0, 1e-9))
		})
	})

	Context("with a doubling NAV", func() {
		It("values early units at the latest price", func() {
			history := flatHistory(13, 100)
			// latest point is worth double
			history["2023-12-15"] = 200.0
			f := &fund.Fund{ID: "F1", NavHistory: fund.ParseNavHistory(history)}

			sip := metrics.SimulateSIP(f, 12)
			Expect(sip).NotTo(BeNil())
			// every contribution bought at 100, valued at 200
			Expect(sip.ReturnPct).To(BeNumerically("~", 100.0, 1e-6))
		})
	})

	Context("with too little history", func() {
		It("returns nil under twelve usable months", func() {
			f := &fund.Fund{ID: "F1", NavHistory: fund.ParseNavHistory(flatHistory(6, 100))}
			Expect(metrics.SimulateSIP(f, 12)).To(BeNil())
		})

		It("returns nil with no history", func() {
			var f fund.Fund
			f.ID = "F1"
			Expect(metrics.SimulateSIP(&f, 12)).To(BeNil())
		})
	})
})
