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

package forecast_test

import (
	"errors"
	"math"

	"github.com/fund-lens/fl-api/forecast"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Project", func() {
	Context("with zero volatility", func() {
		It("converges every percentile to deterministic compounding", func() {
			proj, err := forecast.Project(100000, 0.10, 0, 5, 200)
			Expect(err).To(BeNil())

			want := 100000 * math.Pow(1.10, 5)
			final := proj.Timeline[len(proj.Timeline)-1]
			Expect(final.Pessimistic).To(BeNumerically("~", want, 1))
			Expect(final.Expected).To(BeNumerically("~", want, 1))
			Expect(final.Optimistic).To(BeNumerically("~", want, 1))

			Expect(proj.Final.Pessimistic).To(BeNumerically("~", want, 0.01))
			Expect(proj.Final.Expected).To(BeNumerically("~", want, 0.01))
			Expect(proj.Final.Optimistic).To(BeNumerically("~", want, 0.01))
		})
	})

	Context("with volatility", func() {
		var proj *forecast.Projection

		BeforeEach(func() {
			var err error
			proj, err = forecast.Project(100000, 0.12, 0.15, 10, 1000)
			Expect(err).To(BeNil())
		})

		It("keeps the timeline dense and ordered", func() {
			Expect(proj.Timeline).To(HaveLen(10))
			for i, band := range proj.Timeline {
				Expect(band.Year).To(Equal(i + 1))
				Expect(band.Pessimistic).To(BeNumerically("<=", band.Expected))
				Expect(band.Expected).To(BeNumerically("<=", band.Optimistic))
			}
		})

		It("summarizes the final year", func() {
			Expect(proj.Final.Year).To(Equal(10))
			Expect(proj.Final.Pessimistic).To(BeNumerically(">", 0))
			Expect(proj.Paths).To(Equal(1000))
		})
	})

	Context("with invalid inputs", func() {
		It("rejects a non-positive initial amount", func() {
			_, err := forecast.Project(0, 0.12, 0.15, 10, 100)
			Expect(errors.Is(err, forecast.ErrInvalidAmount)).To(BeTrue())
		})

		It("rejects a zero-year horizon", func() {
			_, err := forecast.Project(100000, 0.12, 0.15, 0, 100)
			Expect(errors.Is(err, forecast.ErrInvalidHorizon)).To(BeTrue())
		})

		It("rejects horizons past the supported maximum", func() {
			_, err := forecast.Project(100000, 0.12, 0.15, forecast.MaxYears+1, 100)
			Expect(errors.Is(err, forecast.ErrHorizonTooLong)).To(BeTrue())
		})

		It("accepts the maximum horizon", func() {
			proj, err := forecast.Project(100000, 0.12, 0.15, forecast.MaxYears, 100)
			Expect(err).To(BeNil())
			Expect(proj.Timeline).To(HaveLen(forecast.MaxYears))
		})
	})
})
