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

// Package forecast projects portfolio wealth forward with an annual
// geometric Brownian motion simulation.
package forecast

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// MaxYears bounds the projection horizon; anything longer is
	// numerically meaningless for retail planning
	MaxYears = 50

	defaultPaths = 1000

	// category fallbacks applied when the portfolio has no usable
	// return history
	DefaultMeanReturn = 0.12
	DefaultStdDev     = 0.15
)

var (
	ErrHorizonTooLong = errors.New("projection horizon exceeds supported maximum")
	ErrInvalidHorizon = errors.New("projection horizon must be at least one year")
	ErrInvalidAmount  = errors.New("initial amount must be positive")
)

// Band holds the pessimistic (p10), expected (p50), and optimistic
// (p90) scenario values for one point in time
type Band struct {
	Year        int     `json:"year"`
	Pessimistic float64 `json:"pessimistic"`
	Expected    float64 `json:"expected"`
	Optimistic  float64 `json:"optimistic"`
}

// Projection is the simulated wealth distribution over the horizon.
// Timeline values are rounded to whole currency units; the final
// summary keeps 2 decimals.
type Projection struct {
	InitialAmount float64 `json:"initialAmount"`
	Years         int     `json:"years"`
	Paths         int     `json:"paths"`
	MeanReturn    float64 `json:"meanReturn"`
	StdDev        float64 `json:"stdDev"`
	Timeline      []Band  `json:"timeline"`
	Final         Band    `json:"final"`
}

// Paths returns the configured simulation path count
func Paths() int {
	if p := viper.GetInt("simulation.paths"); p > 0 {
		return p
	}
	return defaultPaths
}

// Defaults returns the category fallback statistics, overridable via
// simulation.default_return and simulation.default_stddev
func Defaults() (meanReturn, stdDev float64) {
	meanReturn = DefaultMeanReturn
	stdDev = DefaultStdDev
	if v := viper.GetFloat64("simulation.default_return"); v > 0 {
		meanReturn = v
	}
	if v := viper.GetFloat64("simulation.default_stddev"); v > 0 {
		stdDev = v
	}
	return meanReturn, stdDev
}

// Project simulates paths of annual compounding with lognormal shocks.
// The drift uses log1p of the mean return so a zero volatility input
// reproduces deterministic compounding exactly.
func Project(initial, meanReturn, stdDev float64, years, paths int) (*Projection, error) {
	if initial <= 0 {
		return nil, ErrInvalidAmount
	}
	if years < 1 {
		return nil, ErrInvalidHorizon
	}
	if years > MaxYears {
		return nil, ErrHorizonTooLong
	}
	if paths <= 0 {
		paths = defaultPaths
	}
	if stdDev < 0 {
		stdDev = 0
	}

	// each invocation owns its source; the distribution is not safe
	// for concurrent draws
	normal := distuv.Normal{
		Mu:    0,
		Sigma: 1,
		Src:   rand.NewSource(uint64(time.Now().UnixNano())),
	}

	drift := math.Log1p(meanReturn) - 0.5*stdDev*stdDev

	values := make([]float64, paths)
	for i := range values {
		values[i] = initial
	}

	proj := &Projection{
		InitialAmount: initial,
		Years:         years,
		Paths:         paths,
		MeanReturn:    meanReturn,
		StdDev:        stdDev,
		Timeline:      make([]Band, 0, years),
	}

	scratch := make([]float64, paths)
	for year := 1; year <= years; year++ {
		for i := range values {
			values[i] *= math.Exp(drift + stdDev*normal.Rand())
		}

		copy(scratch, values)
		sort.Float64s(scratch)

		p10 := percentile(scratch, 0.10)
		p50 := percentile(scratch, 0.50)
		p90 := percentile(scratch, 0.90)

		proj.Timeline = append(proj.Timeline, Band{
			Year:        year,
			Pessimistic: math.Round(p10),
			Expected:    math.Round(p50),
			Optimistic:  math.Round(p90),
		})

		if year == years {
			proj.Final = Band{
				Year:        year,
				Pessimistic: round2(p10),
				Expected:    round2(p50),
				Optimistic:  round2(p90),
			}
		}
	}

	return proj, nil
}

// percentile picks from a sorted sample by rank
func percentile(sorted []float64, p float64) float64 {
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
