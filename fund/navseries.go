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

import (
	"sort"
	"time"
)

// navDateFormats are tried in order when parsing history keys. The
// month-only format must come first so "2023-04" is not mangled by the
// day-first pattern.
var navDateFormats = []string{
	"2006-01",
	"02-01-2006",
	"2006-01-02",
	time.RFC3339,
}

// NavPoint is a single published NAV observation
type NavPoint struct {
	Date time.Time
	Nav  float64
}

// NavSeries is an immutable NAV history ordered by ascending date.
// Publication is irregular; consumers must not assume evenly spaced
// observations.
type NavSeries struct {
	points []NavPoint
}

// ParseNavHistory builds an ordered series from a raw history map.
// Entries with unparsable dates or non-positive values are dropped
// silently; the upstream scrapers routinely emit placeholder zeros.
func ParseNavHistory(raw map[string]any) NavSeries {
	points := make([]NavPoint, 0, len(raw))
	for k, v := range raw {
		date, ok := parseNavDate(k)
		if !ok {
			continue
		}
		nav, ok := coerceFloat(v)
		if !ok || nav <= 0 {
			continue
		}
		points = append(points, NavPoint{Date: date, Nav: nav})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return NavSeries{points: points}
}

func parseNavDate(s string) (time.Time, bool) {
	for _, layout := range navDateFormats {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func (s NavSeries) Len() int {
	return len(s.points)
}

// Points returns the ordered observations; callers must not modify
// the returned slice
func (s NavSeries) Points() []NavPoint {
	return s.points
}

// First returns the earliest observation
func (s NavSeries) First() (NavPoint, bool) {
	if len(s.points) == 0 {
		return NavPoint{}, false
	}
	return s.points[0], true
}

// Latest returns the most recent observation
func (s NavSeries) Latest() (NavPoint, bool) {
	if len(s.points) == 0 {
		return NavPoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// OnOrBefore returns the latest observation dated at or before target
func (s NavSeries) OnOrBefore(target time.Time) (NavPoint, bool) {
	idx := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].Date.After(target)
	})
	if idx == 0 {
		return NavPoint{}, false
	}
	return s.points[idx-1], true
}

// ClosestPrior resolves a reference observation for target: the latest
// point at or before it, falling back to the earliest point after it
// when the series begins later than target.
func (s NavSeries) ClosestPrior(target time.Time) (NavPoint, bool) {
	if p, ok := s.OnOrBefore(target); ok {
		return p, true
	}
	idx := sort.Search(len(s.points), func(i int) bool {
		return !s.points[i].Date.Before(target)
	})
	if idx < len(s.points) {
		return s.points[idx], true
	}
	return NavPoint{}, false
}

// MonthlyReturns computes simple returns between the last published
// NAV of each calendar month. At least two distinct months are
// required; otherwise the result is empty.
func (s NavSeries) MonthlyReturns() []float64 {
	monthEnds := s.monthEnds()
	if len(monthEnds) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(monthEnds)-1)
	for i := 1; i < len(monthEnds); i++ {
		prev := monthEnds[i-1].Nav
		returns = append(returns, monthEnds[i].Nav/prev-1)
	}
	return returns
}

// monthEnds returns the last observation of each calendar month, in
// ascending order. The series is already sorted so the last point seen
// for a month wins.
func (s NavSeries) monthEnds() []NavPoint {
	var out []NavPoint
	for _, p := range s.points {
		if len(out) > 0 && sameMonth(out[len(out)-1].Date, p.Date) {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
