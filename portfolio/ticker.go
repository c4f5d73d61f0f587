// Copyright 2021-2023
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

package portfolio

import (
	"math"
	"time"
)

// Ticker is the forward-filled price history of a single asset over the
// days of a reporting run
type Ticker struct {
	Name string

	// Volatility is the sample standard deviation of daily changes over
	// open market days
	Volatility float64

	days                   *dayIndex
	price                  []float64
	change                 []float64
	changeFromStart        []float64
	distribution           []float64
	distributionsFromStart []float64
}

func newTicker(name string, days *dayIndex, price, change, distribution []float64, volatility float64) *Ticker {
	t := &Ticker{
		Name:                   name,
		Volatility:             volatility,
		days:                   days,
		price:                  price,
		change:                 change,
		changeFromStart:        make([]float64, len(price)),
		distribution:           distribution,
		distributionsFromStart: make([]float64, len(price)),
	}

	start := math.NaN()
	for _, p := range price {
		if !math.IsNaN(p) {
			start = p
			break
		}
	}

	cum := 0.0
	for idx, p := range price {
		if math.IsNaN(start) {
			t.changeFromStart[idx] = 0
		} else {
			t.changeFromStart[idx] = p/start - 1
		}
		cum += distribution[idx]
		t.distributionsFromStart[idx] = cum
	}

	return t
}

func (t *Ticker) value(day time.Time, col func(int) float64) Result {
	idx, ok := t.days.lookup(day)
	if !ok {
		return outOfRangeResult()
	}
	return definedResult(col(idx))
}

// Price is the closing price on day, or the last close before it
func (t *Ticker) Price(day time.Time) Result {
	return t.value(day, func(idx int) float64 { return t.price[idx] })
}

// Change is the percent change in price from the previous day. It is
// undefined on the first priced day.
func (t *Ticker) Change(day time.Time) Result {
	return t.value(day, func(idx int) float64 { return t.change[idx] })
}

func (t *Ticker) ChangeFromStart(day time.Time) Result {
	return t.value(day, func(idx int) float64 { return t.changeFromStart[idx] })
}

// Distribution is the per-unit distribution paid on day
func (t *Ticker) Distribution(day time.Time) Result {
	return t.value(day, func(idx int) float64 { return t.distribution[idx] })
}

func (t *Ticker) DistributionsFromStart(day time.Time) Result {
	return t.value(day, func(idx int) float64 { return t.distributionsFromStart[idx] })
}

// YieldFromStart is the cumulative per-unit distributions relative to the
// price on day
func (t *Ticker) YieldFromStart(day time.Time) Result {
	return t.value(day, func(idx int) float64 { return t.distributionsFromStart[idx] / t.price[idx] })
}

// Returns is the total return including distributions since the first day
func (t *Ticker) Returns(day time.Time) Result {
	return t.value(day, func(idx int) float64 {
		return t.changeFromStart[idx] + t.distributionsFromStart[idx]/t.price[idx]
	})
}

// prices returns the forward-filled price column
func (t *Ticker) prices() []float64 {
	return t.price
}
