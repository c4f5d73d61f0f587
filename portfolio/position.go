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

	"github.com/penny-vault/pv-tracker/data"
)

// PositionDay is the state of a holding at the close of a day. Cumulative
// fields only ever grow since sells are not recorded in the ledger.
type PositionDay struct {
	Day                 time.Time
	Units               float64
	Cost                float64
	CostPerUnit         float64
	CurrentPrice        float64
	MarketValue         float64
	OpenProfit          float64
	Distributions       float64
	DistributionReturns float64
	AppreciationReturns float64
	TotalReturns        float64
	Weight              float64
}

// Position tracks a single ticker across the days of a reporting run
type Position struct {
	Ticker string

	days *dayIndex
	rows []*PositionDay
}

func newPosition(ticker string, days *dayIndex, prices []float64, txs []*data.Transaction) *Position {
	buyUnits := make([]float64, days.len())
	buyCost := make([]float64, days.len())
	dividends := make([]float64, days.len())

	for _, tx := range txs {
		idx, ok := days.rowFor(tx.Day)
		if !ok {
			continue
		}

		switch {
		case tx.Kind == data.BuyTransaction && tx.Target == ticker:
			buyUnits[idx] += tx.Units
			buyCost[idx] += tx.Total
		case tx.Kind == data.DividendTransaction && tx.Source == ticker:
			dividends[idx] += tx.Total
		}
	}

	pos := &Position{
		Ticker: ticker,
		days:   days,
		rows:   make([]*PositionDay, days.len()),
	}

	var units, cost, distributions float64
	for idx, day := range days.days {
		units += buyUnits[idx]
		cost += buyCost[idx]
		distributions += dividends[idx]

		row := &PositionDay{
			Day:           day,
			Units:         units,
			Cost:          cost,
			CostPerUnit:   ratio(cost, units),
			CurrentPrice:  prices[idx],
			MarketValue:   units * prices[idx],
			Distributions: distributions,
			Weight:        math.NaN(),
		}

		row.OpenProfit = row.MarketValue - cost
		row.DistributionReturns = ratio(distributions, cost)
		row.AppreciationReturns = ratio(row.OpenProfit, cost)
		row.TotalReturns = zeroNaN(row.DistributionReturns) + zeroNaN(row.AppreciationReturns)

		pos.rows[idx] = row
	}

	return pos
}

func zeroNaN(val float64) float64 {
	if math.IsNaN(val) {
		return 0
	}
	return val
}

// Rows returns the position on every day of the run
func (p *Position) Rows() []*PositionDay {
	return p.rows
}

// On returns the position at the close of day
func (p *Position) On(day time.Time) (*PositionDay, bool) {
	idx, ok := p.days.lookup(day)
	if !ok {
		return nil, false
	}
	return p.rows[idx], true
}

// value distinguishes days before anything was bought, where values are zero
// by definition, from computed values
func (p *Position) value(day time.Time, field func(*PositionDay) float64) Result {
	row, ok := p.On(day)
	if !ok {
		return outOfRangeResult()
	}

	val := field(row)
	if val == 0 && row.Units == 0 {
		return zeroResult()
	}
	return definedResult(val)
}

func (p *Position) Units(day time.Time) Result {
	return p.value(day, func(r *PositionDay) float64 { return r.Units })
}

func (p *Position) Cost(day time.Time) Result {
	return p.value(day, func(r *PositionDay) float64 { return r.Cost })
}

// CostPerUnit is undefined while no units are held
func (p *Position) CostPerUnit(day time.Time) Result {
	return p.value(day, func(r *PositionDay) float64 { return r.CostPerUnit })
}

func (p *Position) CurrentPrice(day time.Time) Result {
	return p.value(day, func(r *PositionDay) float64 { return r.CurrentPrice })
}

func (p *Position) MarketValue(day time.Time) Result {
	return p.value(day, func(r *PositionDay) float64 { return r.MarketValue })
}

func (p *Position) OpenProfit(day time.Time) Result {
	return p.value(day, func(r *PositionDay) float64 { return r.OpenProfit })
}

func (p *Position) Distributions(day time.Time) Result {
	return p.value(day, func(r *PositionDay) float64 { return r.Distributions })
}

func (p *Position) DistributionReturns(day time.Time) Result {
	return p.value(day, func(r *PositionDay) float64 { return r.DistributionReturns })
}

func (p *Position) AppreciationReturns(day time.Time) Result {
	return p.value(day, func(r *PositionDay) float64 { return r.AppreciationReturns })
}

// TotalReturns is the sum of distribution and appreciation returns, counting
// an undefined component as zero
func (p *Position) TotalReturns(day time.Time) Result {
	return p.value(day, func(r *PositionDay) float64 { return r.TotalReturns })
}

// Weight is the share of portfolio value held in this position
func (p *Position) Weight(day time.Time) Result {
	return p.value(day, func(r *PositionDay) float64 { return r.Weight })
}
