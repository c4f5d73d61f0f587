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
	"sort"
	"time"

	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/data"
	"gonum.org/v1/gonum/floats"
)

// Positions aggregates every held ticker into portfolio-wide totals
type Positions struct {
	// Tickers is the sorted list of tickers with a position
	Tickers []string

	days               *dayIndex
	positions          map[string]*Position
	totalCost          []float64
	totalValue         []float64
	totalDistributions []float64
}

// heldTickers returns the tickers that were bought or paid a dividend
func heldTickers(txs []*data.Transaction) []string {
	set := make(map[string]bool)
	for _, tx := range txs {
		switch tx.Kind {
		case data.BuyTransaction:
			set[tx.Target] = true
		case data.DividendTransaction:
			set[tx.Source] = true
		}
	}
	delete(set, "")
	delete(set, common.CashTicker)

	res := make([]string, 0, len(set))
	for ticker := range set {
		res = append(res, ticker)
	}
	sort.Strings(res)
	return res
}

func newPositions(days *dayIndex, tickers *Tickers, txs []*data.Transaction) *Positions {
	held := heldTickers(txs)
	p := &Positions{
		Tickers:            held,
		days:               days,
		positions:          make(map[string]*Position, len(held)),
		totalCost:          make([]float64, days.len()),
		totalValue:         make([]float64, days.len()),
		totalDistributions: make([]float64, days.len()),
	}

	for _, ticker := range held {
		p.positions[ticker] = newPosition(ticker, days, tickers.price(ticker, days.len()), txs)
	}

	cost := make([]float64, 0, len(held))
	value := make([]float64, 0, len(held))
	distributions := make([]float64, 0, len(held))
	for idx := range days.days {
		cost = cost[:0]
		value = value[:0]
		distributions = distributions[:0]
		for _, ticker := range held {
			row := p.positions[ticker].rows[idx]
			cost = appendDefined(cost, row.Cost)
			value = appendDefined(value, row.MarketValue)
			distributions = appendDefined(distributions, row.Distributions)
		}
		p.totalCost[idx] = floats.Sum(cost)
		p.totalValue[idx] = floats.Sum(value)
		p.totalDistributions[idx] = floats.Sum(distributions)
	}

	return p
}

// appendDefined drops NaN so sums only cover positions with a value
func appendDefined(vals []float64, val float64) []float64 {
	if math.IsNaN(val) {
		return vals
	}
	return append(vals, val)
}

// Empty is true when no ticker was ever held
func (p *Positions) Empty() bool {
	return len(p.positions) == 0
}

// Get returns the position of ticker
func (p *Positions) Get(ticker string) (*Position, bool) {
	pos, ok := p.positions[ticker]
	return pos, ok
}

func (p *Positions) TotalCost(day time.Time) Result {
	return p.total(day, p.totalCost)
}

func (p *Positions) TotalValue(day time.Time) Result {
	return p.total(day, p.totalValue)
}

func (p *Positions) TotalDistributions(day time.Time) Result {
	return p.total(day, p.totalDistributions)
}

func (p *Positions) total(day time.Time, col []float64) Result {
	idx, ok := p.days.lookup(day)
	if !ok {
		return outOfRangeResult()
	}
	if p.Empty() {
		return zeroResult()
	}
	return definedResult(col[idx])
}

// calcWeights back-fills the weight of every position once the portfolio's
// total value is known
func (p *Positions) calcWeights(totalValues []float64) {
	for _, pos := range p.positions {
		for idx, row := range pos.rows {
			row.Weight = ratio(row.MarketValue, totalValues[idx])
		}
	}
}

// Weights returns the weight of each position on day plus the implicit Cash
// position holding the remainder. Nil is returned for days outside the run.
func (p *Positions) Weights(day time.Time) map[string]float64 {
	idx, ok := p.days.lookup(day)
	if !ok {
		return nil
	}

	res := make(map[string]float64, len(p.positions)+1)
	invested := make([]float64, 0, len(p.positions))
	for ticker, pos := range p.positions {
		weight := pos.rows[idx].Weight
		res[ticker] = weight
		invested = appendDefined(invested, weight)
	}
	res[common.CashTicker] = 1 - floats.Sum(invested)

	return res
}
