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
	"fmt"
	"math"
	"time"

	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/dataframe"
)

// DefaultRiskFreeRate is the default of the risk free rate setting. New
// uses Options.RiskFreeRate as given, so a zero rate stays zero.
const DefaultRiskFreeRate = 0.017

// Metric names accepted by Table.Value and Table.DataFrame
const (
	MetricDaysFromStart       = "days_from_start"
	MetricYearsFromStart      = "years_from_start"
	MetricDayDeposits         = "day_deposits"
	MetricCapital             = "capital"
	MetricAvgCapital          = "avg_capital"
	MetricPositionsCost       = "positions_cost"
	MetricPositionsValue      = "positions_value"
	MetricAppreciation        = "appreciation"
	MetricDividends           = "dividends"
	MetricCash                = "cash"
	MetricTotalValue          = "total_value"
	MetricDayProfit           = "day_profit"
	MetricDayReturns          = "day_returns"
	MetricProfit              = "profit"
	MetricAppreciationReturns = "appreciation_returns"
	MetricDistributionReturns = "distribution_returns"
	MetricReturns             = "returns"
	MetricTWRR                = "twrr"
	MetricTWRRAnnualized      = "twrr_annualized"
	MetricMWRR                = "mwrr"
	MetricMWRRAnnualized      = "mwrr_annualized"
	MetricVolatility          = "volatility"
	MetricTenK                = "10k_equivalent"
	MetricLastPeakTWRR        = "last_peak_twrr"
	MetricCurrentDrawdown     = "current_drawdown"
	MetricGreatestDrawdown    = "greatest_drawdown"
	MetricSharpe              = "sharpe"
)

// Metrics lists every metric of the daily table in display order
var Metrics = []string{
	MetricDaysFromStart, MetricYearsFromStart, MetricDayDeposits, MetricCapital, MetricAvgCapital,
	MetricPositionsCost, MetricPositionsValue, MetricAppreciation, MetricDividends, MetricCash,
	MetricTotalValue, MetricDayProfit, MetricDayReturns, MetricProfit, MetricAppreciationReturns,
	MetricDistributionReturns, MetricReturns, MetricTWRR, MetricTWRRAnnualized, MetricMWRR,
	MetricMWRRAnnualized, MetricVolatility, MetricTenK, MetricLastPeakTWRR, MetricCurrentDrawdown,
	MetricGreatestDrawdown, MetricSharpe,
}

// DailyPerformance is the state of the portfolio at the close of a day
type DailyPerformance struct {
	Day           time.Time
	Open          bool
	DaysFromStart int
	Years         float64

	DayDeposits float64
	Capital     float64
	AvgCapital  float64

	PositionsCost  float64
	PositionsValue float64
	Appreciation   float64
	Dividends      float64
	Cash           float64
	TotalValue     float64

	DayProfit           float64
	DayReturns          float64
	Profit              float64
	AppreciationReturns float64
	DistributionReturns float64
	Returns             float64

	TWRR           float64
	TWRRAnnualized float64
	MWRR           float64
	MWRRAnnualized float64
	Volatility     float64
	TenK           float64

	LastPeakTWRR          float64
	LastPeak              time.Time
	CurrentDrawdown       float64
	GreatestDrawdown      float64
	GreatestDrawdownStart time.Time
	GreatestDrawdownEnd   time.Time

	Sharpe float64
}

// Metric returns the named metric
func (d *DailyPerformance) Metric(name string) (float64, bool) {
	switch name {
	case MetricDaysFromStart:
		return float64(d.DaysFromStart), true
	case MetricYearsFromStart:
		return d.Years, true
	case MetricDayDeposits:
		return d.DayDeposits, true
	case MetricCapital:
		return d.Capital, true
	case MetricAvgCapital:
		return d.AvgCapital, true
	case MetricPositionsCost:
		return d.PositionsCost, true
	case MetricPositionsValue:
		return d.PositionsValue, true
	case MetricAppreciation:
		return d.Appreciation, true
	case MetricDividends:
		return d.Dividends, true
	case MetricCash:
		return d.Cash, true
	case MetricTotalValue:
		return d.TotalValue, true
	case MetricDayProfit:
		return d.DayProfit, true
	case MetricDayReturns:
		return d.DayReturns, true
	case MetricProfit:
		return d.Profit, true
	case MetricAppreciationReturns:
		return d.AppreciationReturns, true
	case MetricDistributionReturns:
		return d.DistributionReturns, true
	case MetricReturns:
		return d.Returns, true
	case MetricTWRR:
		return d.TWRR, true
	case MetricTWRRAnnualized:
		return d.TWRRAnnualized, true
	case MetricMWRR:
		return d.MWRR, true
	case MetricMWRRAnnualized:
		return d.MWRRAnnualized, true
	case MetricVolatility:
		return d.Volatility, true
	case MetricTenK:
		return d.TenK, true
	case MetricLastPeakTWRR:
		return d.LastPeakTWRR, true
	case MetricCurrentDrawdown:
		return d.CurrentDrawdown, true
	case MetricGreatestDrawdown:
		return d.GreatestDrawdown, true
	case MetricSharpe:
		return d.Sharpe, true
	default:
		return math.NaN(), false
	}
}

// dayInputs are the raw aggregates the fold consumes for one day
type dayInputs struct {
	day            time.Time
	open           bool
	deposits       float64
	positionsCost  float64
	positionsValue float64
	dividends      float64
}

// runningState is everything carried from one day to the next
type runningState struct {
	started    bool
	capital    float64
	capitalSum float64
	count      int
	totalValue float64
	twrr       float64

	// Welford accumulators over open-day returns
	obs        int
	mean       float64
	m2         float64
	volatility float64

	peakTenK         float64
	peakTWRR         float64
	peakDay          time.Time
	greatestDrawdown float64
	drawdownStart    time.Time
	drawdownEnd      time.Time
}

// step computes the row for in and the state carried to the next day. It
// never looks past in.
func (s runningState) step(in dayInputs, inception time.Time, riskFreeRate float64) (runningState, *DailyPerformance) {
	row := &DailyPerformance{
		Day:            in.day,
		Open:           in.open,
		DaysFromStart:  common.DaysBetween(inception, in.day) + 1,
		DayDeposits:    in.deposits,
		PositionsCost:  in.positionsCost,
		PositionsValue: in.positionsValue,
		Dividends:      in.dividends,
	}
	row.Years = YearsFromDays(row.DaysFromStart)

	s.capital += in.deposits
	s.capitalSum += s.capital
	s.count++
	row.Capital = s.capital
	row.AvgCapital = s.capitalSum / float64(s.count)

	row.Appreciation = in.positionsValue - in.positionsCost
	row.Cash = s.capital + in.dividends - in.positionsCost
	row.TotalValue = row.Cash + in.positionsValue

	if s.started {
		row.DayProfit = row.TotalValue - s.totalValue - in.deposits
		if s.totalValue != 0 {
			row.DayReturns = row.DayProfit / s.totalValue
		}
	}
	s.totalValue = row.TotalValue

	row.Profit = row.TotalValue - row.Capital
	row.AppreciationReturns = ratio(row.Appreciation, row.Capital)
	row.DistributionReturns = ratio(row.Dividends, row.Capital)
	row.Returns = ratio(row.Profit, row.Capital)

	if s.started {
		s.twrr = (1+s.twrr)*(1+row.DayReturns) - 1
	}
	row.TWRR = s.twrr
	row.TWRRAnnualized = annualize(row.TWRR, row.Years)
	row.MWRR = ratio(row.Profit, row.AvgCapital)
	row.MWRRAnnualized = annualize(row.MWRR, row.Years)

	if in.open {
		s.obs++
		delta := row.DayReturns - s.mean
		s.mean += delta / float64(s.obs)
		s.m2 += delta * (row.DayReturns - s.mean)
		if s.obs > 1 {
			s.volatility = math.Sqrt(s.m2 / float64(s.obs-1))
		}
	}
	if s.obs < 2 {
		s.volatility = math.NaN()
	}
	row.Volatility = s.volatility

	row.TenK = 10000 * (1 + row.TWRR)
	if !s.started || row.TenK > s.peakTenK {
		s.peakTenK = row.TenK
		s.peakTWRR = row.TWRR
		s.peakDay = row.Day
	}
	row.LastPeakTWRR = s.peakTWRR
	row.LastPeak = s.peakDay
	row.CurrentDrawdown = (row.TWRR - s.peakTWRR) / (1 + s.peakTWRR)

	if !s.started {
		s.greatestDrawdown = row.CurrentDrawdown
		s.drawdownStart = s.peakDay
		s.drawdownEnd = row.Day
	} else if row.CurrentDrawdown < s.greatestDrawdown {
		s.greatestDrawdown = row.CurrentDrawdown
		s.drawdownStart = s.peakDay
		s.drawdownEnd = row.Day
	}
	row.GreatestDrawdown = s.greatestDrawdown
	row.GreatestDrawdownStart = s.drawdownStart
	row.GreatestDrawdownEnd = s.drawdownEnd

	row.Sharpe = math.NaN()
	if !math.IsNaN(row.Volatility) && row.Volatility != 0 {
		row.Sharpe = (row.TWRR - riskFreeRate*row.Years) / row.Volatility
	}

	s.started = true
	return s, row
}

// Table is the daily performance of a portfolio, one row per day
type Table struct {
	days *dayIndex
	rows []*DailyPerformance
}

func newTable(days *dayIndex, inception time.Time, deposits *Deposits, positions *Positions, riskFreeRate float64) *Table {
	t := &Table{
		days: days,
		rows: make([]*DailyPerformance, 0, days.len()),
	}

	state := runningState{}
	for idx, day := range days.days {
		in := dayInputs{
			day:      day,
			open:     days.open[idx],
			deposits: deposits.amounts[idx],
		}
		if !positions.Empty() {
			in.positionsCost = positions.totalCost[idx]
			in.positionsValue = positions.totalValue[idx]
			in.dividends = positions.totalDistributions[idx]
		}

		var row *DailyPerformance
		state, row = state.step(in, inception, riskFreeRate)
		t.rows = append(t.rows, row)
	}

	return t
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns every row ordered by day
func (t *Table) Rows() []*DailyPerformance {
	return t.rows
}

// Latest returns the most recent row or nil when the table is empty
func (t *Table) Latest() *DailyPerformance {
	if len(t.rows) == 0 {
		return nil
	}
	return t.rows[len(t.rows)-1]
}

// On returns the row of day
func (t *Table) On(day time.Time) (*DailyPerformance, bool) {
	idx, ok := t.days.lookup(day)
	if !ok {
		return nil, false
	}
	return t.rows[idx], true
}

// Value returns metric on day
func (t *Table) Value(metric string, day time.Time) Result {
	row, ok := t.On(day)
	if !ok {
		return outOfRangeResult()
	}

	val, ok := row.Metric(metric)
	if !ok {
		return Result{State: Undefined, Value: math.NaN()}
	}
	return definedResult(val)
}

// DataFrame returns the requested metrics as columns of a dataframe. With no
// metrics every metric is included.
func (t *Table) DataFrame(metrics ...string) (*dataframe.DataFrame[time.Time], error) {
	if len(metrics) == 0 {
		metrics = Metrics
	}

	zero := &DailyPerformance{}
	for _, metric := range metrics {
		if _, ok := zero.Metric(metric); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
		}
	}

	df := dataframe.New[time.Time](metrics...)
	vals := make([]float64, len(metrics))
	for _, row := range t.rows {
		for idx, metric := range metrics {
			vals[idx], _ = row.Metric(metric)
		}
		df.InsertRow(row.Day, vals...)
	}

	return df, nil
}
