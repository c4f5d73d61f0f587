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
	"time"

	"github.com/penny-vault/pv-tracker/dataframe"
	"github.com/rs/zerolog/log"
)

// PeriodSummary is the daily row at the close of a month or year together
// with the change over that period
type PeriodSummary struct {
	*DailyPerformance

	PeriodDeposits float64
	PeriodProfit   float64
	PeriodReturns  float64
	PeriodTWRR     float64
	PeriodMWRR     float64
}

// PeriodTable holds one summary per month or year. The last summary covers
// the period in progress.
type PeriodTable struct {
	Frequency dataframe.Frequency

	rows []*PeriodSummary
}

func newPeriodTable(daily *Table, frequency dataframe.Frequency) *PeriodTable {
	pt := &PeriodTable{
		Frequency: frequency,
		rows:      make([]*PeriodSummary, 0),
	}

	df, err := daily.DataFrame(MetricCapital, MetricProfit, MetricReturns, MetricTWRR, MetricMWRR)
	if err != nil {
		log.Panic().Err(err).Msg("period metrics missing from daily table")
	}

	checkpoints := df.Frequency(frequency)
	returns := RelativeRate(checkpoints.Column(MetricReturns))
	twrr := RelativeRate(checkpoints.Column(MetricTWRR))
	mwrr := RelativeRate(checkpoints.Column(MetricMWRR))

	var prevCapital, prevProfit float64
	for idx, day := range checkpoints.Index {
		row, ok := daily.On(day)
		if !ok {
			continue
		}

		pt.rows = append(pt.rows, &PeriodSummary{
			DailyPerformance: row,
			PeriodDeposits:   row.Capital - prevCapital,
			PeriodProfit:     row.Profit - prevProfit,
			PeriodReturns:    returns[idx],
			PeriodTWRR:       twrr[idx],
			PeriodMWRR:       mwrr[idx],
		})

		prevCapital = row.Capital
		prevProfit = row.Profit
	}

	return pt
}

// Len returns the number of periods
func (pt *PeriodTable) Len() int {
	return len(pt.rows)
}

// Rows returns every period ordered by day
func (pt *PeriodTable) Rows() []*PeriodSummary {
	return pt.rows
}

// Latest returns the summary of the current, possibly incomplete, period
func (pt *PeriodTable) Latest() *PeriodSummary {
	if len(pt.rows) == 0 {
		return nil
	}
	return pt.rows[len(pt.rows)-1]
}

// Previous returns the summary of the period before the current one or nil
// if there is none
func (pt *PeriodTable) Previous() *PeriodSummary {
	if len(pt.rows) < 2 {
		return nil
	}
	return pt.rows[len(pt.rows)-2]
}

// On returns the summary of the period containing day
func (pt *PeriodTable) On(day time.Time) (*PeriodSummary, bool) {
	for _, row := range pt.rows {
		if samePeriod(pt.Frequency, row.Day, day) {
			return row, true
		}
	}
	return nil, false
}

func samePeriod(frequency dataframe.Frequency, a, b time.Time) bool {
	switch frequency {
	case dataframe.YearBegin, dataframe.YearEnd:
		return a.Year() == b.Year()
	case dataframe.MonthBegin, dataframe.MonthEnd:
		return a.Year() == b.Year() && a.Month() == b.Month()
	default:
		return a.Equal(b)
	}
}
