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

// Snapshot is the headline performance of a portfolio on its latest day
type Snapshot struct {
	Day            time.Time
	TotalValue     float64
	Profit         float64
	Returns        float64
	TWRR           float64
	TWRRAnnualized float64
	MWRR           float64
	MWRRAnnualized float64
	DayProfit      float64
	DayReturns     float64
	MonthProfit    float64
	MonthReturns   float64

	// LastMonthProfit and LastMonthReturns are the figures of the previous
	// completed month; NaN before the first month end
	LastMonthProfit  float64
	LastMonthReturns float64
}

// Snapshot summarizes the latest day. Month figures are measured against the
// close of the previous month; before the first month end they equal the
// lifetime figures.
func (p *Portfolio) Snapshot() *Snapshot {
	latest := p.Latest()
	if latest == nil {
		return nil
	}

	snap := &Snapshot{
		Day:            latest.Day,
		TotalValue:     latest.TotalValue,
		Profit:         latest.Profit,
		Returns:        latest.Returns,
		TWRR:           latest.TWRR,
		TWRRAnnualized: latest.TWRRAnnualized,
		MWRR:           latest.MWRR,
		MWRRAnnualized: latest.MWRRAnnualized,
		DayProfit:      latest.DayProfit,
		DayReturns:     latest.DayReturns,
		MonthProfit:    latest.Profit,
		MonthReturns:   latest.Returns,

		LastMonthProfit:  math.NaN(),
		LastMonthReturns: math.NaN(),
	}

	if lastMonth := p.LastMonth(); lastMonth != nil {
		snap.MonthProfit = latest.Profit - lastMonth.Profit
		snap.MonthReturns = ratio(snap.MonthProfit, lastMonth.TotalValue)
		snap.LastMonthProfit = lastMonth.PeriodProfit
		snap.LastMonthReturns = lastMonth.PeriodReturns
	}

	return snap
}
