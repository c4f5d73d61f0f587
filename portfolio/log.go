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
	"github.com/rs/zerolog"
)

func (d *DailyPerformance) MarshalZerologObject(e *zerolog.Event) {
	e.Time("Day", d.Day).Bool("Open", d.Open).Int("DaysFromStart", d.DaysFromStart)
	e.Float64("DayDeposits", d.DayDeposits)
	e.Float64("Capital", d.Capital)
	e.Float64("PositionsCost", d.PositionsCost)
	e.Float64("PositionsValue", d.PositionsValue)
	e.Float64("Dividends", d.Dividends)
	e.Float64("Cash", d.Cash)
	e.Float64("TotalValue", d.TotalValue)
	e.Float64("DayProfit", d.DayProfit)
	e.Float64("DayReturns", d.DayReturns)
	e.Float64("TWRR", d.TWRR)
	e.Float64("MWRR", d.MWRR)
	e.Float64("Volatility", d.Volatility)
	e.Float64("CurrentDrawdown", d.CurrentDrawdown)
	e.Float64("GreatestDrawdown", d.GreatestDrawdown)
	e.Float64("Sharpe", d.Sharpe)
}

func (s *PeriodSummary) MarshalZerologObject(e *zerolog.Event) {
	e.Time("Day", s.Day).
		Float64("TotalValue", s.TotalValue).
		Float64("PeriodDeposits", s.PeriodDeposits).
		Float64("PeriodProfit", s.PeriodProfit).
		Float64("PeriodReturns", s.PeriodReturns).
		Float64("PeriodTWRR", s.PeriodTWRR).
		Float64("PeriodMWRR", s.PeriodMWRR)
}

func (o *DepositPerformance) MarshalZerologObject(e *zerolog.Event) {
	e.Time("Day", o.Day).Float64("Amount", o.Amount).Float64("Returns", o.Returns).Float64("CurrentValue", o.CurrentValue).Float64("CAGR", o.CAGR)
}
