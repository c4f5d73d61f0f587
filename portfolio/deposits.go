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

	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/data"
	"github.com/rs/zerolog/log"
)

// Deposits is the capital contributed on each day of a reporting run
type Deposits struct {
	days    *dayIndex
	amounts []float64
}

// DepositPerformance is how a single day's deposits have grown since they
// were made
type DepositPerformance struct {
	Day          time.Time
	Amount       float64
	Returns      float64
	CurrentValue float64
	CAGR         float64
}

func newDeposits(days *dayIndex, txs []*data.Transaction) *Deposits {
	d := &Deposits{
		days:    days,
		amounts: make([]float64, days.len()),
	}

	for _, tx := range txs {
		if tx.Kind != data.DepositTransaction {
			continue
		}
		if idx, ok := days.rowFor(tx.Day); ok {
			d.amounts[idx] += tx.Total
		}
	}

	return d
}

// Amount returns the sum of deposits made on day
func (d *Deposits) Amount(day time.Time) Result {
	idx, ok := d.days.lookup(day)
	if !ok {
		return outOfRangeResult()
	}
	if d.amounts[idx] == 0 {
		return zeroResult()
	}
	return definedResult(d.amounts[idx])
}

// Days returns the days on which a deposit was made
func (d *Deposits) Days() []time.Time {
	res := make([]time.Time, 0, 8)
	for idx, amount := range d.amounts {
		if amount != 0 {
			res = append(res, d.days.days[idx])
		}
	}
	return res
}

// Total is the sum of every deposit
func (d *Deposits) Total() float64 {
	total := 0.0
	for _, amount := range d.amounts {
		total += amount
	}
	return total
}

// performance measures every deposit day against the latest row of the
// daily table
func (d *Deposits) performance(table *Table) []*DepositPerformance {
	latest := table.Latest()
	if latest == nil {
		return nil
	}

	res := make([]*DepositPerformance, 0, 8)
	for idx, amount := range d.amounts {
		if amount == 0 {
			continue
		}

		row := table.rows[idx]
		returns := (1+latest.TWRR)/(1+row.TWRR) - 1
		current := amount * (1 + returns)
		years := YearsFromDays(common.DaysBetween(row.Day, latest.Day) + 1)

		cagr, err := CAGR(amount, current, years)
		if err != nil {
			log.Warn().Err(err).Time("Day", row.Day).Float64("Amount", amount).Msg("could not compute deposit CAGR")
		}

		res = append(res, &DepositPerformance{
			Day:          row.Day,
			Amount:       amount,
			Returns:      returns,
			CurrentValue: current,
			CAGR:         cagr,
		})
	}

	return res
}
