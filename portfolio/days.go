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
	"time"

	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/data"
)

// dayIndex is the ordered, gap-free calendar a reporting run is computed over
type dayIndex struct {
	days []time.Time
	open []bool
	pos  map[int64]int
}

func newDayIndex(marketDays []*data.MarketDay) *dayIndex {
	idx := &dayIndex{
		days: make([]time.Time, len(marketDays)),
		open: make([]bool, len(marketDays)),
		pos:  make(map[int64]int, len(marketDays)),
	}

	for ii, md := range marketDays {
		day := common.Day(md.Day)
		idx.days[ii] = day
		idx.open[ii] = md.Open
		idx.pos[day.Unix()] = ii
	}

	return idx
}

// validate checks the calendar covers [inception, yesterday] without gaps
func (idx *dayIndex) validate(inception, today time.Time) error {
	if len(idx.days) == 0 {
		return fmt.Errorf("%w: no market days loaded", ErrMarketDaysStartLate)
	}

	if idx.days[0].After(inception) {
		return fmt.Errorf("%w: first day %s, inception %s", ErrMarketDaysStartLate,
			idx.days[0].Format(common.DayLayout), inception.Format(common.DayLayout))
	}

	yesterday := today.AddDate(0, 0, -1)
	if idx.last().Before(yesterday) {
		return fmt.Errorf("%w: last day %s", ErrMarketDaysEndEarly, idx.last().Format(common.DayLayout))
	}

	for ii := 1; ii < len(idx.days); ii++ {
		if !idx.days[ii-1].AddDate(0, 0, 1).Equal(idx.days[ii]) {
			return fmt.Errorf("%w: %s is followed by %s", ErrMarketDaysGap,
				idx.days[ii-1].Format(common.DayLayout), idx.days[ii].Format(common.DayLayout))
		}
	}

	return nil
}

func (idx *dayIndex) len() int {
	return len(idx.days)
}

func (idx *dayIndex) first() time.Time {
	return idx.days[0]
}

func (idx *dayIndex) last() time.Time {
	return idx.days[len(idx.days)-1]
}

// lookup returns the row of day or false when day is out of range
func (idx *dayIndex) lookup(day time.Time) (int, bool) {
	ii, ok := idx.pos[common.Day(day).Unix()]
	return ii, ok
}

// rowFor maps a transaction day onto a row. Days before the first row fold
// into it; days after the last row are dropped.
func (idx *dayIndex) rowFor(day time.Time) (int, bool) {
	day = common.Day(day)
	if day.Before(idx.first()) {
		return 0, true
	}
	return idx.lookup(day)
}
