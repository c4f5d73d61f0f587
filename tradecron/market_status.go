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

package tradecron

import (
	"time"

	"github.com/penny-vault/pv-tracker/common"
	"github.com/rs/zerolog/log"
)

type MarketStatus struct {
	marketHours *MarketHours
	tz          *time.Location
}

// Day is a single entry of the exchange calendar
type Day struct {
	Day  time.Time
	Open bool
}

// NewMarketStatus returns the exchange calendar with regular trading hours
func NewMarketStatus() *MarketStatus {
	return NewMarketStatusWithHours(&RegularHours)
}

func NewMarketStatusWithHours(hours *MarketHours) *MarketStatus {
	return &MarketStatus{
		marketHours: hours,
		tz:          common.GetTimezone(),
	}
}

// IsMarketHoliday returns true if the specified date is a market holiday
func (ms *MarketStatus) IsMarketHoliday(t time.Time) bool {
	return IsMarketHoliday(t)
}

// IsMarketDay returns true if the specified date is a valid trading day
// (i.e. not a market holiday or weekend)
func (ms *MarketStatus) IsMarketDay(t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}

	return !ms.IsMarketHoliday(t)
}

// IsMarketOpen returns true if the specified time is during market hours
// on a trading day
func (ms *MarketStatus) IsMarketOpen(t time.Time) bool {
	t = t.In(ms.tz)
	if !ms.IsMarketDay(t) {
		return false
	}

	timeOfDay := t.Hour()*100 + t.Minute()
	return timeOfDay >= ms.marketHours.Open && timeOfDay <= ms.marketHours.Close
}

// MarketDays lists every calendar day from begin to end inclusive along with
// whether the exchange was open. Days are returned at midnight UTC.
func (ms *MarketStatus) MarketDays(begin, end time.Time) []Day {
	begin = common.Day(begin)
	end = common.Day(end)

	if end.Before(begin) {
		return []Day{}
	}

	if !HolidaysKnown(begin) || !HolidaysKnown(end) {
		log.Warn().Time("Begin", begin).Time("End", end).
			Msg("market days fall outside the holiday calendar; holidays in those years are reported as open")
	}

	days := make([]Day, 0, common.DaysBetween(begin, end)+1)
	for dt := begin; !dt.After(end); dt = dt.AddDate(0, 0, 1) {
		days = append(days, Day{
			Day:  dt,
			Open: ms.IsMarketDay(dt),
		})
	}

	return days
}

// NextMarketDay returns the first trading day strictly after t
func (ms *MarketStatus) NextMarketDay(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
	for !ms.IsMarketDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// NextFirstTradingDayOfWeek returns the first trading day of the week
// beginning on or after t
func (ms *MarketStatus) NextFirstTradingDayOfWeek(t time.Time) time.Time {
	daysToWeekBegin := (8 - t.Weekday()) % 7
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, ms.tz).AddDate(0, 0, int(daysToWeekBegin))
	for !ms.IsMarketDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// LastTradingDayOfMonth returns the last trading day of the month t falls in
func (ms *MarketStatus) LastTradingDayOfMonth(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, ms.tz).AddDate(0, 1, -1)
	for !ms.IsMarketDay(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
