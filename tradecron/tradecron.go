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
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Modifiers anchor a schedule to the exchange calendar
const (
	AtOpen      = "@open"
	AtClose     = "@close"
	AtWeekBegin = "@weekbegin"
	AtMonthEnd  = "@monthend"
)

// MarketHours are expressed as HHMM in the exchange time zone
type MarketHours struct {
	Open  int
	Close int
}

// RegularHours of the Toronto Stock Exchange
var RegularHours = MarketHours{
	Open:  930,
	Close: 1600,
}

const maxScheduleIterations = 5000

// TradeCron is a cron schedule that only fires on exchange trading days
type TradeCron struct {
	Schedule       cron.Schedule
	ScheduleString string
	TimeSpec       string
	TimeFlag       string
	DateFlag       string
	marketStatus   *MarketStatus
}

// New parses a market aware schedule. Schedules use the standard cron
// fields Minute Hour DayOfMonth Month DayOfWeek; omitted trailing fields
// default to '*'.
//
// Plain schedules only fire while the market is open. Schedules anchored
// with @open or @close fire on any trading day, so a price update can run
// after the close. The anchor replaces the minute and hour fields, which
// then become an offset from the anchor.
//
//	@open      - market open, e.g. "@open 15" is 15 minutes after the open
//	@close     - market close, e.g. "@close 30 * * * 1-5"
//	@weekbegin - first trading day of the week
//	@monthend  - last trading day of the month
func New(cronSpec string, hours MarketHours) (*TradeCron, error) {
	tokens := strings.Split(expandBriefFormat(strings.TrimSpace(cronSpec)), " ")

	fields := make([]string, 0, 5)
	var timeFlag, dateFlag string
	for _, token := range tokens {
		switch token {
		case AtOpen, AtClose:
			if timeFlag != "" {
				return nil, ErrConflictingModifiers
			}
			timeFlag = token
		case AtWeekBegin, AtMonthEnd:
			if dateFlag != "" {
				return nil, ErrConflictingModifiers
			}
			dateFlag = token
		default:
			if token[0] == '@' {
				return nil, ErrUnknownModifier
			}
			fields = append(fields, token)
		}
	}

	timeSpec := strings.Join(fields, " ")
	var err error
	switch timeFlag {
	case AtOpen:
		timeSpec, err = parseTimeRelativeTo(fields, hours.Open/100, hours.Open%100)
	case AtClose:
		timeSpec, err = parseTimeRelativeTo(fields, hours.Close/100, hours.Close%100)
	}
	if err != nil {
		return nil, err
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(timeSpec)
	if err != nil {
		log.Error().Err(err).Str("TimeSpec", timeSpec).Str("TradeCronSpec", cronSpec).Msg("robfig/cron could not parse timespec")
		return nil, err
	}

	return &TradeCron{
		Schedule:       schedule,
		ScheduleString: cronSpec,
		TimeSpec:       timeSpec,
		TimeFlag:       timeFlag,
		DateFlag:       dateFlag,
		marketStatus:   NewMarketStatusWithHours(&hours),
	}, nil
}

// IsTradeDay is true when the schedule fires at some time on the day of
// forDate
func (tc *TradeCron) IsTradeDay(forDate time.Time) bool {
	day := tc.midnight(forDate)
	before := day.Add(-time.Nanosecond)
	return tc.midnight(tc.Next(before)).Equal(day)
}

// Next returns the first time after forDate the schedule fires
func (tc *TradeCron) Next(forDate time.Time) time.Time {
	checkDate := tc.fastForward(forDate)

	for iter := 0; ; iter++ {
		checkDate = tc.Schedule.Next(checkDate)
		if tc.runsAt(checkDate) {
			return checkDate
		}
		if iter > maxScheduleIterations {
			log.Panic().Str("TimeSpec", tc.TimeSpec).Msg("tradecron schedule never reaches a trading day")
		}
	}
}

// fastForward moves forDate to the start of the first day allowed by the
// date modifier when the cron schedule would fire earlier
func (tc *TradeCron) fastForward(forDate time.Time) time.Time {
	var target time.Time
	next := tc.Schedule.Next(forDate)

	switch tc.DateFlag {
	case AtWeekBegin:
		target = tc.marketStatus.NextFirstTradingDayOfWeek(forDate)
		if nextDay := tc.midnight(next); nextDay.After(target) {
			target = tc.marketStatus.NextFirstTradingDayOfWeek(nextDay)
		}
	case AtMonthEnd:
		target = tc.marketStatus.LastTradingDayOfMonth(next)
		if tc.midnight(next).After(target) {
			target = tc.marketStatus.LastTradingDayOfMonth(time.Date(next.Year(), next.Month(), 1, 0, 0, 0, 0, tc.marketStatus.tz).AddDate(0, 1, 0))
		}
	default:
		return forDate
	}

	if tc.midnight(next).Equal(target) {
		return forDate
	}
	return target
}

func (tc *TradeCron) midnight(t time.Time) time.Time {
	t = t.In(tc.marketStatus.tz)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, tc.marketStatus.tz)
}

// runsAt reports whether a time produced by the cron schedule is eligible
// to run given the market calendar
func (tc *TradeCron) runsAt(t time.Time) bool {
	if tc.TimeFlag != "" {
		return tc.marketStatus.IsMarketDay(t.In(tc.marketStatus.tz))
	}
	return tc.marketStatus.IsMarketOpen(t)
}
