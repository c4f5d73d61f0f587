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

package common

import (
	"time"

	"github.com/rs/zerolog/log"
)

const DayLayout = "2006-01-02"

// GetTimezone returns the exchange timezone used to decide what "today" is
func GetTimezone() *time.Location {
	tz, err := time.LoadLocation("America/Toronto")
	if err != nil {
		log.Panic().Err(err).Msg("could not load timezone")
	}
	return tz
}

// Day truncates t to a civil date. Days are always represented at midnight UTC
// so they can be used as map keys and compared with Equal.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewDay constructs a civil date
func NewDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today returns the current civil date in the exchange timezone
func Today() time.Time {
	return Day(time.Now().In(GetTimezone()))
}

// ParseDay parses a YYYY-MM-DD string
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// DaysBetween returns the number of whole days from a to b
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
