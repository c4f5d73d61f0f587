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

import "time"

// holidayYears is the range of years tsxHolidays covers
const (
	firstHolidayYear = 2016
	lastHolidayYear  = 2027
)

// tsxHolidays lists the weekdays the Toronto Stock Exchange is closed
var tsxHolidays = map[string]bool{
	"2016-10-10": true, "2016-12-26": true, "2016-12-27": true,
	"2017-01-02": true, "2017-02-20": true, "2017-04-14": true, "2017-05-22": true,
	"2017-07-03": true, "2017-08-07": true, "2017-09-04": true, "2017-10-09": true,
	"2017-12-25": true, "2017-12-26": true,
	"2018-01-01": true, "2018-02-19": true, "2018-03-30": true, "2018-05-21": true,
	"2018-07-02": true, "2018-08-06": true, "2018-09-03": true, "2018-10-08": true,
	"2018-12-25": true, "2018-12-26": true,
	"2019-01-01": true, "2019-02-18": true, "2019-04-19": true, "2019-05-20": true,
	"2019-07-01": true, "2019-08-05": true, "2019-09-02": true, "2019-10-14": true,
	"2019-12-25": true, "2019-12-26": true,
	"2020-01-01": true, "2020-02-17": true, "2020-04-10": true, "2020-05-18": true,
	"2020-07-01": true, "2020-08-03": true, "2020-09-07": true, "2020-10-12": true,
	"2020-12-25": true, "2020-12-28": true,
	"2021-01-01": true, "2021-02-15": true, "2021-04-02": true, "2021-05-24": true,
	"2021-07-01": true, "2021-08-02": true, "2021-09-06": true, "2021-10-11": true,
	"2021-12-27": true, "2021-12-28": true,
	"2022-01-03": true, "2022-02-21": true, "2022-04-15": true, "2022-05-23": true,
	"2022-07-01": true, "2022-08-01": true, "2022-09-05": true, "2022-10-10": true,
	"2022-12-26": true, "2022-12-27": true,
	"2023-01-02": true, "2023-02-20": true, "2023-04-07": true, "2023-05-22": true,
	"2023-07-03": true, "2023-08-07": true, "2023-09-04": true, "2023-10-09": true,
	"2023-12-25": true, "2023-12-26": true,
	"2024-01-01": true, "2024-02-19": true, "2024-03-29": true, "2024-05-20": true,
	"2024-07-01": true, "2024-08-05": true, "2024-09-02": true, "2024-10-14": true,
	"2024-12-25": true, "2024-12-26": true,
	"2025-01-01": true, "2025-02-17": true, "2025-04-18": true, "2025-05-19": true,
	"2025-07-01": true, "2025-08-04": true, "2025-09-01": true, "2025-10-13": true,
	"2025-12-25": true, "2025-12-26": true,
	"2026-01-01": true, "2026-02-16": true, "2026-04-03": true, "2026-05-18": true,
	"2026-07-01": true, "2026-08-03": true, "2026-09-07": true, "2026-10-12": true,
	"2026-12-25": true, "2026-12-28": true,
	"2027-01-01": true, "2027-02-15": true, "2027-03-26": true, "2027-05-24": true,
	"2027-07-01": true, "2027-08-02": true, "2027-09-06": true, "2027-10-11": true,
	"2027-12-27": true, "2027-12-28": true,
}

// IsMarketHoliday returns true if the calendar date of t is an exchange holiday.
// Only the date fields of t are consulted.
func IsMarketHoliday(t time.Time) bool {
	return tsxHolidays[t.Format("2006-01-02")]
}

// HolidaysKnown is true when the holiday table covers the year of t. Outside
// those years only weekends are treated as closed.
func HolidaysKnown(t time.Time) bool {
	return t.Year() >= firstHolidayYear && t.Year() <= lastHolidayYear
}
