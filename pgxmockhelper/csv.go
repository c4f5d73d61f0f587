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

package pgxmockhelper

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pashagolub/pgxmock"
	"github.com/rs/zerolog/log"
)

// CSVRows is a set of mock database rows read from a CSV fixture
type CSVRows struct {
	rows    [][]any
	header  []string
	dateCol int
}

// NewCSVRows reads csvFn and converts the columns named in typeMap. Supported
// conversions are date, float64, int64, bool and string (the default).
func NewCSVRows(csvFn string, typeMap map[string]string) *CSVRows {
	subLog := log.With().Str("CsvFn", csvFn).Logger()

	rows := &CSVRows{
		dateCol: -1,
		rows:    make([][]any, 0),
	}
	rawData, err := os.ReadFile(csvFn)
	if err != nil {
		subLog.Panic().Err(err).Msg("could not read file")
	}

	// break raw data into an array of lines
	lines := strings.Split(string(rawData), "\n")

	// sanity checks:
	// - array length is at least 2 (header + trailing newline)
	// - make sure last line ends in newline
	if len(lines) < 2 {
		subLog.Panic().Int("NumLines", len(lines)).Msg("input file does not have enough lines, need at least 2 (header + trailing new line)")
	}
	if lines[len(lines)-1] != "" {
		subLog.Panic().Msg("input file is missing a trailing new line")
	}

	// parse header
	headerRaw := lines[0]
	lines = lines[1 : len(lines)-1] // discard first and last rows
	rows.header = strings.Split(headerRaw, ",")

	// parse each line and create a row
	for _, ll := range lines {
		cols := make([]any, len(rows.header))
		parts := strings.Split(ll, ",")
		for idx, val := range parts {
			colName := rows.header[idx]
			switch typeMap[colName] {
			case "date":
				parsed, err := time.Parse("2006-01-02", val)
				if err != nil {
					subLog.Panic().Err(err).Str("Val", val).Msg("could not convert val to datetime of format 2006-01-02")
				}
				cols[idx] = parsed
				rows.dateCol = idx
			case "float64":
				parsed, err := strconv.ParseFloat(val, 64)
				if err != nil {
					subLog.Panic().Err(err).Str("Val", val).Msg("could not convert val to float64")
				}
				cols[idx] = parsed
			case "int64":
				parsed, err := strconv.ParseInt(val, 10, 64)
				if err != nil {
					subLog.Panic().Err(err).Str("Val", val).Msg("could not convert val to int64")
				}
				cols[idx] = parsed
			case "bool":
				parsed, err := strconv.ParseBool(val)
				if err != nil {
					subLog.Panic().Err(err).Str("Val", val).Msg("could not convert val to bool")
				}
				cols[idx] = parsed
			default:
				// no type conversion specified - use as is
				cols[idx] = val
			}
		}
		rows.rows = append(rows.rows, cols)
	}

	return rows
}

// Between keeps rows whose date column falls in [a, b)
func (csvRows *CSVRows) Between(a time.Time, b time.Time) *CSVRows {
	newRows := make([][]any, 0, len(csvRows.rows))
	if len(csvRows.rows) == 0 {
		return csvRows
	}
	if csvRows.dateCol == -1 {
		log.Panic().Time("a", a).Time("b", b).Msg("no date column found")
	}
	for _, row := range csvRows.rows {
		t := row[csvRows.dateCol].(time.Time)
		if t.Before(b) && (t.After(a) || t.Equal(a)) {
			newRows = append(newRows, row)
		}
	}
	csvRows.rows = newRows
	return csvRows
}

// Len returns the number of rows
func (csvRows *CSVRows) Len() int {
	return len(csvRows.rows)
}

func (csvRows *CSVRows) Rows() *pgxmock.Rows {
	r := pgxmock.NewRows(csvRows.header)
	for _, row := range csvRows.rows {
		r.AddRow(row...)
	}
	return r
}

// MockQuery expects a single read-only transaction returning rows
func MockQuery(db pgxmock.PgxConnIface, sql string, rows *CSVRows) {
	db.ExpectBegin()
	db.ExpectQuery(sql).WillReturnRows(rows.Rows())
	db.ExpectCommit()
}

func MockAccounts(db pgxmock.PgxConnIface, fn string) {
	MockQuery(db, "SELECT name, accounttype, investor, datecreated FROM accounts",
		NewCSVRows(fn, map[string]string{
			"datecreated": "date",
		}))
}

func MockMarketDays(db pgxmock.PgxConnIface, fn string, begin, end time.Time) {
	MockQuery(db, "SELECT day, open FROM marketdays",
		NewCSVRows(fn, map[string]string{
			"day":  "date",
			"open": "bool",
		}).Between(begin, end))
}

func MockQuotes(db pgxmock.PgxConnIface, fn string, begin, end time.Time) {
	MockQuery(db, "SELECT ticker, day, close FROM assetprices",
		NewCSVRows(fn, map[string]string{
			"day":   "date",
			"close": "float64",
		}).Between(begin, end))
}

func MockDistributions(db pgxmock.PgxConnIface, fn string, begin, end time.Time) {
	MockQuery(db, "SELECT ticker, day, type, amount FROM distributions",
		NewCSVRows(fn, map[string]string{
			"day":    "date",
			"amount": "float64",
		}).Between(begin, end))
}

func MockTransactions(db pgxmock.PgxConnIface, fn string, end time.Time) {
	MockQuery(db, "SELECT day, txtype, account",
		NewCSVRows(fn, map[string]string{
			"day":        "date",
			"units":      "float64",
			"unitprice":  "float64",
			"commission": "float64",
			"total":      "float64",
		}).Between(time.Time{}, end))
}
