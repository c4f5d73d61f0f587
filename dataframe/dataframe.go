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

package dataframe

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
)

// New creates an empty dataframe with the given columns
func New[T Index](colNames ...string) *DataFrame[T] {
	df := &DataFrame[T]{
		Index:    make([]T, 0),
		ColNames: colNames,
		Vals:     make([][]float64, len(colNames)),
	}
	for idx := range df.Vals {
		df.Vals[idx] = make([]float64, 0)
	}
	return df
}

// AsMap creates a map with the index as the key and the specified column as the value
func (df *DataFrame[T]) AsMap(colName string) map[T]float64 {
	res := make(map[T]float64, df.Len())
	colIdx := df.ColIndex(colName)
	if colIdx == -1 {
		// column does exist, return empty list
		return res
	}

	for idx, rowKey := range df.Index {
		res[rowKey] = df.Vals[colIdx][idx]
	}

	return res
}

// Get index of specified column; returns -1 if column doesn't exist
func (df *DataFrame[T]) ColIndex(colName string) int {
	for idx, val := range df.ColNames {
		if colName == val {
			return idx
		}
	}

	return -1
}

// ColCount returns the number of columns in the dataframe
func (df *DataFrame[T]) ColCount() int {
	return len(df.ColNames)
}

// Column returns the values of the named column or nil if it does not exist
func (df *DataFrame[T]) Column(colName string) []float64 {
	colIdx := df.ColIndex(colName)
	if colIdx == -1 {
		return nil
	}
	return df.Vals[colIdx]
}

// Copy creates a copy of the dataframe
func (df *DataFrame[T]) Copy() *DataFrame[T] {
	df2 := &DataFrame[T]{
		ColNames: make([]string, len(df.ColNames)),
		Index:    make([]T, len(df.Index)),
		Vals:     make([][]float64, len(df.Vals)),
	}

	copy(df2.ColNames, df.ColNames)
	copy(df2.Index, df.Index)

	for idx := range df2.Vals {
		df2.Vals[idx] = make([]float64, len(df.Vals[idx]))
		copy(df2.Vals[idx], df.Vals[idx])
	}

	return df2
}

// End returns the last time in the DataFrame
func (df *DataFrame[T]) End() time.Time {
	if len(df.Index) == 0 {
		return time.Time{}
	}

	if lastDate, ok := any(df.Index[len(df.Index)-1]).(time.Time); ok {
		return lastDate
	}

	return time.Time{}
}

// Ffill replaces NaN values with the last non-NaN value above them in the
// same column. Leading NaNs are left untouched. The dataframe is modified in
// place.
func (df *DataFrame[T]) Ffill() *DataFrame[T] {
	for _, col := range df.Vals {
		last := math.NaN()
		for rowIdx, val := range col {
			if math.IsNaN(val) {
				col[rowIdx] = last
			} else {
				last = val
			}
		}
	}
	return df
}

// Filter returns a new dataframe with only the rows for which keep returns true
func (df *DataFrame[T]) Filter(keep func(rowIdx int, idx T) bool) *DataFrame[T] {
	newIndex := make([]T, 0, len(df.Index))
	newVals := make([][]float64, len(df.ColNames))
	for colIdx := range newVals {
		newVals[colIdx] = make([]float64, 0, len(df.Index))
	}

	for rowIdx, idx := range df.Index {
		if !keep(rowIdx, idx) {
			continue
		}
		newIndex = append(newIndex, idx)
		for colIdx := range newVals {
			newVals[colIdx] = append(newVals[colIdx], df.Vals[colIdx][rowIdx])
		}
	}

	return &DataFrame[T]{
		Index:    newIndex,
		ColNames: df.ColNames,
		Vals:     newVals,
	}
}

// Frequency returns a data frame filtered to the requested frequency; note this is not
// an in-place function but creates a copy of the data. Periods are calendar based:
// MonthEnd keeps the last row present in each calendar month, MonthBegin the
// first, and so on.
//
// NOTE: If the dataframe's index is not time.Time then the function will throw an exception
func (df *DataFrame[T]) Frequency(frequency Frequency) *DataFrame[T] {
	var key func(time.Time) int
	begin := false

	switch frequency {
	case Daily:
		return df.Copy()
	case WeekBegin, WeekEnd:
		key = func(t time.Time) int {
			year, week := t.ISOWeek()
			return year*100 + week
		}
		begin = frequency == WeekBegin
	case MonthBegin, MonthEnd:
		key = func(t time.Time) int { return t.Year()*100 + int(t.Month()) }
		begin = frequency == MonthBegin
	case YearBegin, YearEnd:
		key = func(t time.Time) int { return t.Year() }
		begin = frequency == YearBegin
	default:
		log.Panic().Str("Frequency", string(frequency)).Msg("Unknown frequncy provided to dataframe frequency function")
	}

	return df.Filter(func(rowIdx int, idx T) bool {
		dt := any(idx).(time.Time)
		if begin {
			return rowIdx == 0 || key(any(df.Index[rowIdx-1]).(time.Time)) != key(dt)
		}
		return rowIdx == len(df.Index)-1 || key(any(df.Index[rowIdx+1]).(time.Time)) != key(dt)
	})
}

// Insert a new column to the end of the dataframe
func (df *DataFrame[T]) Insert(name string, col []float64) *DataFrame[T] {
	df.ColNames = append(df.ColNames, name)
	df.Vals = append(df.Vals, col)
	return df
}

// InsertRow adds a new row to the dataframe. Date must be after the last date in the dataframe and vals must equal the number
// of columns. If either of these conditions are not met then panic
func (df *DataFrame[T]) InsertRow(idx T, vals ...float64) *DataFrame[T] {
	df.checkAfterLast(idx)

	// Check that the number of columns equals the number of vals passed
	if len(vals) != len(df.ColNames) {
		log.Panic().Int("NumValsPassed", len(vals)).Int("NumColumns", len(df.ColNames)).Msg("number of vals passed must equal number of columns")
	}

	df.Index = append(df.Index, idx)
	for colIdx := range df.ColNames {
		df.Vals[colIdx] = append(df.Vals[colIdx], vals[colIdx])
	}

	return df
}

// InsertMap adds a new row to the dataframe. Date must be after the last date in the dataframe otherwise panic.
// Columns missing from vals are filled with NaN; additional keys in vals are ignored
func (df *DataFrame[T]) InsertMap(idx T, vals map[string]float64) *DataFrame[T] {
	df.checkAfterLast(idx)

	df.Index = append(df.Index, idx)
	for colIdx, colName := range df.ColNames {
		if val, ok := vals[colName]; ok {
			df.Vals[colIdx] = append(df.Vals[colIdx], val)
		} else {
			df.Vals[colIdx] = append(df.Vals[colIdx], math.NaN())
		}
	}

	return df
}

func (df *DataFrame[T]) checkAfterLast(idx T) {
	if len(df.Index) == 0 {
		return
	}

	if last, ok := any(df.Index[len(df.Index)-1]).(time.Time); ok {
		newDate := any(idx).(time.Time) // safe because if last is time.Time then idx must be time.Time
		if !last.Before(newDate) {
			log.Panic().Time("lastDate", last).Time("newDate", newDate).Msg("newDate must be after lastDate")
		}
	}
}

// Lag shifts the dataframe by the specified number of rows, replacing shifted values by math.NaN() and returns a new dataframe
func (df *DataFrame[T]) Lag(n int) *DataFrame[T] {
	df = df.Copy()
	prepend := make([]float64, n)
	for idx := range prepend {
		prepend[idx] = math.NaN()
	}

	for idx := range df.Vals {
		l := len(df.Vals[idx])
		df.Vals[idx] = append(prepend, df.Vals[idx]...)[:l] //nolint:makezero
	}
	return df
}

// Last returns a new dataframe with only the last item of the current dataframe
func (df *DataFrame[T]) Last() *DataFrame[T] {
	if df.Len() == 0 {
		return df
	}

	lastVals := make([][]float64, len(df.ColNames))
	lastRow := len(df.Index) - 1
	for idx, col := range df.Vals {
		lastVals[idx] = []float64{col[lastRow]}
	}

	newDf := &DataFrame[T]{
		ColNames: df.ColNames,
		Index:    []T{df.Index[len(df.Index)-1]},
		Vals:     lastVals,
	}

	return newDf
}

// Len returns the number of rows in the dataframe
func (df *DataFrame[T]) Len() int {
	return len(df.Index)
}

// Start returns the first date of the dataframe
func (df *DataFrame[T]) Start() time.Time {
	if len(df.Index) == 0 {
		return time.Time{}
	}

	if firstDate, ok := any(df.Index[0]).(time.Time); ok {
		return firstDate
	}

	return time.Time{}
}

// Table renders the dataframe as an ASCII formatted table
func (df *DataFrame[T]) Table() string {
	if len(df.Index) == 0 {
		return "<NO DATA>" // nothing to do as there is no data available in the dataframe
	}

	// construct table header
	tableCols := append([]string{"Index"}, df.ColNames...)

	// initialize table
	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader(tableCols)
	footer := make([]string, len(tableCols))
	footer[0] = "Num Rows"
	if len(footer) > 1 {
		footer[1] = fmt.Sprintf("%d", df.Len())
	}
	table.SetFooter(footer)
	table.SetBorder(false) // Set Border to false

	for idx, rowIdx := range df.Index {
		row := make([]string, 0, len(df.Vals)+1)

		if date, ok := any(rowIdx).(time.Time); ok {
			row = append(row, date.Format("2006-01-02"))
		} else {
			row = append(row, any(rowIdx).(string))
		}

		for _, col := range df.Vals {
			row = append(row, fmt.Sprintf("%.4f", col[idx]))
		}

		table.Append(row)
	}

	table.Render()
	return s.String()
}

// Trim the dataframe to the specified date range (inclusive)
// NOTE: If T is not time.Time then the dataframe is returned unchanged
func (df *DataFrame[T]) Trim(begin, end time.Time) *DataFrame[T] {
	df2 := &DataFrame[T]{
		ColNames: df.ColNames,
		Index:    df.Index,
		Vals:     make([][]float64, len(df.Vals)),
	}
	copy(df2.Vals, df.Vals)

	empty := func() *DataFrame[T] {
		df2.Index = []T{}
		for colIdx := range df2.Vals {
			df2.Vals[colIdx] = []float64{}
		}
		return df2
	}

	// special case 0: requested range is invalid
	if end.Before(begin) {
		return empty()
	}

	// special case 1: data frame is empty
	if df.Len() == 0 {
		return df2
	}

	// ensure that index is a date index
	first, ok := any(df.Index[0]).(time.Time)
	if !ok {
		return df2
	}
	last := any(df.Index[len(df.Index)-1]).(time.Time)

	// special case 2: requested range does not overlap the dataframe
	if end.Before(first) || begin.After(last) {
		return empty()
	}

	// Use binary search to find the index corresponding to the start and end times
	beginIdx := sort.Search(len(df.Index), func(i int) bool {
		return !any(df.Index[i]).(time.Time).Before(begin)
	})

	endIdx := sort.Search(len(df.Index), func(i int) bool {
		return any(df.Index[i]).(time.Time).After(end)
	})

	df2.Index = df.Index[beginIdx:endIdx]
	for colIdx, col := range df.Vals {
		df2.Vals[colIdx] = col[beginIdx:endIdx]
	}

	return df2
}
