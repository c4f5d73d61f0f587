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
	"math"

	"gonum.org/v1/gonum/stat"
)

// PctChange computes the fractional change between each row and the row
// before it and returns a new dataframe. The first row, and any row
// adjacent to a NaN, is NaN.
func (df *DataFrame[T]) PctChange() *DataFrame[T] {
	res := df.Copy()
	for colIdx, col := range df.Vals {
		for rowIdx := range col {
			if rowIdx == 0 {
				res.Vals[colIdx][rowIdx] = math.NaN()
				continue
			}
			res.Vals[colIdx][rowIdx] = col[rowIdx]/col[rowIdx-1] - 1
		}
	}
	return res
}

// StdDev computes the sample standard deviation of each column, ignoring
// NaN values. Columns with fewer than 2 values are NaN.
func (df *DataFrame[T]) StdDev() map[string]float64 {
	res := make(map[string]float64, len(df.ColNames))
	for colIdx, colName := range df.ColNames {
		vals := make([]float64, 0, len(df.Index))
		for _, val := range df.Vals[colIdx] {
			if !math.IsNaN(val) {
				vals = append(vals, val)
			}
		}

		if len(vals) < 2 {
			res[colName] = math.NaN()
			continue
		}

		res[colName] = stat.StdDev(vals, nil)
	}
	return res
}

// Correlation computes the pairwise Pearson correlation between every pair
// of columns. Each pair only considers rows where both columns are defined;
// pairs with fewer than 2 such rows are NaN. The result is a square
// dataframe indexed by column name.
func (df *DataFrame[T]) Correlation() *DataFrame[string] {
	n := len(df.ColNames)
	res := &DataFrame[string]{
		Index:    make([]string, n),
		ColNames: make([]string, n),
		Vals:     make([][]float64, n),
	}
	copy(res.Index, df.ColNames)
	copy(res.ColNames, df.ColNames)

	for ii := range res.Vals {
		res.Vals[ii] = make([]float64, n)
	}

	for ii := 0; ii < n; ii++ {
		for jj := ii; jj < n; jj++ {
			corr := pairwiseCorrelation(df.Vals[ii], df.Vals[jj])
			if ii == jj && !math.IsNaN(corr) {
				corr = 1
			}
			res.Vals[ii][jj] = corr
			res.Vals[jj][ii] = corr
		}
	}

	return res
}

func pairwiseCorrelation(a, b []float64) float64 {
	x := make([]float64, 0, len(a))
	y := make([]float64, 0, len(b))
	for idx := range a {
		if math.IsNaN(a[idx]) || math.IsNaN(b[idx]) {
			continue
		}
		x = append(x, a[idx])
		y = append(y, b[idx])
	}

	if len(x) < 2 {
		return math.NaN()
	}

	if stat.StdDev(x, nil) == 0 || stat.StdDev(y, nil) == 0 {
		return math.NaN()
	}

	return stat.Correlation(x, y, nil)
}
