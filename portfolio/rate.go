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

import "math"

const daysPerYear = 365.0

// RelativeRate de-compounds a cumulative rate series into per-period rates,
// i.e. (1+c[i])/(1+c[i-1]) - 1 with c[-1] = 0. A NaN start is treated as 0.
func RelativeRate(cum []float64) []float64 {
	res := make([]float64, len(cum))
	prev := 0.0
	for idx, val := range cum {
		if idx == 0 && math.IsNaN(val) {
			val = 0
		}
		res[idx] = (1+val)/(1+prev) - 1
		prev = val
	}
	return res
}

// CAGR calculates the compound annual growth rate of initial growing to
// final over years
func CAGR(initial, final, years float64) (float64, error) {
	if initial == 0 {
		return math.NaN(), ErrZeroInitialValue
	}

	if years == 0 {
		return math.NaN(), nil
	}

	return math.Pow(final/initial, 1/years) - 1, nil
}

// YearsFromDays converts a day count to fractional years
func YearsFromDays(days int) float64 {
	return float64(days) / daysPerYear
}

// annualize converts a cumulative rate to an annual rate. Rates covering a
// year or less are returned unchanged.
func annualize(rate, years float64) float64 {
	if years <= 1 {
		return rate
	}
	return math.Pow(1+rate, 1/years) - 1
}

// ratio returns NaN when den is zero
func ratio(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}
