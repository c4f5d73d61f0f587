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

import "time"

// Index is the set of types a dataframe may be keyed by
type Index interface {
	time.Time | string
}

// DataFrame stores a table of values organized by an index (typically a
// date). Vals is column major, e.g.:
//
//	Index       VCN.TO  VEE.TO
//	2017-03-02  30.00   29.00
//	2017-03-03  30.10   28.00
//
// Vals[0][1] = 30.10
// Vals[1][0] = 29.00
type DataFrame[T Index] struct {
	Index    []T
	ColNames []string
	Vals     [][]float64
}

// Defines a time period - typically used to filter a dataframe
type Frequency string

const (
	Daily      Frequency = "Daily"
	WeekBegin  Frequency = "WeekBegin"
	WeekEnd    Frequency = "WeekEnd"
	Weekly     Frequency = "WeekEnd"
	MonthBegin Frequency = "MonthBegin"
	MonthEnd   Frequency = "MonthEnd"
	Monthly    Frequency = "MonthEnd"
	YearBegin  Frequency = "YearBegin"
	YearEnd    Frequency = "YearEnd"
	Annually   Frequency = "YearEnd"
)
