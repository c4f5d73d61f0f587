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
	"math"
)

// ResultState distinguishes a computed value from the different reasons a
// value may be absent
type ResultState int

const (
	// Defined is a computed value
	Defined ResultState = iota
	// ZeroByDefinition is a value that is zero because nothing has happened
	// yet, e.g. units held before the first buy
	ZeroByDefinition
	// OutOfRange is returned for days outside of the loaded range
	OutOfRange
	// Undefined is a value that cannot be computed, e.g. cost per unit with
	// no units held or volatility with a single observation
	Undefined
)

// Result is the value of a metric on a given day
type Result struct {
	State ResultState
	Value float64
}

func definedResult(val float64) Result {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return Result{State: Undefined, Value: math.NaN()}
	}
	return Result{State: Defined, Value: val}
}

func zeroResult() Result {
	return Result{State: ZeroByDefinition}
}

func outOfRangeResult() Result {
	return Result{State: OutOfRange, Value: math.NaN()}
}

// Float returns the value of the result. ZeroByDefinition is 0 and absent
// values are NaN.
func (r Result) Float() float64 {
	switch r.State {
	case Defined:
		return r.Value
	case ZeroByDefinition:
		return 0
	default:
		return math.NaN()
	}
}

// IsDefined is true for Defined and ZeroByDefinition results
func (r Result) IsDefined() bool {
	return r.State == Defined || r.State == ZeroByDefinition
}

// IsZero is true for ZeroByDefinition results and Defined results equal to 0
func (r Result) IsZero() bool {
	return r.State == ZeroByDefinition || (r.State == Defined && r.Value == 0)
}

func (r Result) String() string {
	switch r.State {
	case Defined:
		return fmt.Sprintf("%g", r.Value)
	case ZeroByDefinition:
		return "0"
	case OutOfRange:
		return "out of range"
	default:
		return "undefined"
	}
}

func (s ResultState) String() string {
	switch s {
	case Defined:
		return "Defined"
	case ZeroByDefinition:
		return "ZeroByDefinition"
	case OutOfRange:
		return "OutOfRange"
	case Undefined:
		return "Undefined"
	default:
		return fmt.Sprintf("ResultState(%d)", int(s))
	}
}
