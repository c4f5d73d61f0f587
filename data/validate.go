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

package data

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// totals are recorded to the cent
var totalTolerance = decimal.RequireFromString("0.005")

// ValidateTransactions checks each ledger entry for internal consistency.
// Every problem found is returned; an empty result means the ledger is clean.
func ValidateTransactions(txs []*Transaction) []error {
	problems := make([]error, 0)

	for idx, tx := range txs {
		day := tx.Day.Format("2006-01-02")
		total := decimal.NewFromFloat(tx.Total)

		switch tx.Kind {
		case DepositTransaction:
			if !total.IsPositive() {
				problems = append(problems, fmt.Errorf("%w: transaction %d on %s (%s)", ErrNonPositiveDeposit, idx, day, total))
			}
		case BuyTransaction:
			if tx.Target == "" {
				problems = append(problems, fmt.Errorf("%w: transaction %d on %s", ErrMissingTarget, idx, day))
			}
			expected := decimal.NewFromFloat(tx.Units).Mul(decimal.NewFromFloat(tx.UnitPrice)).Add(decimal.NewFromFloat(tx.Commission))
			if expected.Sub(total).Abs().GreaterThan(totalTolerance) {
				problems = append(problems, fmt.Errorf("%w: transaction %d on %s has total %s but units, price, and commission give %s",
					ErrInconsistentTotal, idx, day, total, expected))
			}
		case DividendTransaction:
			if tx.Source == "" {
				problems = append(problems, fmt.Errorf("%w: transaction %d on %s", ErrMissingSource, idx, day))
			}
			if tx.Units == 0 || tx.UnitPrice == 0 {
				continue
			}
			expected := decimal.NewFromFloat(tx.Units).Mul(decimal.NewFromFloat(tx.UnitPrice))
			if expected.Sub(total).Abs().GreaterThan(totalTolerance) {
				problems = append(problems, fmt.Errorf("%w: transaction %d on %s has total %s but units and distribution give %s",
					ErrInconsistentTotal, idx, day, total, expected))
			}
		default:
			problems = append(problems, fmt.Errorf("%w: transaction %d on %s has type %q", ErrUnknownTransaction, idx, day, tx.Kind))
		}
	}

	return problems
}
