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

package importer

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/data"
	"github.com/shopspring/decimal"
)

// ParseDistributions reads per-unit distributions from a csv with Ticker,
// Date, Type and Amount columns. Rows dated before since are dropped.
func ParseDistributions(r io.Reader, since time.Time) ([]*data.Distribution, error) {
	tbl, err := newTable(r, "Ticker", "Date", "Type", "Amount")
	if err != nil {
		return nil, err
	}

	since = common.Day(since)
	distributions := make([]*data.Distribution, 0, 64)
	for {
		rec, err := tbl.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if rec.empty() {
			continue
		}

		day, err := common.ParseDay(rec.get("Date"))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s", ErrInvalidRow, rec.line, err.Error())
		}
		if day.Before(since) {
			continue
		}

		amount, err := decimal.NewFromString(rec.get("Amount"))
		if err != nil {
			return nil, fmt.Errorf("%w: amount on line %d: %s", ErrInvalidRow, rec.line, err.Error())
		}

		kind := rec.get("Type")
		if kind == "" {
			kind = "income"
		}

		distributions = append(distributions, &data.Distribution{
			Ticker: rec.get("Ticker"),
			Day:    day,
			Kind:   kind,
			Amount: amount.InexactFloat64(),
		})
	}

	return distributions, nil
}
