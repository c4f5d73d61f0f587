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
	"regexp"
	"strconv"
	"time"

	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/data"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	settlementLayout = "2006-01-02 03:04:05 PM"
	exchangeSuffix   = ".TO"
)

var shareCountRe = regexp.MustCompile(`DIST ON (\d+) SHS`)

// ParseAccountCodes reads a csv with account_code and account_name columns
// and returns the name of each brokerage account number
func ParseAccountCodes(r io.Reader) (map[string]string, error) {
	tbl, err := newTable(r, "account_code", "account_name")
	if err != nil {
		return nil, err
	}

	codes := make(map[string]string)
	for {
		rec, err := tbl.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		code := rec.get("account_code")
		name := rec.get("account_name")
		if code == "" || name == "" {
			continue
		}
		codes[code] = name
	}

	return codes, nil
}

// ParseDividends converts a brokerage dividend export into dividend
// transactions. Each row pays cash into the account named by accountCodes;
// the paying ticker is the row's symbol on the Toronto exchange.
func ParseDividends(r io.Reader, accountCodes map[string]string) ([]*data.Transaction, error) {
	tbl, err := newTable(r, "Settlement Date", "Symbol", "Account #", "Description", "Price", "Net Amount")
	if err != nil {
		return nil, err
	}

	txs := make([]*data.Transaction, 0, 32)
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

		tx, err := parseDividend(rec, accountCodes)
		if err != nil {
			log.Error().Err(err).Int("Line", rec.line).Msg("could not parse dividend")
			return nil, err
		}
		txs = append(txs, tx)
	}

	log.Info().Int("NumDividends", len(txs)).Msg("parsed dividends")
	return txs, nil
}

func parseDividend(rec row, accountCodes map[string]string) (*data.Transaction, error) {
	settled, err := time.Parse(settlementLayout, rec.get("Settlement Date"))
	if err != nil {
		return nil, fmt.Errorf("%w: line %d: %s", ErrInvalidRow, rec.line, err.Error())
	}

	code := rec.get("Account #")
	account, ok := accountCodes[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q on line %d", ErrUnknownAccount, code, rec.line)
	}

	desc := rec.get("Description")
	match := shareCountRe.FindStringSubmatch(desc)
	if match == nil {
		return nil, fmt.Errorf("%w: %q on line %d", ErrNoShareCount, desc, rec.line)
	}
	shares, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q on line %d", ErrNoShareCount, desc, rec.line)
	}

	price, err := decimal.NewFromString(rec.get("Price"))
	if err != nil {
		return nil, fmt.Errorf("%w: price on line %d: %s", ErrInvalidRow, rec.line, err.Error())
	}

	net, err := decimal.NewFromString(rec.get("Net Amount"))
	if err != nil {
		return nil, fmt.Errorf("%w: net amount on line %d: %s", ErrInvalidRow, rec.line, err.Error())
	}

	return &data.Transaction{
		Day:       common.Day(settled),
		Kind:      data.DividendTransaction,
		Account:   account,
		Source:    rec.get("Symbol") + exchangeSuffix,
		Target:    common.CashTicker,
		Units:     float64(shares),
		UnitPrice: price.InexactFloat64(),
		Total:     net.InexactFloat64(),
	}, nil
}
