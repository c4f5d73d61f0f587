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
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/tradecron"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// amounts are decoded as decimals so integer and float literals are both accepted
type ledgerDoc struct {
	Accounts []struct {
		Name     string         `toml:"name"`
		Type     string         `toml:"type"`
		Investor string         `toml:"investor"`
		Created  toml.LocalDate `toml:"created"`
	} `toml:"accounts"`
	MarketDays []struct {
		Day  toml.LocalDate `toml:"day"`
		Open bool           `toml:"open"`
	} `toml:"market_days"`
	Prices []struct {
		Ticker string          `toml:"ticker"`
		Day    toml.LocalDate  `toml:"day"`
		Close  decimal.Decimal `toml:"close"`
	} `toml:"prices"`
	Distributions []struct {
		Ticker string          `toml:"ticker"`
		Day    toml.LocalDate  `toml:"day"`
		Type   string          `toml:"type"`
		Amount decimal.Decimal `toml:"amount"`
	} `toml:"distributions"`
	Transactions []struct {
		Day        toml.LocalDate  `toml:"day"`
		Type       string          `toml:"type"`
		Account    string          `toml:"account"`
		Source     string          `toml:"source"`
		Target     string          `toml:"target"`
		Units      decimal.Decimal `toml:"units"`
		UnitPrice  decimal.Decimal `toml:"unit_price"`
		Commission decimal.Decimal `toml:"commission"`
		Total      decimal.Decimal `toml:"total"`
	} `toml:"transactions"`
}

// Ledger is a Provider backed by a single TOML document. It is used for
// portfolios that are not kept in postgres and for fixtures in tests.
type Ledger struct {
	accounts      []*Account
	marketDays    []*MarketDay
	quotes        []*Quote
	distributions []*Distribution
	transactions  []*Transaction
	calendar      *tradecron.MarketStatus
}

// LoadLedger reads and parses a TOML ledger file
func LoadLedger(fn string) (*Ledger, error) {
	doc, err := os.ReadFile(fn)
	if err != nil {
		log.Error().Stack().Err(err).Str("FileName", fn).Msg("could not read ledger file")
		return nil, err
	}

	ledger, err := ParseLedger(doc)
	if err != nil {
		log.Error().Stack().Err(err).Str("FileName", fn).Msg("failed to parse toml file")
	}
	return ledger, err
}

// ParseLedger parses a TOML ledger document. When the document has no
// market_days the exchange calendar is used to generate them.
func ParseLedger(doc []byte) (*Ledger, error) {
	var raw ledgerDoc
	if err := toml.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLedger, err.Error())
	}

	ledger := &Ledger{}

	for _, acct := range raw.Accounts {
		ledger.accounts = append(ledger.accounts, &Account{
			Name:        acct.Name,
			AccountType: acct.Type,
			Investor:    acct.Investor,
			DateCreated: localDay(acct.Created),
		})
	}

	for _, md := range raw.MarketDays {
		ledger.marketDays = append(ledger.marketDays, &MarketDay{
			Day:  localDay(md.Day),
			Open: md.Open,
		})
	}
	sort.SliceStable(ledger.marketDays, func(i, j int) bool {
		return ledger.marketDays[i].Day.Before(ledger.marketDays[j].Day)
	})

	if len(ledger.marketDays) == 0 {
		ledger.calendar = tradecron.NewMarketStatus()
	}

	for _, price := range raw.Prices {
		ledger.quotes = append(ledger.quotes, &Quote{
			Ticker: price.Ticker,
			Day:    localDay(price.Day),
			Close:  price.Close.InexactFloat64(),
		})
	}
	sortQuotes(ledger.quotes)

	for _, dist := range raw.Distributions {
		kind := dist.Type
		if kind == "" {
			kind = "income"
		}
		ledger.distributions = append(ledger.distributions, &Distribution{
			Ticker: dist.Ticker,
			Day:    localDay(dist.Day),
			Kind:   kind,
			Amount: dist.Amount.InexactFloat64(),
		})
	}
	sortDistributions(ledger.distributions)

	for idx, tx := range raw.Transactions {
		kind := TransactionKind(tx.Type)
		switch kind {
		case DepositTransaction, BuyTransaction, DividendTransaction:
		default:
			return nil, fmt.Errorf("%w: transaction %d has type %q", ErrUnknownTransaction, idx, tx.Type)
		}

		ledger.transactions = append(ledger.transactions, &Transaction{
			Day:        localDay(tx.Day),
			Kind:       kind,
			Account:    tx.Account,
			Source:     tx.Source,
			Target:     tx.Target,
			Units:      tx.Units.InexactFloat64(),
			UnitPrice:  tx.UnitPrice.InexactFloat64(),
			Commission: tx.Commission.InexactFloat64(),
			Total:      tx.Total.InexactFloat64(),
		})
	}
	sort.SliceStable(ledger.transactions, func(i, j int) bool {
		return ledger.transactions[i].Day.Before(ledger.transactions[j].Day)
	})

	return ledger, nil
}

func localDay(d toml.LocalDate) time.Time {
	return common.NewDay(d.Year, time.Month(d.Month), d.Day)
}

// Accounts returns the named accounts or all accounts when names is empty
func (l *Ledger) Accounts(ctx context.Context, names []string) ([]*Account, error) {
	res := make([]*Account, 0, len(l.accounts))
	want := make(map[string]bool, len(names))
	for _, name := range names {
		want[name] = true
	}

	for _, acct := range l.accounts {
		if len(names) == 0 || want[acct.Name] {
			res = append(res, acct)
		}
	}

	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

// MarketDays returns the days listed in the ledger, or days generated by the
// exchange calendar when the ledger has none
func (l *Ledger) MarketDays(ctx context.Context, begin, end time.Time) ([]*MarketDay, error) {
	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	if l.calendar != nil {
		generated := l.calendar.MarketDays(begin, end.AddDate(0, 0, -1))
		res := make([]*MarketDay, len(generated))
		for idx, day := range generated {
			res[idx] = &MarketDay{Day: day.Day, Open: day.Open}
		}
		return res, nil
	}

	res := make([]*MarketDay, 0, len(l.marketDays))
	for _, md := range l.marketDays {
		if inRange(md.Day, begin, end) {
			res = append(res, md)
		}
	}
	return res, nil
}

func (l *Ledger) Quotes(ctx context.Context, begin, end time.Time) ([]*Quote, error) {
	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	res := make([]*Quote, 0, len(l.quotes))
	for _, q := range l.quotes {
		if inRange(q.Day, begin, end) {
			res = append(res, q)
		}
	}
	return res, nil
}

func (l *Ledger) Distributions(ctx context.Context, begin, end time.Time) ([]*Distribution, error) {
	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	res := make([]*Distribution, 0, len(l.distributions))
	for _, d := range l.distributions {
		if inRange(d.Day, begin, end) {
			res = append(res, d)
		}
	}
	return res, nil
}

func (l *Ledger) Transactions(ctx context.Context, accounts []string, end time.Time) ([]*Transaction, error) {
	want := make(map[string]bool, len(accounts))
	for _, name := range accounts {
		want[name] = true
	}

	res := make([]*Transaction, 0, len(l.transactions))
	for _, tx := range l.transactions {
		if want[tx.Account] && tx.Day.Before(end) {
			res = append(res, tx)
		}
	}
	return res, nil
}
