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
	"time"

	"github.com/rs/zerolog"
)

type TransactionKind string

const (
	DepositTransaction  TransactionKind = "deposit"
	BuyTransaction      TransactionKind = "buy"
	DividendTransaction TransactionKind = "dividend"
)

// Account is a brokerage account; the earliest DateCreated of the accounts in
// scope is the inception date of a portfolio
type Account struct {
	Name        string
	AccountType string
	Investor    string
	DateCreated time.Time
}

// MarketDay is a calendar day and whether the exchange traded on it
type MarketDay struct {
	Day  time.Time
	Open bool
}

// Quote is the closing price of a ticker on a day
type Quote struct {
	Ticker string
	Day    time.Time
	Close  float64
}

// Distribution is a per-unit cash distribution paid by a ticker
type Distribution struct {
	Ticker string
	Day    time.Time
	Kind   string
	Amount float64
}

// Transaction is an immutable ledger entry. Deposits move cash into an
// account (Target is Cash), buys move cash into units of Target, and
// dividends move cash from Source (the paying ticker) into the account.
type Transaction struct {
	Day        time.Time
	Kind       TransactionKind
	Account    string
	Source     string
	Target     string
	Units      float64
	UnitPrice  float64
	Commission float64
	Total      float64
}

// MarshalZerologObject implements the zerolog.LogObjectMarshaler interface
func (t *Transaction) MarshalZerologObject(e *zerolog.Event) {
	e.Time("Day", t.Day)
	e.Str("Kind", string(t.Kind))
	e.Str("Account", t.Account)
	e.Str("Source", t.Source)
	e.Str("Target", t.Target)
	e.Float64("Units", t.Units)
	e.Float64("UnitPrice", t.UnitPrice)
	e.Float64("Commission", t.Commission)
	e.Float64("Total", t.Total)
}
