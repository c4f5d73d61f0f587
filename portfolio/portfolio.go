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
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/data"
	"github.com/penny-vault/pv-tracker/dataframe"
	"github.com/penny-vault/pv-tracker/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Options select what a reporting run covers
type Options struct {
	// Accounts to include; empty selects every account
	Accounts []string

	// Today is the first day without confirmed closing prices. Rows run
	// through the day before. Defaults to the current day in the exchange
	// timezone.
	Today time.Time

	RiskFreeRate float64
}

// Portfolio is the result of a single reporting run. It is built once by New
// and not modified afterwards.
type Portfolio struct {
	ID        uuid.UUID
	Accounts  []*data.Account
	Inception time.Time

	days                *dayIndex
	tickers             *Tickers
	positions           *Positions
	deposits            *Deposits
	daily               *Table
	monthly             *PeriodTable
	yearly              *PeriodTable
	depositPerformances []*DepositPerformance
	warnings            []error
}

// New loads the inputs of the accounts in opts from provider and computes
// the daily, monthly, and yearly performance tables
func New(ctx context.Context, provider data.Provider, opts Options) (*Portfolio, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "portfolio.New")
	defer span.End()

	p := &Portfolio{
		ID: uuid.New(),
	}

	today := opts.Today
	if today.IsZero() {
		today = common.Today()
	}
	today = common.Day(today)

	subLog := log.With().Str("RunID", p.ID.String()).Time("Today", today).Logger()

	accounts, err := provider.Accounts(ctx, opts.Accounts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not load accounts")
		subLog.Error().Stack().Err(err).Msg("could not load accounts")
		return nil, err
	}

	if len(accounts) == 0 {
		span.RecordError(ErrNoAccounts)
		span.SetStatus(codes.Error, ErrNoAccounts.Error())
		subLog.Error().Strs("Accounts", opts.Accounts).Msg("no accounts found")
		return nil, ErrNoAccounts
	}

	p.Accounts = accounts
	names := data.AccountNames(accounts)
	p.Inception = common.Day(accounts[0].DateCreated)
	for _, acct := range accounts[1:] {
		if acct.DateCreated.Before(p.Inception) {
			p.Inception = common.Day(acct.DateCreated)
		}
	}

	span.SetAttributes(
		attribute.StringSlice("Accounts", names),
		attribute.String("Inception", p.Inception.Format(common.DayLayout)),
	)
	subLog = subLog.With().Strs("Accounts", names).Time("Inception", p.Inception).Logger()

	begin := p.Inception.AddDate(0, 0, -1)
	marketDays, err := provider.MarketDays(ctx, begin, today)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not load market days")
		subLog.Error().Stack().Err(err).Msg("could not load market days")
		return nil, err
	}

	p.days = newDayIndex(marketDays)
	if err := p.days.validate(p.Inception, today); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "market days are invalid")
		subLog.Error().Stack().Err(err).Msg("market days are invalid")
		return nil, err
	}

	quotes, err := provider.Quotes(ctx, begin, today)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not load quotes")
		subLog.Error().Stack().Err(err).Msg("could not load quotes")
		return nil, err
	}

	distributions, err := provider.Distributions(ctx, begin, today)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not load distributions")
		subLog.Error().Stack().Err(err).Msg("could not load distributions")
		return nil, err
	}

	txs, err := provider.Transactions(ctx, names, today)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not load transactions")
		subLog.Error().Stack().Err(err).Msg("could not load transactions")
		return nil, err
	}

	p.warnings = data.ValidateTransactions(txs)
	for _, problem := range p.warnings {
		subLog.Warn().Err(problem).Msg("ledger entry is inconsistent")
	}

	p.tickers = newTickers(p.days, tickerNames(quotes, txs), quotes, distributions)
	p.positions = newPositions(p.days, p.tickers, txs)
	p.deposits = newDeposits(p.days, txs)
	p.daily = newTable(p.days, p.Inception, p.deposits, p.positions, opts.RiskFreeRate)

	totalValues := make([]float64, p.daily.Len())
	for idx, row := range p.daily.rows {
		totalValues[idx] = row.TotalValue
	}
	p.positions.calcWeights(totalValues)

	p.monthly = newPeriodTable(p.daily, dataframe.MonthEnd)
	p.yearly = newPeriodTable(p.daily, dataframe.YearEnd)
	p.depositPerformances = p.deposits.performance(p.daily)

	subLog.Info().
		Int("NumDays", p.daily.Len()).
		Int("NumTickers", len(p.tickers.Names)).
		Int("NumPositions", len(p.positions.Tickers)).
		Int("NumTransactions", len(txs)).
		Msg("computed portfolio performance")

	return p, nil
}

func (p *Portfolio) Daily() *Table {
	return p.daily
}

func (p *Portfolio) Monthly() *PeriodTable {
	return p.monthly
}

func (p *Portfolio) Yearly() *PeriodTable {
	return p.yearly
}

// Latest returns the most recent daily row
func (p *Portfolio) Latest() *DailyPerformance {
	return p.daily.Latest()
}

// OnDay returns the daily row of day
func (p *Portfolio) OnDay(day time.Time) (*DailyPerformance, bool) {
	return p.daily.On(day)
}

// LastMonth returns the close of the previous month or nil if the run has not
// seen a month end yet
func (p *Portfolio) LastMonth() *PeriodSummary {
	return p.monthly.Previous()
}

// LastYear returns the close of the previous year or nil
func (p *Portfolio) LastYear() *PeriodSummary {
	return p.yearly.Previous()
}

// Allocations returns the weight of every position on the latest day
// including cash
func (p *Portfolio) Allocations() map[string]float64 {
	return p.positions.Weights(p.days.last())
}

func (p *Portfolio) Positions() *Positions {
	return p.positions
}

func (p *Portfolio) Tickers() *Tickers {
	return p.tickers
}

func (p *Portfolio) Deposits() *Deposits {
	return p.deposits
}

func (p *Portfolio) DepositPerformances() []*DepositPerformance {
	return p.depositPerformances
}

// Warnings returns the ledger inconsistencies found while loading
func (p *Portfolio) Warnings() []error {
	return p.warnings
}
