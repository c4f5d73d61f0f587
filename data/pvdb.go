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
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/data/database"
	"github.com/penny-vault/pv-tracker/observability/opentelemetry"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

type PvDb struct {
}

// NewPvDb Create a new postgres backed data provider
func NewPvDb() *PvDb {
	return &PvDb{}
}

// query runs sql in its own transaction and hands every row to scan. The
// transaction is rolled back on any error.
func (p *PvDb) query(ctx context.Context, spanName string, subLog zerolog.Logger, sql string, args []interface{}, scan func(pgx.Rows) error) error {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, spanName)
	defer span.End()

	trx, err := database.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not get a database transaction")
		subLog.Error().Stack().Err(err).Msg("could not get a database transaction")
		return err
	}

	rows, err := trx.Query(ctx, sql, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "database query failed")
		subLog.Error().Stack().Err(err).Str("SQL", sql).Msg("database query failed")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return err
	}

	for rows.Next() {
		if err = scan(rows); err != nil {
			rows.Close()
			span.RecordError(err)
			span.SetStatus(codes.Error, "could not scan database row")
			subLog.Error().Stack().Err(err).Str("SQL", sql).Msg("could not scan database row")
			if err := trx.Rollback(ctx); err != nil {
				subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return err
		}
	}

	if err = rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "database read failed")
		subLog.Error().Stack().Err(err).Str("SQL", sql).Msg("database read failed")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return err
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Warn().Stack().Err(err).Msg("could not commit transaction")
	}

	return nil
}

// Accounts returns the named accounts or every account when names is empty
func (p *PvDb) Accounts(ctx context.Context, names []string) ([]*Account, error) {
	subLog := log.With().Strs("Accounts", names).Logger()
	subLog.Debug().Msg("loading accounts")

	sql := "SELECT name, accounttype, investor, datecreated FROM accounts ORDER BY name"
	args := []interface{}{}
	if len(names) > 0 {
		sql = "SELECT name, accounttype, investor, datecreated FROM accounts WHERE name = ANY($1) ORDER BY name"
		args = append(args, names)
	}

	accounts := make([]*Account, 0, 4)
	err := p.query(ctx, "pvdb.Accounts", subLog, sql, args, func(rows pgx.Rows) error {
		acct := &Account{}
		if err := rows.Scan(&acct.Name, &acct.AccountType, &acct.Investor, &acct.DateCreated); err != nil {
			return err
		}
		acct.DateCreated = common.Day(acct.DateCreated)
		accounts = append(accounts, acct)
		return nil
	})

	return accounts, err
}

// MarketDays returns the market day calendar between begin and end
func (p *PvDb) MarketDays(ctx context.Context, begin, end time.Time) ([]*MarketDay, error) {
	subLog := log.With().Time("Begin", begin).Time("End", end).Logger()
	subLog.Debug().Msg("loading market days")

	if end.Before(begin) {
		subLog.Warn().Stack().Msg("end before begin in call to MarketDays")
		return nil, ErrInvalidTimeRange
	}

	days := make([]*MarketDay, 0, common.DaysBetween(begin, end))
	err := p.query(ctx, "pvdb.MarketDays", subLog,
		"SELECT day, open FROM marketdays WHERE day >= $1 AND day < $2 ORDER BY day",
		[]interface{}{begin, end},
		func(rows pgx.Rows) error {
			md := &MarketDay{}
			if err := rows.Scan(&md.Day, &md.Open); err != nil {
				return err
			}
			md.Day = common.Day(md.Day)
			days = append(days, md)
			return nil
		})

	return days, err
}

// Quotes returns every non-null close between begin and end
func (p *PvDb) Quotes(ctx context.Context, begin, end time.Time) ([]*Quote, error) {
	subLog := log.With().Time("Begin", begin).Time("End", end).Logger()
	subLog.Debug().Msg("loading quotes")

	if end.Before(begin) {
		subLog.Warn().Stack().Msg("end before begin in call to Quotes")
		return nil, ErrInvalidTimeRange
	}

	quotes := make([]*Quote, 0, 256)
	err := p.query(ctx, "pvdb.Quotes", subLog,
		"SELECT ticker, day, close FROM assetprices WHERE day >= $1 AND day < $2 AND close IS NOT NULL ORDER BY ticker, day",
		[]interface{}{begin, end},
		func(rows pgx.Rows) error {
			q := &Quote{}
			if err := rows.Scan(&q.Ticker, &q.Day, &q.Close); err != nil {
				return err
			}
			q.Day = common.Day(q.Day)
			quotes = append(quotes, q)
			return nil
		})

	return quotes, err
}

// Distributions returns per-unit distributions between begin and end
func (p *PvDb) Distributions(ctx context.Context, begin, end time.Time) ([]*Distribution, error) {
	subLog := log.With().Time("Begin", begin).Time("End", end).Logger()
	subLog.Debug().Msg("loading distributions")

	if end.Before(begin) {
		subLog.Warn().Stack().Msg("end before begin in call to Distributions")
		return nil, ErrInvalidTimeRange
	}

	distributions := make([]*Distribution, 0, 16)
	err := p.query(ctx, "pvdb.Distributions", subLog,
		"SELECT ticker, day, type, amount FROM distributions WHERE day >= $1 AND day < $2 ORDER BY ticker, day",
		[]interface{}{begin, end},
		func(rows pgx.Rows) error {
			d := &Distribution{}
			if err := rows.Scan(&d.Ticker, &d.Day, &d.Kind, &d.Amount); err != nil {
				return err
			}
			d.Day = common.Day(d.Day)
			distributions = append(distributions, d)
			return nil
		})

	return distributions, err
}

// Transactions returns ledger entries for accounts dated before end
func (p *PvDb) Transactions(ctx context.Context, accounts []string, end time.Time) ([]*Transaction, error) {
	subLog := log.With().Strs("Accounts", accounts).Time("End", end).Logger()
	subLog.Debug().Msg("loading transactions")

	txs := make([]*Transaction, 0, 64)
	err := p.query(ctx, "pvdb.Transactions", subLog,
		`SELECT day, txtype, account, COALESCE(source, ''), COALESCE(target, ''),
			COALESCE(units, 0), COALESCE(unitprice, 0), COALESCE(commission, 0), total
		FROM transactions WHERE account = ANY($1) AND day < $2 ORDER BY day, id`,
		[]interface{}{accounts, end},
		func(rows pgx.Rows) error {
			tx := &Transaction{}
			var kind string
			if err := rows.Scan(&tx.Day, &kind, &tx.Account, &tx.Source, &tx.Target,
				&tx.Units, &tx.UnitPrice, &tx.Commission, &tx.Total); err != nil {
				return err
			}
			tx.Day = common.Day(tx.Day)
			tx.Kind = TransactionKind(kind)
			txs = append(txs, tx)
			return nil
		})

	return txs, err
}
