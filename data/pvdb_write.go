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
	"errors"
	"math"

	"github.com/jackc/pgx/v4"
	"github.com/penny-vault/pv-tracker/data/database"
	"github.com/penny-vault/pv-tracker/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Assets returns the tickers that have quotes to be fetched; cash classes are
// excluded
func (p *PvDb) Assets(ctx context.Context) ([]string, error) {
	subLog := log.With().Logger()
	tickers := make([]string, 0, 16)
	err := p.query(ctx, "pvdb.Assets", subLog,
		"SELECT ticker FROM assets WHERE class NOT IN ('Cash', 'Domestic Cash') ORDER BY ticker",
		[]interface{}{},
		func(rows pgx.Rows) error {
			var ticker string
			if err := rows.Scan(&ticker); err != nil {
				return err
			}
			tickers = append(tickers, ticker)
			return nil
		})
	return tickers, err
}

// UpsertQuotes records quotes. A quote that does not exist yet is inserted;
// an existing close is only replaced when it differs by more than tolerance.
func (p *PvDb) UpsertQuotes(ctx context.Context, quotes []*Quote, tolerance float64) (inserted int, updated int, err error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "pvdb.UpsertQuotes")
	defer span.End()

	span.SetAttributes(attribute.Int("NumQuotes", len(quotes)))

	trx, err := database.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not get a database transaction")
		log.Error().Stack().Err(err).Msg("could not get a database transaction")
		return 0, 0, err
	}

	for _, quote := range quotes {
		subLog := log.With().Str("Ticker", quote.Ticker).Time("Day", quote.Day).Float64("Close", quote.Close).Logger()

		var old float64
		err = trx.QueryRow(ctx, "SELECT close FROM assetprices WHERE ticker = $1 AND day = $2", quote.Ticker, quote.Day).Scan(&old)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			if _, err = trx.Exec(ctx, "INSERT INTO assetprices (ticker, day, ask, bid, close) VALUES ($1, $2, $3, $3, $3) ON CONFLICT DO NOTHING",
				quote.Ticker, quote.Day, quote.Close); err != nil {
				break
			}
			subLog.Info().Msg("new quote")
			inserted++
		case err != nil:
		default:
			if math.Abs(old-quote.Close) <= tolerance {
				continue
			}
			if _, err = trx.Exec(ctx, "UPDATE assetprices SET ask = $3, bid = $3, close = $3 WHERE ticker = $1 AND day = $2",
				quote.Ticker, quote.Day, quote.Close); err != nil {
				break
			}
			subLog.Info().Float64("Previous", old).Msg("updated quote")
			updated++
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "could not save quote")
			subLog.Error().Stack().Err(err).Msg("could not save quote")
			if err := trx.Rollback(ctx); err != nil {
				log.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return 0, 0, err
		}
	}

	if err = trx.Commit(ctx); err != nil {
		span.RecordError(err)
		log.Error().Stack().Err(err).Msg("could not commit transaction")
		return 0, 0, err
	}

	return inserted, updated, nil
}

// SaveMarketDays inserts days that are not yet in the calendar and returns
// the number of rows added
func (p *PvDb) SaveMarketDays(ctx context.Context, days []*MarketDay) (int, error) {
	return p.insertEach(ctx, "pvdb.SaveMarketDays", len(days), func(trx pgx.Tx, idx int) (int64, error) {
		tag, err := trx.Exec(ctx, "INSERT INTO marketdays (day, open) VALUES ($1, $2) ON CONFLICT (day) DO NOTHING",
			days[idx].Day, days[idx].Open)
		return tag.RowsAffected(), err
	})
}

// SaveDistributions inserts per-unit distributions, skipping duplicates
func (p *PvDb) SaveDistributions(ctx context.Context, distributions []*Distribution) (int, error) {
	return p.insertEach(ctx, "pvdb.SaveDistributions", len(distributions), func(trx pgx.Tx, idx int) (int64, error) {
		d := distributions[idx]
		tag, err := trx.Exec(ctx, "INSERT INTO distributions (ticker, day, type, amount) VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING",
			d.Ticker, d.Day, d.Kind, d.Amount)
		return tag.RowsAffected(), err
	})
}

// SaveTransactions appends entries to the ledger
func (p *PvDb) SaveTransactions(ctx context.Context, txs []*Transaction) (int, error) {
	return p.insertEach(ctx, "pvdb.SaveTransactions", len(txs), func(trx pgx.Tx, idx int) (int64, error) {
		tx := txs[idx]
		tag, err := trx.Exec(ctx, `INSERT INTO transactions (day, txtype, account, source, target, units, unitprice, commission, total)
			VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9)`,
			tx.Day, string(tx.Kind), tx.Account, tx.Source, tx.Target, tx.Units, tx.UnitPrice, tx.Commission, tx.Total)
		return tag.RowsAffected(), err
	})
}

func (p *PvDb) insertEach(ctx context.Context, spanName string, n int, insert func(pgx.Tx, int) (int64, error)) (int, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, spanName)
	defer span.End()

	subLog := log.With().Str("Op", spanName).Int("NumRows", n).Logger()

	trx, err := database.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not get a database transaction")
		subLog.Error().Stack().Err(err).Msg("could not get a database transaction")
		return 0, err
	}

	var total int64
	for idx := 0; idx < n; idx++ {
		cnt, err := insert(trx, idx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "insert failed")
			subLog.Error().Stack().Err(err).Int("Row", idx).Msg("insert failed")
			if err := trx.Rollback(ctx); err != nil {
				subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return 0, err
		}
		total += cnt
	}

	if err := trx.Commit(ctx); err != nil {
		span.RecordError(err)
		subLog.Error().Stack().Err(err).Msg("could not commit transaction")
		return 0, err
	}

	subLog.Info().Int64("Inserted", total).Msg("saved rows")
	return int(total), nil
}
