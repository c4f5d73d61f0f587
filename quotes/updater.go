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

package quotes

import (
	"context"

	"github.com/penny-vault/pv-tracker/data"
	"github.com/penny-vault/pv-tracker/observability/opentelemetry"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Store lists the tickers to poll and records their quotes
type Store interface {
	Assets(ctx context.Context) ([]string, error)
	UpsertQuotes(ctx context.Context, quotes []*data.Quote, tolerance float64) (int, int, error)
}

// Fetcher downloads recent quotes
type Fetcher interface {
	FetchQuotes(ctx context.Context, symbols []string) ([]*Chart, error)
}

// Stats summarizes an update
type Stats struct {
	New     int
	Updated int
	Skipped int
}

// MarshalZerologObject implements the zerolog.LogObjectMarshaler interface
func (s *Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Int("New", s.New)
	e.Int("Updated", s.Updated)
	e.Int("Skipped", s.Skipped)
}

// Updater refreshes stored closing prices from a Fetcher
type Updater struct {
	store     Store
	fetcher   Fetcher
	tolerance float64
}

// NewUpdater creates an updater. Stored closes within tolerance of the
// fetched close are left alone.
func NewUpdater(store Store, fetcher Fetcher, tolerance float64) *Updater {
	return &Updater{
		store:     store,
		fetcher:   fetcher,
		tolerance: tolerance,
	}
}

// Update fetches quotes for every stored asset and records them. Quotes
// without a close, and closes that did not move by more than the tolerance,
// are counted as skipped. When some symbols fail to download the quotes
// of the others are still saved and the fetch error is returned.
func (u *Updater) Update(ctx context.Context) (*Stats, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "quotes.Update")
	defer span.End()

	stats := &Stats{}

	symbols, err := u.store.Assets(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not list assets")
		log.Error().Stack().Err(err).Msg("could not list assets")
		return stats, err
	}

	span.SetAttributes(attribute.Int("NumSymbols", len(symbols)))
	if len(symbols) == 0 {
		log.Info().Msg("no assets to update")
		return stats, nil
	}

	charts, fetchErr := u.fetcher.FetchQuotes(ctx, symbols)
	if fetchErr != nil {
		span.RecordError(fetchErr)
		log.Warn().Err(fetchErr).Int("NumCharts", len(charts)).Msg("some quotes could not be fetched")
	}

	quotes := make([]*data.Quote, 0, len(charts)*32)
	for _, chart := range charts {
		stats.Skipped += chart.Missing
		quotes = append(quotes, chart.Quotes...)
	}

	if len(quotes) > 0 {
		stats.New, stats.Updated, err = u.store.UpsertQuotes(ctx, quotes, u.tolerance)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "could not save quotes")
			log.Error().Stack().Err(err).Msg("could not save quotes")
			return &Stats{}, err
		}
		stats.Skipped += len(quotes) - stats.New - stats.Updated
	}

	if fetchErr != nil {
		span.SetStatus(codes.Error, "some quotes could not be fetched")
	}

	log.Info().Object("Stats", stats).Msg("finished updating prices")
	return stats, fetchErr
}
