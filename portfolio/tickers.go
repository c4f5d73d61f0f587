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
	"math"
	"sort"
	"time"

	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/data"
	"github.com/penny-vault/pv-tracker/dataframe"
	"github.com/rs/zerolog/log"
)

// Tickers is the set of assets referenced by a reporting run
type Tickers struct {
	// Names is every ticker that was quoted, bought, or paid a distribution
	Names []string

	// Prices is the forward-filled price matrix, one column per ticker
	Prices *dataframe.DataFrame[time.Time]

	// Correlations is the Pearson correlation of forward-filled prices
	Correlations *dataframe.DataFrame[string]

	tickers map[string]*Ticker
}

// tickerNames collects every ticker referenced by quotes or transactions
func tickerNames(quotes []*data.Quote, txs []*data.Transaction) []string {
	set := make(map[string]bool)
	for _, q := range quotes {
		set[q.Ticker] = true
	}
	for _, tx := range txs {
		switch tx.Kind {
		case data.BuyTransaction:
			set[tx.Target] = true
		case data.DividendTransaction:
			set[tx.Source] = true
		}
	}

	delete(set, "")
	delete(set, common.CashTicker)

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newTickers(days *dayIndex, names []string, quotes []*data.Quote, distributions []*data.Distribution) *Tickers {
	raw := make([]map[string]float64, days.len())
	perUnit := make(map[string][]float64, len(names))
	for idx := range raw {
		raw[idx] = make(map[string]float64, len(names))
	}
	for _, name := range names {
		perUnit[name] = make([]float64, days.len())
	}

	for _, q := range quotes {
		if idx, ok := days.lookup(q.Day); ok {
			raw[idx][q.Ticker] = q.Close
		}
	}

	for _, d := range distributions {
		col, ok := perUnit[d.Ticker]
		if !ok {
			continue
		}
		if idx, ok := days.lookup(d.Day); ok {
			col[idx] += d.Amount
		}
	}

	prices := dataframe.New[time.Time](names...)
	for idx, day := range days.days {
		prices.InsertMap(day, raw[idx])
	}

	prices.Ffill()
	changes := prices.PctChange()
	volatility := changes.Filter(func(rowIdx int, _ time.Time) bool {
		return days.open[rowIdx]
	}).StdDev()

	t := &Tickers{
		Names:        names,
		Prices:       prices,
		Correlations: prices.Correlation(),
		tickers:      make(map[string]*Ticker, len(names)),
	}

	for _, name := range names {
		t.tickers[name] = newTicker(name, days, prices.Column(name), changes.Column(name), perUnit[name], volatility[name])
		log.Debug().Str("Ticker", name).Float64("Volatility", volatility[name]).Msg("loaded ticker")
	}

	return t
}

// Get returns the named ticker
func (t *Tickers) Get(name string) (*Ticker, bool) {
	ticker, ok := t.tickers[name]
	return ticker, ok
}

// Volatilities returns the volatility of every ticker keyed by name
func (t *Tickers) Volatilities() map[string]float64 {
	res := make(map[string]float64, len(t.tickers))
	for name, ticker := range t.tickers {
		res[name] = ticker.Volatility
	}
	return res
}

// Correlation returns the correlation of prices between a and b, NaN when
// either ticker is unknown
func (t *Tickers) Correlation(a, b string) float64 {
	row := t.Correlations.ColIndex(a)
	col := t.Correlations.ColIndex(b)
	if row == -1 || col == -1 {
		return math.NaN()
	}
	return t.Correlations.Vals[col][row]
}

// price returns the forward-filled price column of name or a column of NaN
// when the ticker was never quoted
func (t *Tickers) price(name string, n int) []float64 {
	if ticker, ok := t.tickers[name]; ok {
		return ticker.prices()
	}
	col := make([]float64, n)
	for idx := range col {
		col[idx] = math.NaN()
	}
	return col
}
