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

package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/data"
	"github.com/penny-vault/pv-tracker/data/database"
	"github.com/penny-vault/pv-tracker/portfolio"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// newProvider opens the configured data source: the TOML ledger when one is
// set, postgres otherwise. Results are cached in memory.
func newProvider(ctx context.Context) (data.Provider, error) {
	var provider data.Provider

	if fn := viper.GetString("ledger.path"); fn != "" {
		ledger, err := data.LoadLedger(fn)
		if err != nil {
			return nil, err
		}
		provider = ledger
	} else {
		if err := database.Connect(ctx); err != nil {
			log.Error().Err(err).Msg("database connection failed")
			return nil, err
		}
		provider = data.NewPvDb()
	}

	return data.NewCachedProvider(provider, viper.GetInt("cache.local_size"))
}

// buildPortfolio runs a reporting run over the configured accounts
func buildPortfolio(ctx context.Context) (*portfolio.Portfolio, error) {
	provider, err := newProvider(ctx)
	if err != nil {
		return nil, err
	}

	return runPortfolio(ctx, provider, data.ParseAccounts(viper.GetString("accounts")), common.Today())
}

// buildAccountPortfolios runs the configured accounts together and then each
// account on its own. Every run reads from the same cached provider, so the
// single account runs are answered from the results of the combined run.
func buildAccountPortfolios(ctx context.Context) (*portfolio.Portfolio, []*portfolio.Portfolio, error) {
	provider, err := newProvider(ctx)
	if err != nil {
		return nil, nil, err
	}

	today := common.Today()
	combined, err := runPortfolio(ctx, provider, data.ParseAccounts(viper.GetString("accounts")), today)
	if err != nil {
		return nil, nil, err
	}

	perAccount := make([]*portfolio.Portfolio, 0, len(combined.Accounts))
	for _, acct := range combined.Accounts {
		pf, err := runPortfolio(ctx, provider, []string{acct.Name}, today)
		if err != nil {
			return nil, nil, err
		}
		perAccount = append(perAccount, pf)
	}

	return combined, perAccount, nil
}

func runPortfolio(ctx context.Context, provider data.Provider, accounts []string, today time.Time) (*portfolio.Portfolio, error) {
	return portfolio.New(ctx, provider, portfolio.Options{
		Accounts:     accounts,
		Today:        today,
		RiskFreeRate: viper.GetFloat64("performance.risk_free_rate"),
	})
}

// formatMoney renders an amount in Canadian dollars
func formatMoney(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "-"
	}
	cents := decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
	return money.New(cents, money.CAD).Display()
}

func formatPercent(val float64) string {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", val*100)
}

func formatFloat(val float64) string {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return "-"
	}
	return fmt.Sprintf("%.4f", val)
}

func formatDay(day time.Time) string {
	if day.IsZero() {
		return "-"
	}
	return day.Format(common.DayLayout)
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.AppendBulk(rows)
	table.Render()
}

// jsonNumber replaces values that json cannot represent with nil
func jsonNumber(val float64) interface{} {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return nil
	}
	return val
}

func printJSON(w io.Writer, val interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(val)
}

func checkFormat(format string) error {
	switch strings.ToLower(format) {
	case formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q: expected %s or %s", format, formatTable, formatJSON)
	}
}
