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
	"os"
	"sort"

	"github.com/penny-vault/pv-tracker/common"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(allocationsCmd)
}

var allocationsCmd = &cobra.Command{
	Use:   "allocations",
	Short: "Print the weight, value, and returns of each holding",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		pf, err := buildPortfolio(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute portfolio performance")
		}

		latest := pf.Latest()
		weights := pf.Allocations()
		positions := pf.Positions()

		rows := make([][]string, 0, len(positions.Tickers)+1)
		for _, ticker := range positions.Tickers {
			pos, ok := positions.Get(ticker)
			if !ok {
				continue
			}
			day, ok := pos.On(latest.Day)
			if !ok {
				continue
			}
			rows = append(rows, []string{
				ticker,
				formatFloat(day.Units),
				formatMoney(day.CurrentPrice),
				formatMoney(day.MarketValue),
				formatMoney(day.OpenProfit),
				formatPercent(day.TotalReturns),
				formatPercent(weights[ticker]),
			})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })

		rows = append(rows, []string{
			common.CashTicker, "", "", formatMoney(latest.Cash), "", "", formatPercent(weights[common.CashTicker]),
		})

		fmt.Printf("Allocations as of %s\n\n", latest.Day.Format(common.DayLayout))
		renderTable(os.Stdout, []string{"Ticker", "Units", "Price", "Value", "Open Profit", "Returns", "Weight"}, rows)
	},
}
