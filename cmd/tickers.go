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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tickersCmd)
}

var tickersCmd = &cobra.Command{
	Use:   "tickers",
	Short: "Print the returns and volatility of each ticker and their correlations",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		pf, err := buildPortfolio(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute portfolio performance")
		}

		latest := pf.Latest()
		tickers := pf.Tickers()

		rows := make([][]string, 0, len(tickers.Names))
		for _, name := range tickers.Names {
			ticker, ok := tickers.Get(name)
			if !ok {
				continue
			}
			rows = append(rows, []string{
				name,
				formatMoney(ticker.Price(latest.Day).Float()),
				formatPercent(ticker.ChangeFromStart(latest.Day).Float()),
				formatPercent(ticker.YieldFromStart(latest.Day).Float()),
				formatPercent(ticker.Returns(latest.Day).Float()),
				formatFloat(ticker.Volatility),
			})
		}
		renderTable(os.Stdout, []string{"Ticker", "Price", "Change", "Yield", "Returns", "Volatility"}, rows)

		if len(tickers.Names) > 1 {
			fmt.Println()
			fmt.Println("Correlation of closing prices")
			fmt.Println(tickers.Correlations.Table())
		}
	},
}
