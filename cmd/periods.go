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
	"os"
	"strings"

	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/portfolio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	periodsPeriod string
	periodsFormat string
)

func init() {
	periodsCmd.Flags().StringVar(&periodsPeriod, "period", "month", "Summarize by month or year")
	periodsCmd.Flags().StringVar(&periodsFormat, "format", formatTable, "Output format: table or json")
	rootCmd.AddCommand(periodsCmd)
}

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "Print monthly or yearly performance",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkFormat(periodsFormat); err != nil {
			log.Fatal().Err(err).Msg("invalid format")
		}

		pf, err := buildPortfolio(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute portfolio performance")
		}

		var table *portfolio.PeriodTable
		switch strings.ToLower(periodsPeriod) {
		case "month":
			table = pf.Monthly()
		case "year":
			table = pf.Yearly()
		default:
			log.Fatal().Str("Period", periodsPeriod).Msg("period must be month or year")
		}

		if strings.ToLower(periodsFormat) == formatJSON {
			records := make([]map[string]interface{}, 0, table.Len())
			for _, row := range table.Rows() {
				records = append(records, map[string]interface{}{
					"day":             row.Day.Format(common.DayLayout),
					"capital":         jsonNumber(row.Capital),
					"total_value":     jsonNumber(row.TotalValue),
					"deposits":        jsonNumber(row.PeriodDeposits),
					"profit":          jsonNumber(row.PeriodProfit),
					"returns":         jsonNumber(row.PeriodReturns),
					"twrr":            jsonNumber(row.PeriodTWRR),
					"mwrr":            jsonNumber(row.PeriodMWRR),
					"cumulative_twrr": jsonNumber(row.TWRR),
				})
			}
			if err := printJSON(os.Stdout, records); err != nil {
				log.Fatal().Err(err).Msg("could not write json")
			}
			return
		}

		rows := make([][]string, 0, table.Len())
		for _, row := range table.Rows() {
			rows = append(rows, []string{
				row.Day.Format(common.DayLayout),
				formatMoney(row.TotalValue),
				formatMoney(row.PeriodDeposits),
				formatMoney(row.PeriodProfit),
				formatPercent(row.PeriodReturns),
				formatPercent(row.PeriodTWRR),
				formatPercent(row.PeriodMWRR),
				formatPercent(row.TWRR),
			})
		}
		renderTable(os.Stdout, []string{"Period End", "Value", "Deposits", "Profit", "Returns", "TWRR", "MWRR", "Total TWRR"}, rows)
	},
}
