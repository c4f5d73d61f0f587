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
	"strings"

	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/portfolio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	dailyFrom    string
	dailyMetrics []string
	dailyFormat  string
)

func init() {
	dailyCmd.Flags().StringVar(&dailyFrom, "from", "", "First day to print specified as YYYY-MM-DD (default all days)")
	dailyCmd.Flags().StringSliceVar(&dailyMetrics, "metrics", []string{
		portfolio.MetricCapital, portfolio.MetricTotalValue, portfolio.MetricDayProfit,
		portfolio.MetricProfit, portfolio.MetricTWRR, portfolio.MetricMWRR,
	}, fmt.Sprintf("Metrics to print; one of %s", strings.Join(portfolio.Metrics, ", ")))
	dailyCmd.Flags().StringVar(&dailyFormat, "format", formatTable, "Output format: table or json")
	rootCmd.AddCommand(dailyCmd)
}

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Print daily performance metrics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkFormat(dailyFormat); err != nil {
			log.Fatal().Err(err).Msg("invalid format")
		}

		pf, err := buildPortfolio(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute portfolio performance")
		}

		df, err := pf.Daily().DataFrame(dailyMetrics...)
		if err != nil {
			log.Fatal().Err(err).Strs("Metrics", dailyMetrics).Msg("could not select metrics")
		}

		if dailyFrom != "" {
			from, err := common.ParseDay(dailyFrom)
			if err != nil {
				log.Fatal().Err(err).Str("InputStr", dailyFrom).Msg("could not parse from date - expected format 2006-01-02")
			}
			df = df.Trim(from, df.End())
		}

		if strings.ToLower(dailyFormat) == formatJSON {
			records := make([]map[string]interface{}, df.Len())
			for rowIdx, day := range df.Index {
				rec := map[string]interface{}{"day": day.Format(common.DayLayout)}
				for colIdx, name := range df.ColNames {
					rec[name] = jsonNumber(df.Vals[colIdx][rowIdx])
				}
				records[rowIdx] = rec
			}
			if err := printJSON(os.Stdout, records); err != nil {
				log.Fatal().Err(err).Msg("could not write json")
			}
			return
		}

		fmt.Println(df.Table())
	},
}
