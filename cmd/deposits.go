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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(depositsCmd)
}

var depositsCmd = &cobra.Command{
	Use:   "deposits",
	Short: "Print how each deposit has grown",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		pf, err := buildPortfolio(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute portfolio performance")
		}

		perfs := pf.DepositPerformances()
		rows := make([][]string, 0, len(perfs)+1)
		for _, perf := range perfs {
			rows = append(rows, []string{
				formatDay(perf.Day),
				formatMoney(perf.Amount),
				formatPercent(perf.Returns),
				formatMoney(perf.CurrentValue),
				formatPercent(perf.CAGR),
			})
		}
		rows = append(rows, []string{"Total", formatMoney(pf.Deposits().Total()), "", "", ""})

		renderTable(os.Stdout, []string{"Day", "Amount", "Returns", "Current Value", "CAGR"}, rows)
	},
}
