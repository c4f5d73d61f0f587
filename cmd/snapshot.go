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

	"github.com/penny-vault/pv-tracker/common"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var snapshotUpdate bool

func init() {
	snapshotCmd.Flags().BoolVar(&snapshotUpdate, "update", false, "Update prices before computing the snapshot")
	rootCmd.AddCommand(snapshotCmd)
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print the headline performance of the portfolio",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		if snapshotUpdate {
			if _, err := updatePrices(ctx); err != nil {
				log.Warn().Err(err).Msg("price update did not complete; continuing with stored prices")
			}
		}

		pf, accounts, err := buildAccountPortfolios(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute portfolio performance")
		}

		snap := pf.Snapshot()
		if snap == nil {
			log.Fatal().Msg("portfolio has no performance rows")
		}

		if lastMonth := pf.LastMonth(); lastMonth != nil {
			log.Debug().Object("LastMonth", lastMonth).Msg("month figures measured against")
		}

		rows := [][]string{
			{"Total value", formatMoney(snap.TotalValue)},
			{"Profit", formatMoney(snap.Profit)},
			{"Returns", formatPercent(snap.Returns)},
			{"TWRR", formatPercent(snap.TWRR)},
			{"TWRR (annualized)", formatPercent(snap.TWRRAnnualized)},
			{"MWRR", formatPercent(snap.MWRR)},
			{"MWRR (annualized)", formatPercent(snap.MWRRAnnualized)},
			{"Day profit", formatMoney(snap.DayProfit)},
			{"Day returns", formatPercent(snap.DayReturns)},
			{"Month profit", formatMoney(snap.MonthProfit)},
			{"Month returns", formatPercent(snap.MonthReturns)},
			{"Last month profit", formatMoney(snap.LastMonthProfit)},
			{"Last month returns", formatPercent(snap.LastMonthReturns)},
		}

		fmt.Printf("Portfolio as of %s\n\n", snap.Day.Format(common.DayLayout))
		renderTable(os.Stdout, []string{"Measure", "Value"}, rows)

		if len(accounts) > 1 {
			acctRows := make([][]string, 0, len(accounts))
			for _, acctPf := range accounts {
				acctSnap := acctPf.Snapshot()
				if acctSnap == nil {
					continue
				}
				acctRows = append(acctRows, []string{
					acctPf.Accounts[0].Name,
					formatMoney(acctSnap.TotalValue),
					formatMoney(acctSnap.Profit),
					formatPercent(acctSnap.Returns),
					formatPercent(acctSnap.TWRR),
					formatPercent(acctSnap.MWRR),
					formatMoney(acctSnap.MonthProfit),
				})
			}
			fmt.Println()
			renderTable(os.Stdout, []string{"Account", "Value", "Profit", "Returns", "TWRR", "MWRR", "Month Profit"}, acctRows)
		}

		for _, warning := range pf.Warnings() {
			fmt.Printf("warning: %s\n", warning.Error())
		}
	},
}
