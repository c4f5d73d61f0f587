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

	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/data"
	"github.com/penny-vault/pv-tracker/data/database"
	"github.com/penny-vault/pv-tracker/tradecron"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	marketDaysFrom string
	marketDaysTo   string
)

func init() {
	marketDaysPopulateCmd.Flags().StringVar(&marketDaysFrom, "from", "", "First day to add specified as YYYY-MM-DD")
	marketDaysPopulateCmd.Flags().StringVar(&marketDaysTo, "to", "", "Last day to add specified as YYYY-MM-DD (default today)")
	if err := marketDaysPopulateCmd.MarkFlagRequired("from"); err != nil {
		log.Panic().Err(err).Msg("could not mark from as required")
	}

	marketDaysCmd.AddCommand(marketDaysPopulateCmd)
	rootCmd.AddCommand(marketDaysCmd)
}

var marketDaysCmd = &cobra.Command{
	Use:   "market-days",
	Short: "Manage the exchange calendar",
}

var marketDaysPopulateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Add days from the exchange calendar to the database",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		from, err := common.ParseDay(marketDaysFrom)
		if err != nil {
			log.Fatal().Err(err).Str("InputStr", marketDaysFrom).Msg("could not parse from date - expected format 2006-01-02")
		}

		to := common.Today()
		if marketDaysTo != "" {
			to, err = common.ParseDay(marketDaysTo)
			if err != nil {
				log.Fatal().Err(err).Str("InputStr", marketDaysTo).Msg("could not parse to date - expected format 2006-01-02")
			}
		}

		if err := database.Connect(ctx); err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}

		generated := tradecron.NewMarketStatus().MarketDays(from, to)
		days := make([]*data.MarketDay, len(generated))
		for idx, day := range generated {
			days[idx] = &data.MarketDay{Day: day.Day, Open: day.Open}
		}

		inserted, err := data.NewPvDb().SaveMarketDays(ctx, days)
		if err != nil {
			log.Fatal().Err(err).Msg("could not save market days")
		}

		fmt.Printf("Added %d of %d days between %s and %s\n", inserted, len(days),
			from.Format(common.DayLayout), to.Format(common.DayLayout))
	},
}
