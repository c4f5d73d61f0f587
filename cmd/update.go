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
	"os/signal"
	"syscall"
	"time"

	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/data"
	"github.com/penny-vault/pv-tracker/data/database"
	"github.com/penny-vault/pv-tracker/quotes"
	"github.com/penny-vault/pv-tracker/tradecron"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var updateSchedule string

func init() {
	updatePricesCmd.Flags().StringVar(&updateSchedule, "schedule", "", "Keep running and update prices on a market aware cron schedule, e.g. '@close 30 * * *'")
	rootCmd.AddCommand(updatePricesCmd)
}

// updatePrices refreshes recent closes of every asset in the database
func updatePrices(ctx context.Context) (*quotes.Stats, error) {
	if err := database.Connect(ctx); err != nil {
		log.Error().Err(err).Msg("database connection failed")
		return nil, err
	}

	client := quotes.NewClient(
		viper.GetInt("quotes.lookback_days"),
		viper.GetDuration("quotes.timeout"),
		viper.GetFloat64("quotes.rate_limit"),
	)

	updater := quotes.NewUpdater(data.NewPvDb(), client, viper.GetFloat64("quotes.tolerance"))
	return updater.Update(ctx)
}

var updatePricesCmd = &cobra.Command{
	Use:   "update-prices",
	Short: "Download recent closing prices and record them in the database",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if updateSchedule == "" {
			stats, err := updatePrices(ctx)
			if err != nil {
				log.Fatal().Err(err).Msg("price update failed")
			}
			log.Info().Object("Stats", stats).Msg("prices updated")
			return
		}

		schedule, err := tradecron.New(updateSchedule, tradecron.RegularHours)
		if err != nil {
			log.Fatal().Err(err).Str("Schedule", updateSchedule).Msg("could not parse schedule")
		}

		for {
			next := schedule.Next(time.Now().In(common.GetTimezone()))
			log.Info().Time("NextRun", next).Msg("waiting for next price update")

			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				log.Info().Msg("stopping price updates")
				return
			case <-timer.C:
			}

			stats, err := updatePrices(ctx)
			if err != nil {
				log.Error().Err(err).Msg("price update failed")
				continue
			}
			log.Info().Object("Stats", stats).Msg("prices updated")
		}
	},
}
