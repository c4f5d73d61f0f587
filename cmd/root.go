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
	"fmt"
	"os"

	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/portfolio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func bindFlag(key, env, flag string) {
	if env != "" {
		if err := viper.BindEnv(key, env); err != nil {
			log.Panic().Err(err).Str("Key", key).Msg("could not bind environment variable")
		}
	}
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		log.Panic().Err(err).Str("Key", key).Msg("could not bind flag")
	}
}

func init() {
	// Logging configuration
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	bindFlag("log.level", "PVT_LOG_LEVEL", "log-level")

	rootCmd.PersistentFlags().String("log-output", "stderr", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	bindFlag("log.output", "PVT_LOG_OUTPUT", "log-output")

	rootCmd.PersistentFlags().Bool("log-pretty", true, "Format logs for people instead of machines")
	bindFlag("log.pretty", "PVT_LOG_PRETTY", "log-pretty")

	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	bindFlag("log.report_caller", "PVT_LOG_REPORT_CALLER", "log-report-caller")

	// Data sources
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string")
	bindFlag("database.url", "DATABASE_URL", "database-url")

	rootCmd.PersistentFlags().String("ledger", "", "TOML ledger to read instead of the database")
	bindFlag("ledger.path", "PVT_LEDGER", "ledger")

	rootCmd.PersistentFlags().String("accounts", "", "Comma separated list of accounts to report on (default all)")
	bindFlag("accounts", "PVT_ACCOUNTS", "accounts")

	rootCmd.PersistentFlags().Int("cache-size", 128, "Number of provider results to keep in memory")
	bindFlag("cache.local_size", "PVT_CACHE_SIZE", "cache-size")

	// Performance
	rootCmd.PersistentFlags().Float64("risk-free-rate", portfolio.DefaultRiskFreeRate, "Annual risk free rate used for the sharpe ratio")
	bindFlag("performance.risk_free_rate", "PVT_RISK_FREE_RATE", "risk-free-rate")

	// Quotes
	rootCmd.PersistentFlags().Int("lookback", 30, "Days of quote history to request")
	bindFlag("quotes.lookback_days", "", "lookback")

	viper.SetDefault("quotes.timeout", "5s")
	viper.SetDefault("quotes.rate_limit", 2.0)
	viper.SetDefault("quotes.tolerance", 0.0051)
}

var rootCmd = &cobra.Command{
	Use:     "pvtracker",
	Version: common.CurrentVersion.String(),
	Short:   "Track the daily performance of an investment portfolio",
	Long: `Compute daily, monthly, and yearly performance of a set of brokerage
accounts from their deposits, purchases, dividends, and closing prices.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
