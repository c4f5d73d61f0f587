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
	"time"

	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/data"
	"github.com/penny-vault/pv-tracker/data/database"
	"github.com/penny-vault/pv-tracker/importer"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	importAccountCodes string
	importSince        string
	importDryRun       bool
)

func init() {
	importDividendsCmd.Flags().StringVar(&importAccountCodes, "account-codes", "data/account_codes.csv", "CSV mapping brokerage account numbers to account names")
	importDistributionsCmd.Flags().StringVar(&importSince, "since", "", "Skip distributions before this day specified as YYYY-MM-DD")
	importCmd.PersistentFlags().BoolVar(&importDryRun, "dry-run", false, "Parse and validate without saving")

	importCmd.AddCommand(importDividendsCmd)
	importCmd.AddCommand(importDistributionsCmd)
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load brokerage exports into the database",
}

var importDividendsCmd = &cobra.Command{
	Use:   "dividends <csv>",
	Short: "Import dividend payments as ledger transactions",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		codesFile, err := os.Open(importAccountCodes)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", importAccountCodes).Msg("could not open account codes")
		}
		defer codesFile.Close()

		codes, err := importer.ParseAccountCodes(codesFile)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", importAccountCodes).Msg("could not parse account codes")
		}

		fh, err := os.Open(args[0])
		if err != nil {
			log.Fatal().Err(err).Str("FileName", args[0]).Msg("could not open dividend file")
		}
		defer fh.Close()

		txs, err := importer.ParseDividends(fh, codes)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", args[0]).Msg("could not parse dividend file")
		}

		for _, problem := range data.ValidateTransactions(txs) {
			log.Warn().Err(problem).Msg("dividend does not reconcile")
		}

		if importDryRun {
			for _, tx := range txs {
				log.Info().Object("Transaction", tx).Msg("parsed dividend")
			}
			fmt.Printf("Parsed %d dividends\n", len(txs))
			return
		}

		ctx := context.Background()
		if err := database.Connect(ctx); err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}

		saved, err := data.NewPvDb().SaveTransactions(ctx, txs)
		if err != nil {
			log.Fatal().Err(err).Msg("could not save dividends")
		}
		fmt.Printf("Saved %d dividends\n", saved)
	},
}

var importDistributionsCmd = &cobra.Command{
	Use:   "distributions <csv>",
	Short: "Import per-unit distributions",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var since time.Time
		if importSince != "" {
			var err error
			since, err = common.ParseDay(importSince)
			if err != nil {
				log.Fatal().Err(err).Str("InputStr", importSince).Msg("could not parse since date - expected format 2006-01-02")
			}
		}

		fh, err := os.Open(args[0])
		if err != nil {
			log.Fatal().Err(err).Str("FileName", args[0]).Msg("could not open distribution file")
		}
		defer fh.Close()

		distributions, err := importer.ParseDistributions(fh, since)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", args[0]).Msg("could not parse distribution file")
		}

		if importDryRun {
			fmt.Printf("Parsed %d distributions\n", len(distributions))
			return
		}

		ctx := context.Background()
		if err := database.Connect(ctx); err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}

		saved, err := data.NewPvDb().SaveDistributions(ctx, distributions)
		if err != nil {
			log.Fatal().Err(err).Msg("could not save distributions")
		}
		fmt.Printf("Saved %d of %d distributions\n", saved, len(distributions))
	},
}
