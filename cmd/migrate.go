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
	"github.com/penny-vault/pv-tracker/data/database"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:       "migrate up|down",
	Short:     "Apply or revert the database schema",
	Args:      cobra.ExactValidArgs(1),
	ValidArgs: []string{string(database.Up), string(database.Down)},
	Run: func(cmd *cobra.Command, args []string) {
		if err := database.Migrate(database.Direction(args[0])); err != nil {
			log.Fatal().Err(err).Str("Direction", args[0]).Msg("migration failed")
		}
		log.Info().Str("Direction", args[0]).Msg("migration complete")
	},
}
