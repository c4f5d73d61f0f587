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

package main

import (
	"context"
	"errors"

	"github.com/joho/godotenv"
	"github.com/penny-vault/pv-tracker/cmd"
	"github.com/penny-vault/pv-tracker/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func configureViper() {
	// values in .env become environment variables; a missing file is fine
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	if err := viper.BindEnv("otlp.endpoint", "OTLP_ENDPOINT"); err != nil {
		log.Panic().Err(err).Msg("could not bind otlp.endpoint")
	}

	// read config file
	viper.SetConfigName("pvtracker")
	viper.SetConfigType("toml")
	viper.AddConfigPath("/etc/pvtracker/")
	viper.AddConfigPath("$HOME/.config/pvtracker")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal().Err(err).Msg("could not read config file")
		}
	}
}

func main() {
	configureViper()

	shutdown, err := opentelemetry.Setup()
	if err != nil {
		log.Error().Err(err).Msg("could not initialize tracing")
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("could not flush traces")
			}
		}()
	}

	cmd.Execute()
}
