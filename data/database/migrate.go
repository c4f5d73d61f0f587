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

package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

var (
	ErrUnknownDirection = errors.New("unknown migration direction")
)

// Migrate applies (or reverts) the embedded schema migrations against database.url
func Migrate(direction Direction) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not open embedded migrations")
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, viper.GetString("database.url"))
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not create migrator")
		return err
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("SourceErr", srcErr).AnErr("DatabaseErr", dbErr).Msg("could not close migrator")
		}
	}()

	switch direction {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownDirection, direction)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Str("Direction", string(direction)).Msg("schema already up to date")
		return nil
	}
	if err != nil {
		log.Error().Stack().Err(err).Str("Direction", string(direction)).Msg("migration failed")
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}
	log.Info().Uint("Version", version).Bool("Dirty", dirty).Msg("migration complete")
	return nil
}
