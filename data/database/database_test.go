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

package database_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock"

	"github.com/penny-vault/pv-tracker/data/database"
)

var _ = Describe("Database", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("refuses transactions before a pool is set", func() {
		database.SetPool(nil)
		Expect(database.Connected()).To(BeFalse())
		_, err := database.Begin(ctx)
		Expect(errors.Is(err, database.ErrNotConnected)).To(BeTrue())
	})

	Context("with a pool", func() {
		var dbPool pgxmock.PgxConnIface

		BeforeEach(func() {
			var err error
			dbPool, err = pgxmock.NewConn()
			Expect(err).To(BeNil())
			database.SetPool(dbPool)
		})

		AfterEach(func() {
			Expect(dbPool.ExpectationsWereMet()).To(Succeed())
		})

		It("passes statements through to the pool", func() {
			dbPool.ExpectBegin()
			dbPool.ExpectExec("INSERT INTO marketdays").WillReturnResult(pgxmock.NewResult("INSERT", 1))
			dbPool.ExpectCommit()

			trx, err := database.Begin(ctx)
			Expect(err).To(BeNil())
			tag, err := trx.Exec(ctx, "INSERT INTO marketdays (day, open) VALUES ($1, $2)", "2017-03-02", true)
			Expect(err).To(BeNil())
			Expect(tag.RowsAffected()).To(Equal(int64(1)))
			Expect(trx.Commit(ctx)).To(Succeed())
		})

		It("does not nest transactions", func() {
			dbPool.ExpectBegin()
			dbPool.ExpectRollback()

			trx, err := database.Begin(ctx)
			Expect(err).To(BeNil())
			_, err = trx.Begin(ctx)
			Expect(errors.Is(err, database.ErrUnsupported)).To(BeTrue())
			Expect(trx.Rollback(ctx)).To(Succeed())
		})
	})

	It("fails to migrate without a database url", func() {
		err := database.Migrate(database.Up)
		Expect(err).To(HaveOccurred())
	})
})
