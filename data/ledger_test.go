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

package data_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-tracker/data"
)

const ledgerDoc = `
[[accounts]]
name = "TFSA1"
type = "TFSA"
investor = "Someone"
created = 2017-03-03

[[accounts]]
name = "RRSP1"
type = "RRSP"
investor = "Someone"
created = 2017-03-02

[[prices]]
ticker = "VCN.TO"
day = 2017-03-03
close = 30.10

[[prices]]
ticker = "VCN.TO"
day = 2017-03-02
close = 30.00

[[distributions]]
ticker = "VCN.TO"
day = 2017-03-03
amount = 0.1010

[[transactions]]
day = 2017-03-03
type = "buy"
account = "RRSP1"
source = "Cash"
target = "VCN.TO"
units = 100
unit_price = 30.10
commission = 0.35
total = 3010.35

[[transactions]]
day = 2017-03-02
type = "deposit"
account = "RRSP1"
target = "Cash"
total = 10000

[[transactions]]
day = 2017-03-06
type = "deposit"
account = "TFSA1"
target = "Cash"
total = 500
`

var _ = Describe("Ledger", func() {
	var (
		ledger *data.Ledger
		ctx    context.Context
	)

	BeforeEach(func() {
		var err error
		ledger, err = data.ParseLedger([]byte(ledgerDoc))
		Expect(err).To(BeNil())
		ctx = context.Background()
	})

	It("sorts accounts by name", func() {
		accounts, err := ledger.Accounts(ctx, nil)
		Expect(err).To(BeNil())
		Expect(data.AccountNames(accounts)).To(Equal([]string{"RRSP1", "TFSA1"}))
		Expect(accounts[0].DateCreated).To(BeTemporally("==", day(2017, 3, 2)))
	})

	It("filters accounts by name", func() {
		accounts, err := ledger.Accounts(ctx, []string{"TFSA1", "MISSING"})
		Expect(err).To(BeNil())
		Expect(accounts).To(HaveLen(1))
		Expect(accounts[0].AccountType).To(Equal("TFSA"))
	})

	It("generates market days from the exchange calendar", func() {
		days, err := ledger.MarketDays(ctx, day(2017, 3, 1), day(2017, 3, 7))
		Expect(err).To(BeNil())
		Expect(days).To(HaveLen(6))
		Expect(days[0].Day).To(BeTemporally("==", day(2017, 3, 1)))
		Expect(days[3].Open).To(BeFalse())
		Expect(days[5].Day).To(BeTemporally("==", day(2017, 3, 6)))
		Expect(days[5].Open).To(BeTrue())
	})

	It("orders quotes by ticker and day", func() {
		quotes, err := ledger.Quotes(ctx, day(2017, 3, 1), day(2017, 3, 7))
		Expect(err).To(BeNil())
		Expect(quotes).To(HaveLen(2))
		Expect(quotes[0].Day).To(BeTemporally("==", day(2017, 3, 2)))
		Expect(quotes[0].Close).To(Equal(30.00))
	})

	It("excludes quotes on the end day", func() {
		quotes, err := ledger.Quotes(ctx, day(2017, 3, 1), day(2017, 3, 3))
		Expect(err).To(BeNil())
		Expect(quotes).To(HaveLen(1))
	})

	It("defaults the distribution type to income", func() {
		distributions, err := ledger.Distributions(ctx, day(2017, 3, 1), day(2017, 3, 7))
		Expect(err).To(BeNil())
		Expect(distributions).To(HaveLen(1))
		Expect(distributions[0].Kind).To(Equal("income"))
	})

	It("filters transactions by account and day", func() {
		txs, err := ledger.Transactions(ctx, []string{"RRSP1"}, day(2017, 3, 7))
		Expect(err).To(BeNil())
		Expect(txs).To(HaveLen(2))
		Expect(txs[0].Kind).To(Equal(data.DepositTransaction))
		Expect(txs[1].Units).To(Equal(100.0))

		txs, err = ledger.Transactions(ctx, []string{"RRSP1", "TFSA1"}, day(2017, 3, 6))
		Expect(err).To(BeNil())
		Expect(txs).To(HaveLen(2))
	})

	It("rejects inverted ranges", func() {
		_, err := ledger.Quotes(ctx, day(2017, 3, 7), day(2017, 3, 1))
		Expect(errors.Is(err, data.ErrInvalidTimeRange)).To(BeTrue())
	})

	It("rejects unknown transaction types", func() {
		_, err := data.ParseLedger([]byte(`
[[transactions]]
day = 2017-03-02
type = "sell"
account = "RRSP1"
total = 1
`))
		Expect(errors.Is(err, data.ErrUnknownTransaction)).To(BeTrue())
	})

	It("rejects malformed documents", func() {
		_, err := data.ParseLedger([]byte("[[accounts]\nname = "))
		Expect(errors.Is(err, data.ErrInvalidLedger)).To(BeTrue())
	})

	It("reports a missing file", func() {
		_, err := data.LoadLedger("testdata/does-not-exist.toml")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ParseAccounts", func() {
	DescribeTable("splits account lists",
		func(input string, expected []string) {
			Expect(data.ParseAccounts(input)).To(Equal(expected))
		},
		Entry("empty selects all", "", nil),
		Entry("blank selects all", "  ", nil),
		Entry("only separators", ",,", nil),
		Entry("single", "RRSP1", []string{"RRSP1"}),
		Entry("trims whitespace", " RRSP1 , TFSA1", []string{"RRSP1", "TFSA1"}),
	)
})
