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

package importer_test

import (
	"errors"
	"os"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/data"
	"github.com/penny-vault/pv-tracker/importer"
)

func openFixture(fn string) *os.File {
	fh, err := os.Open(fn)
	if err != nil {
		panic(err)
	}
	return fh
}

var _ = Describe("Importer", func() {
	Describe("account codes", func() {
		It("maps account numbers to names and skips blank rows", func() {
			fh := openFixture("testdata/account_codes.csv")
			defer fh.Close()

			codes, err := importer.ParseAccountCodes(fh)
			Expect(err).NotTo(HaveOccurred())
			Expect(codes).To(Equal(map[string]string{
				"53XKQ1": "RRSP1",
				"53XKQ2": "TFSA1",
			}))
		})

		It("requires both columns", func() {
			_, err := importer.ParseAccountCodes(strings.NewReader("account_code\n53XKQ1\n"))
			Expect(errors.Is(err, importer.ErrMissingColumn)).To(BeTrue())
		})
	})

	Describe("dividends", func() {
		var codes map[string]string

		BeforeEach(func() {
			codes = map[string]string{"53XKQ1": "RRSP1", "53XKQ2": "TFSA1"}
		})

		It("creates a dividend transaction per row", func() {
			fh := openFixture("testdata/dividends.csv")
			defer fh.Close()

			txs, err := importer.ParseDividends(fh, codes)
			Expect(err).NotTo(HaveOccurred())
			Expect(txs).To(HaveLen(2))

			Expect(*txs[0]).To(Equal(data.Transaction{
				Day:       common.NewDay(2026, 1, 7),
				Kind:      data.DividendTransaction,
				Account:   "RRSP1",
				Source:    "VCN.TO",
				Target:    "Cash",
				Units:     52,
				UnitPrice: 0.293,
				Total:     15.24,
			}))

			Expect(txs[1].Account).To(Equal("TFSA1"))
			Expect(txs[1].Source).To(Equal("VEE.TO"))
			Expect(txs[1].Units).To(Equal(120.0))
			Expect(txs[1].Total).To(BeNumerically("~", 12.30, 1e-9))
		})

		It("produces transactions that pass validation", func() {
			fh := openFixture("testdata/dividends.csv")
			defer fh.Close()

			txs, err := importer.ParseDividends(fh, codes)
			Expect(err).NotTo(HaveOccurred())
			Expect(data.ValidateTransactions(txs)).To(BeEmpty())
		})

		It("fails on an unknown account", func() {
			fh := openFixture("testdata/dividends.csv")
			defer fh.Close()

			delete(codes, "53XKQ2")
			_, err := importer.ParseDividends(fh, codes)
			Expect(errors.Is(err, importer.ErrUnknownAccount)).To(BeTrue())
		})

		It("fails when the description has no share count", func() {
			doc := "Settlement Date,Symbol,Account #,Description,Price,Net Amount\n" +
				"2026-01-07 12:00:00 AM,VCN,53XKQ1,RETURN OF CAPITAL,0.293,15.24\n"
			_, err := importer.ParseDividends(strings.NewReader(doc), codes)
			Expect(errors.Is(err, importer.ErrNoShareCount)).To(BeTrue())
		})

		It("fails on a malformed settlement date", func() {
			doc := "Settlement Date,Symbol,Account #,Description,Price,Net Amount\n" +
				"2026-01-07,VCN,53XKQ1,DIST ON 52 SHS,0.293,15.24\n"
			_, err := importer.ParseDividends(strings.NewReader(doc), codes)
			Expect(errors.Is(err, importer.ErrInvalidRow)).To(BeTrue())
		})

		It("requires the settlement date column", func() {
			doc := "Symbol,Account #,Description,Price,Net Amount\n"
			_, err := importer.ParseDividends(strings.NewReader(doc), codes)
			Expect(errors.Is(err, importer.ErrMissingColumn)).To(BeTrue())
		})
	})

	Describe("distributions", func() {
		It("keeps rows on or after the cutoff", func() {
			fh := openFixture("testdata/distributions.csv")
			defer fh.Close()

			dists, err := importer.ParseDistributions(fh, common.NewDay(2016, 9, 8))
			Expect(err).NotTo(HaveOccurred())
			Expect(dists).To(HaveLen(3))

			Expect(*dists[0]).To(Equal(data.Distribution{
				Ticker: "VCN.TO",
				Day:    common.NewDay(2016, 9, 29),
				Kind:   "income",
				Amount: 0.171,
			}))
			Expect(dists[1].Kind).To(Equal("income"))
			Expect(dists[2].Kind).To(Equal("capital gain"))
		})

		It("rejects an invalid amount", func() {
			doc := "Ticker,Date,Type,Amount\nVCN.TO,2017-03-30,income,abc\n"
			_, err := importer.ParseDistributions(strings.NewReader(doc), common.NewDay(2016, 1, 1))
			Expect(errors.Is(err, importer.ErrInvalidRow)).To(BeTrue())
		})
	})
})
