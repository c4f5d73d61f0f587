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

package quotes_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/quotes"
)

func chartResponder(fn string) httpmock.Responder {
	content, err := os.ReadFile(fn)
	if err != nil {
		panic(err)
	}

	return func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("User-Agent") == "" || req.URL.Query().Get("interval") != "1d" {
			return httpmock.NewStringResponse(400, "bad request"), nil
		}
		return httpmock.NewBytesResponse(200, content), nil
	}
}

var _ = Describe("Client", func() {
	var (
		client *quotes.Client
	)

	BeforeEach(func() {
		client = quotes.NewClient(30, 5*time.Second, 0)
		httpmock.ActivateNonDefault(client.HTTPClient)
	})

	AfterEach(func() {
		httpmock.DeactivateAndReset()
	})

	Context("with a valid chart", func() {
		BeforeEach(func() {
			httpmock.RegisterResponder("GET", `=~^https://query2\.finance\.yahoo\.com/v8/finance/chart/VCN\.TO`,
				chartResponder("testdata/VCN.TO.json"))
		})

		It("returns one quote per day with a close", func() {
			charts, err := client.FetchQuotes(context.Background(), []string{"VCN.TO"})
			Expect(err).NotTo(HaveOccurred())
			Expect(charts).To(HaveLen(1))

			chart := charts[0]
			Expect(chart.Symbol).To(Equal("VCN.TO"))
			Expect(chart.Missing).To(Equal(1))
			Expect(chart.Quotes).To(HaveLen(2))

			Expect(chart.Quotes[0].Ticker).To(Equal("VCN.TO"))
			Expect(chart.Quotes[0].Day).To(Equal(common.NewDay(2017, 3, 2)))
			Expect(chart.Quotes[0].Close).To(BeNumerically("~", 28.95, 1e-9))
			Expect(chart.Quotes[1].Day).To(Equal(common.NewDay(2017, 3, 6)))
			Expect(chart.Quotes[1].Close).To(BeNumerically("~", 29.04, 1e-9))
		})

		It("keeps charts of symbols that succeed when another fails", func() {
			httpmock.RegisterResponder("GET", `=~^https://query2\.finance\.yahoo\.com/v8/finance/chart/XXX`,
				httpmock.NewStringResponder(500, "server error"))

			charts, err := client.FetchQuotes(context.Background(), []string{"XXX", "VCN.TO"})
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, quotes.ErrBadResponse)).To(BeTrue())
			Expect(charts).To(HaveLen(1))
			Expect(charts[0].Symbol).To(Equal("VCN.TO"))
		})
	})

	It("rejects an error payload", func() {
		httpmock.RegisterResponder("GET", `=~^https://query2\.finance\.yahoo\.com/v8/finance/chart/ZZZ`,
			chartResponder("testdata/notfound.json"))

		charts, err := client.FetchQuotes(context.Background(), []string{"ZZZ"})
		Expect(errors.Is(err, quotes.ErrBadResponse)).To(BeTrue())
		Expect(charts).To(BeEmpty())
	})

	It("rejects malformed json", func() {
		httpmock.RegisterResponder("GET", `=~^https://query2\.finance\.yahoo\.com/v8/finance/chart/ZZZ`,
			httpmock.NewStringResponder(200, `{"chart": [`))

		_, err := client.FetchQuotes(context.Background(), []string{"ZZZ"})
		Expect(errors.Is(err, quotes.ErrBadResponse)).To(BeTrue())
	})

	It("rejects mismatched timestamps and closes", func() {
		httpmock.RegisterResponder("GET", `=~^https://query2\.finance\.yahoo\.com/v8/finance/chart/ZZZ`,
			httpmock.NewStringResponder(200, `{"chart":{"result":[{"meta":{"symbol":"ZZZ"},"timestamp":[1488465000,1488551400],"indicators":{"quote":[{"close":[1.0]}]}}],"error":null}}`))

		_, err := client.FetchQuotes(context.Background(), []string{"ZZZ"})
		Expect(errors.Is(err, quotes.ErrBadResponse)).To(BeTrue())
	})

	It("requires at least one symbol", func() {
		_, err := client.FetchQuotes(context.Background(), nil)
		Expect(err).To(MatchError(quotes.ErrNoSymbols))
	})
})
