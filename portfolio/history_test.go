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

package portfolio_test

import (
	"context"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-tracker/data"
	"github.com/penny-vault/pv-tracker/portfolio"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func loadLedger(fn string, today time.Time) *portfolio.Portfolio {
	ledger, err := data.LoadLedger(fn)
	Expect(err).NotTo(HaveOccurred())

	p, err := portfolio.New(context.Background(), ledger, portfolio.Options{
		Today:        today,
		RiskFreeRate: portfolio.DefaultRiskFreeRate,
	})
	Expect(err).NotTo(HaveOccurred())
	return p
}

var _ = Describe("Drawdowns and months", func() {
	var p *portfolio.Portfolio

	BeforeEach(func() {
		p = loadLedger("testdata/drawdown.toml", date(2024, time.March, 5))
	})

	rowOn := func(day time.Time) *portfolio.DailyPerformance {
		row, ok := p.OnDay(day)
		Expect(ok).To(BeTrue())
		return row
	}

	It("starts on the eve of inception", func() {
		Expect(p.Daily().Rows()[0].Day).To(BeTemporally("==", date(2024, time.January, 1)))
		Expect(p.Daily().Rows()[0].DaysFromStart).To(Equal(0))
		Expect(p.Latest().Day).To(BeTemporally("==", date(2024, time.March, 4)))
	})

	It("sets a new peak when the price rises", func() {
		row := rowOn(date(2024, time.February, 1))
		Expect(row.TWRR).To(BeNumerically("~", 0.2, 1e-12))
		Expect(row.LastPeak).To(BeTemporally("==", date(2024, time.February, 1)))
		Expect(row.LastPeakTWRR).To(BeNumerically("~", 0.2, 1e-12))
		Expect(row.CurrentDrawdown).To(BeNumerically("~", 0, 1e-12))
	})

	It("measures the drawdown from the last peak", func() {
		row := rowOn(date(2024, time.February, 2))
		Expect(row.TWRR).To(BeNumerically("~", -0.1, 1e-12))
		Expect(row.CurrentDrawdown).To(BeNumerically("~", -0.25, 1e-12))
		Expect(row.GreatestDrawdown).To(BeNumerically("~", -0.25, 1e-12))
		Expect(row.GreatestDrawdownStart).To(BeTemporally("==", date(2024, time.February, 1)))
		Expect(row.GreatestDrawdownEnd).To(BeTemporally("==", date(2024, time.February, 2)))
	})

	It("does not count a deposit as profit", func() {
		row := rowOn(date(2024, time.February, 15))
		Expect(row.Capital).To(Equal(1500.0))
		Expect(row.DayProfit).To(BeNumerically("~", 0, 1e-9))
		Expect(row.TWRR).To(BeNumerically("~", -0.1, 1e-12))
	})

	It("keeps the greatest drawdown through a partial recovery", func() {
		row := rowOn(date(2024, time.February, 29))
		Expect(row.CurrentDrawdown).To(BeNumerically("~", -0.19642857142857142, 1e-12))
		Expect(row.GreatestDrawdown).To(BeNumerically("~", -0.25, 1e-12))
		Expect(row.GreatestDrawdownEnd).To(BeTemporally("==", date(2024, time.February, 2)))
	})

	It("moves the greatest drawdown to a deeper trough", func() {
		for _, day := range []time.Time{date(2024, time.March, 1), date(2024, time.March, 4)} {
			row := rowOn(day)
			Expect(row.TWRR).To(BeNumerically("~", -0.16428571428571426, 1e-12))
			Expect(row.CurrentDrawdown).To(BeNumerically("~", -0.3035714285714286, 1e-12))
			Expect(row.GreatestDrawdown).To(BeNumerically("~", -0.3035714285714286, 1e-12))
			Expect(row.GreatestDrawdownStart).To(BeTemporally("==", date(2024, time.February, 1)))
			Expect(row.GreatestDrawdownEnd).To(BeTemporally("==", date(2024, time.March, 1)))
		}
	})

	It("summarizes each month against the previous month end", func() {
		months := p.Monthly().Rows()
		Expect(months).To(HaveLen(3))

		Expect(months[0].Day).To(BeTemporally("==", date(2024, time.January, 31)))
		Expect(months[0].PeriodDeposits).To(BeNumerically("~", 1000, 1e-9))
		Expect(months[0].PeriodProfit).To(BeNumerically("~", 100, 1e-9))
		Expect(months[0].PeriodTWRR).To(BeNumerically("~", 0.1, 1e-12))

		Expect(months[1].Day).To(BeTemporally("==", date(2024, time.February, 29)))
		Expect(months[1].PeriodDeposits).To(BeNumerically("~", 500, 1e-9))
		Expect(months[1].PeriodProfit).To(BeNumerically("~", -100, 1e-9))
		Expect(months[1].PeriodTWRR).To(BeNumerically("~", (27.0/28.0)/1.1-1, 1e-12))
		Expect(months[1].PeriodReturns).To(BeNumerically("~", 1/1.1-1, 1e-12))

		Expect(months[2].Day).To(BeTemporally("==", date(2024, time.March, 4)))
		Expect(months[2].PeriodDeposits).To(BeNumerically("~", 0, 1e-9))
		Expect(months[2].PeriodProfit).To(BeNumerically("~", -200, 1e-9))
		Expect(months[2].PeriodTWRR).To(BeNumerically("~", 13.0/15.0-1, 1e-12))
		Expect(months[2].PeriodReturns).To(BeNumerically("~", 13.0/15.0-1, 1e-12))
	})

	It("reports the previous month in the snapshot", func() {
		lastMonth := p.LastMonth()
		Expect(lastMonth).NotTo(BeNil())
		Expect(lastMonth.Day.Month()).To(Equal(time.February))

		snap := p.Snapshot()
		Expect(snap.MonthProfit).To(BeNumerically("~", -200, 1e-9))
		Expect(snap.MonthReturns).To(BeNumerically("~", -200.0/1500.0, 1e-12))
		Expect(snap.LastMonthProfit).To(BeNumerically("~", -100, 1e-9))
		Expect(snap.LastMonthReturns).To(BeNumerically("~", 1/1.1-1, 1e-12))
	})
})

var _ = Describe("Runs longer than a year", func() {
	var p *portfolio.Portfolio

	BeforeEach(func() {
		p = loadLedger("testdata/longrun.toml", date(2024, time.July, 2))
	})

	It("does not annualize within the first year", func() {
		row, ok := p.OnDay(date(2023, time.June, 1))
		Expect(ok).To(BeTrue())
		Expect(row.Years).To(BeNumerically("<", 1))
		Expect(row.TWRR).To(BeNumerically("~", 0.1, 1e-12))
		Expect(row.TWRRAnnualized).To(Equal(row.TWRR))
		Expect(row.MWRRAnnualized).To(Equal(row.MWRR))
	})

	It("annualizes rates after the first year", func() {
		row, ok := p.OnDay(date(2024, time.June, 3))
		Expect(ok).To(BeTrue())
		Expect(row.DaysFromStart).To(Equal(519))
		Expect(row.TWRR).To(BeNumerically("~", 0.21, 1e-12))
		Expect(row.TWRRAnnualized).To(BeNumerically("~", 0.14345986376995468, 1e-12))

		latest := p.Latest()
		Expect(latest.DaysFromStart).To(Equal(547))
		Expect(latest.Years).To(BeNumerically("~", 547.0/365.0, 1e-12))
		Expect(latest.TWRRAnnualized).To(BeNumerically("~", 0.135640036532525, 1e-12))
		Expect(latest.MWRR).To(BeNumerically("~", 0.21038391224862887, 1e-12))
		Expect(latest.MWRRAnnualized).To(BeNumerically("~", 0.1358804561545932, 1e-12))
	})

	It("summarizes each year", func() {
		Expect(p.Yearly().Len()).To(Equal(2))
		lastYear := p.LastYear()
		Expect(lastYear).NotTo(BeNil())
		Expect(lastYear.Day).To(BeTemporally("==", date(2023, time.December, 31)))
		Expect(lastYear.TWRR).To(BeNumerically("~", 0.1, 1e-12))
		Expect(p.Yearly().Latest().PeriodTWRR).To(BeNumerically("~", 0.1, 1e-12))
	})
})

var _ = Describe("Risk free rate", func() {
	It("uses a zero rate as given", func() {
		ledger, err := data.LoadLedger("testdata/simple.toml")
		Expect(err).NotTo(HaveOccurred())

		p, err := portfolio.New(context.Background(), ledger, portfolio.Options{Today: day(7)})
		Expect(err).NotTo(HaveOccurred())

		row, ok := p.OnDay(day(6))
		Expect(ok).To(BeTrue())
		Expect(row.Sharpe).To(BeNumerically("~", row.TWRR/row.Volatility, 1e-12))
		Expect(row.Sharpe).To(BeNumerically("~", 1.7975818135166848, 1e-9))
	})
})

// countingProvider counts the calls that reach the ledger
type countingProvider struct {
	ledger *data.Ledger
	calls  map[string]int
}

func (c *countingProvider) Accounts(ctx context.Context, names []string) ([]*data.Account, error) {
	c.calls["Accounts"]++
	return c.ledger.Accounts(ctx, names)
}

func (c *countingProvider) MarketDays(ctx context.Context, begin, end time.Time) ([]*data.MarketDay, error) {
	c.calls["MarketDays"]++
	return c.ledger.MarketDays(ctx, begin, end)
}

func (c *countingProvider) Quotes(ctx context.Context, begin, end time.Time) ([]*data.Quote, error) {
	c.calls["Quotes"]++
	return c.ledger.Quotes(ctx, begin, end)
}

func (c *countingProvider) Distributions(ctx context.Context, begin, end time.Time) ([]*data.Distribution, error) {
	c.calls["Distributions"]++
	return c.ledger.Distributions(ctx, begin, end)
}

func (c *countingProvider) Transactions(ctx context.Context, accounts []string, end time.Time) ([]*data.Transaction, error) {
	c.calls["Transactions"]++
	return c.ledger.Transactions(ctx, accounts, end)
}

var _ = Describe("Runs sharing a cached provider", func() {
	It("answers a single account run from the combined run", func() {
		ledger, err := data.LoadLedger("testdata/simple.toml")
		Expect(err).NotTo(HaveOccurred())
		backing := &countingProvider{ledger: ledger, calls: make(map[string]int)}
		cached, err := data.NewCachedProvider(backing, 16)
		Expect(err).NotTo(HaveOccurred())

		combined, err := portfolio.New(context.Background(), cached, portfolio.Options{Today: day(7)})
		Expect(err).NotTo(HaveOccurred())
		single, err := portfolio.New(context.Background(), cached, portfolio.Options{Accounts: []string{"RRSP1"}, Today: day(7)})
		Expect(err).NotTo(HaveOccurred())

		for _, method := range []string{"Accounts", "MarketDays", "Quotes", "Distributions", "Transactions"} {
			Expect(backing.calls[method]).To(Equal(1), method)
		}
		Expect(single.Latest().TotalValue).To(BeNumerically("~", combined.Latest().TotalValue, 1e-9))
		Expect(math.IsNaN(single.Latest().Sharpe)).To(BeFalse())
	})
})
