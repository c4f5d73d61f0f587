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
	"errors"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/stat"

	"github.com/penny-vault/pv-tracker/data"
	"github.com/penny-vault/pv-tracker/portfolio"
)

func day(d int) time.Time {
	return time.Date(2017, time.March, d, 0, 0, 0, 0, time.UTC)
}

func loadSimple() *portfolio.Portfolio {
	ledger, err := data.LoadLedger("testdata/simple.toml")
	Expect(err).NotTo(HaveOccurred())

	p, err := portfolio.New(context.Background(), ledger, portfolio.Options{
		Today:        day(7),
		RiskFreeRate: portfolio.DefaultRiskFreeRate,
	})
	Expect(err).NotTo(HaveOccurred())
	return p
}

var _ = Describe("Portfolio", func() {
	var p *portfolio.Portfolio

	BeforeEach(func() {
		p = loadSimple()
	})

	It("runs from inception through yesterday", func() {
		Expect(p.Inception).To(BeTemporally("==", day(2)))
		Expect(p.Daily().Len()).To(Equal(5))
		Expect(p.Daily().Rows()[0].Day).To(BeTemporally("==", day(2)))
		Expect(p.Latest().Day).To(BeTemporally("==", day(6)))
	})

	It("finds no ledger problems", func() {
		Expect(p.Warnings()).To(BeEmpty())
	})

	It("assigns a run id", func() {
		Expect(p.ID.String()).To(HaveLen(36))
	})

	Describe("on the first day", func() {
		var row *portfolio.DailyPerformance

		BeforeEach(func() {
			var ok bool
			row, ok = p.OnDay(day(2))
			Expect(ok).To(BeTrue())
		})

		It("holds only the deposit", func() {
			Expect(row.Capital).To(Equal(10000.0))
			Expect(row.TotalValue).To(Equal(10000.0))
			Expect(row.Cash).To(Equal(10000.0))
			Expect(row.PositionsCost).To(Equal(0.0))
			Expect(row.PositionsValue).To(Equal(0.0))
			Expect(row.Profit).To(Equal(0.0))
		})

		It("starts returns and drawdowns at zero", func() {
			Expect(row.DayReturns).To(Equal(0.0))
			Expect(row.DayProfit).To(Equal(0.0))
			Expect(row.TWRR).To(Equal(0.0))
			Expect(row.CurrentDrawdown).To(Equal(0.0))
			Expect(row.GreatestDrawdown).To(Equal(0.0))
			Expect(row.TenK).To(Equal(10000.0))
			Expect(row.DaysFromStart).To(Equal(1))
		})

		It("has no volatility or sharpe ratio yet", func() {
			Expect(math.IsNaN(row.Volatility)).To(BeTrue())
			Expect(math.IsNaN(row.Sharpe)).To(BeTrue())
			Expect(p.Daily().Value(portfolio.MetricSharpe, day(2)).State).To(Equal(portfolio.Undefined))
		})
	})

	Describe("after the first purchases", func() {
		It("values the portfolio on 2017-03-03", func() {
			row, ok := p.OnDay(day(3))
			Expect(ok).To(BeTrue())
			Expect(row.PositionsCost).To(BeNumerically("~", 5810.70, 1e-9))
			Expect(row.PositionsValue).To(BeNumerically("~", 5810.00, 1e-9))
			Expect(row.Dividends).To(BeNumerically("~", 10.10, 1e-9))
			Expect(row.Cash).To(BeNumerically("~", 4199.40, 1e-9))
			Expect(row.TotalValue).To(BeNumerically("~", 10009.40, 1e-9))
			Expect(row.DayProfit).To(BeNumerically("~", 9.40, 1e-9))
			Expect(row.Volatility).To(BeNumerically("~", 0.0006646803743154575, 1e-12))
			Expect(row.LastPeak).To(BeTemporally("==", day(3)))
		})

		It("carries values across the weekend", func() {
			row, ok := p.OnDay(day(5))
			Expect(ok).To(BeTrue())
			Expect(row.Open).To(BeFalse())
			Expect(row.DayProfit).To(BeNumerically("~", 0, 1e-9))
			Expect(row.TotalValue).To(BeNumerically("~", 10009.40, 1e-9))
			Expect(row.Volatility).To(BeNumerically("~", 0.0006646803743154575, 1e-12))
			Expect(row.LastPeak).To(BeTemporally("==", day(3)))
		})
	})

	Describe("on 2017-03-06", func() {
		var row *portfolio.DailyPerformance

		BeforeEach(func() {
			var ok bool
			row, ok = p.OnDay(day(6))
			Expect(ok).To(BeTrue())
		})

		It("values positions and cash", func() {
			Expect(row.PositionsCost).To(BeNumerically("~", 5810.70, 1e-9))
			Expect(row.PositionsValue).To(BeNumerically("~", 6185.00, 1e-9))
			Expect(row.Appreciation).To(BeNumerically("~", 374.30, 1e-9))
			Expect(row.Dividends).To(BeNumerically("~", 20.00, 1e-9))
			Expect(row.Cash).To(BeNumerically("~", 4209.30, 1e-9))
			Expect(row.TotalValue).To(BeNumerically("~", 10394.30, 1e-9))
			Expect(row.DayProfit).To(BeNumerically("~", 384.90, 1e-9))
			Expect(row.Profit).To(BeNumerically("~", 394.30, 1e-9))
		})

		It("computes returns", func() {
			Expect(row.DayReturns).To(BeNumerically("~", 0.03845385337782462, 1e-12))
			Expect(row.AppreciationReturns).To(BeNumerically("~", 0.03743, 1e-12))
			Expect(row.DistributionReturns).To(BeNumerically("~", 0.002, 1e-12))
			Expect(row.Returns).To(BeNumerically("~", 0.03943, 1e-12))
			Expect(row.TWRR).To(BeNumerically("~", 0.03943, 1e-12))
			Expect(row.TWRRAnnualized).To(BeNumerically("~", row.TWRR, 1e-15))
			Expect(row.MWRR).To(BeNumerically("~", 0.03943, 1e-12))
			Expect(row.TenK).To(BeNumerically("~", 10394.30, 1e-8))
		})

		It("computes risk", func() {
			Expect(row.Volatility).To(BeNumerically("~", 0.021935023876805605, 1e-12))
			Expect(row.Sharpe).To(BeNumerically("~", 1.786965152525737, 1e-9))
			Expect(row.LastPeak).To(BeTemporally("==", day(6)))
			Expect(row.CurrentDrawdown).To(Equal(0.0))
			Expect(row.GreatestDrawdown).To(Equal(0.0))
		})

		It("exposes metrics by name", func() {
			Expect(p.Daily().Value(portfolio.MetricTenK, day(6)).Float()).To(BeNumerically("~", 10394.30, 1e-8))
			Expect(p.Daily().Value(portfolio.MetricCapital, day(6)).State).To(Equal(portfolio.Defined))
			Expect(p.Daily().Value(portfolio.MetricCapital, day(7)).State).To(Equal(portfolio.OutOfRange))
			Expect(p.Daily().Value("bogus", day(6)).State).To(Equal(portfolio.Undefined))
		})
	})

	Describe("daily invariants", func() {
		It("compounds twrr from day returns", func() {
			rows := p.Daily().Rows()
			for idx := 1; idx < len(rows); idx++ {
				Expect(1 + rows[idx].TWRR).To(BeNumerically("~", (1+rows[idx-1].TWRR)*(1+rows[idx].DayReturns), 1e-12))
			}
		})

		It("never has a positive drawdown", func() {
			for _, row := range p.Daily().Rows() {
				Expect(row.CurrentDrawdown).To(BeNumerically("<=", 0))
				Expect(row.GreatestDrawdown).To(BeNumerically("<=", row.CurrentDrawdown))
			}
		})

		It("excludes closed days from volatility", func() {
			open := make([]float64, 0)
			all := make([]float64, 0)
			for _, row := range p.Daily().Rows() {
				all = append(all, row.DayReturns)
				if row.Open {
					open = append(open, row.DayReturns)
				}
			}
			Expect(p.Latest().Volatility).To(BeNumerically("~", stat.StdDev(open, nil), 1e-12))
			Expect(p.Latest().Volatility).NotTo(BeNumerically("~", stat.StdDev(all, nil), 1e-6))
		})
	})

	Describe("table export", func() {
		It("builds a dataframe of the requested metrics", func() {
			df, err := p.Daily().DataFrame(portfolio.MetricCapital, portfolio.MetricTotalValue)
			Expect(err).NotTo(HaveOccurred())
			Expect(df.ColNames).To(Equal([]string{"capital", "total_value"}))
			Expect(df.Len()).To(Equal(5))
			Expect(df.Vals[1][4]).To(BeNumerically("~", 10394.30, 1e-9))
		})

		It("includes every metric by default", func() {
			df, err := p.Daily().DataFrame()
			Expect(err).NotTo(HaveOccurred())
			Expect(df.ColCount()).To(Equal(len(portfolio.Metrics)))
		})

		It("rejects unknown metrics", func() {
			_, err := p.Daily().DataFrame("capital", "bogus")
			Expect(errors.Is(err, portfolio.ErrUnknownMetric)).To(BeTrue())
		})
	})

	Describe("allocations", func() {
		It("weights each position and cash", func() {
			weights := p.Allocations()
			Expect(weights).To(HaveLen(3))
			Expect(weights["VCN.TO"]).To(BeNumerically("~", 0.287176625650597, 1e-12))
			Expect(weights["VEE.TO"]).To(BeNumerically("~", 0.30786103922342056, 1e-12))
			Expect(weights["Cash"]).To(BeNumerically("~", 0.40496233512598245, 1e-12))
		})

		It("holds only cash before the first buy", func() {
			weights := p.Positions().Weights(day(2))
			Expect(weights["VCN.TO"]).To(Equal(0.0))
			Expect(weights["Cash"]).To(Equal(1.0))
		})

		It("has no weights outside the run", func() {
			Expect(p.Positions().Weights(day(1))).To(BeNil())
		})
	})

	Describe("periods", func() {
		It("has a single month in progress", func() {
			Expect(p.Monthly().Len()).To(Equal(1))
			Expect(p.LastMonth()).To(BeNil())

			march := p.Monthly().Latest()
			Expect(march.Day).To(BeTemporally("==", day(6)))
			Expect(march.PeriodDeposits).To(Equal(10000.0))
			Expect(march.PeriodProfit).To(BeNumerically("~", 394.30, 1e-9))
			Expect(march.PeriodTWRR).To(BeNumerically("~", 0.03943, 1e-12))
			Expect(march.PeriodReturns).To(BeNumerically("~", 0.03943, 1e-12))
		})

		It("has a single year in progress", func() {
			Expect(p.Yearly().Len()).To(Equal(1))
			Expect(p.LastYear()).To(BeNil())

			summary, ok := p.Yearly().On(day(1))
			Expect(ok).To(BeTrue())
			Expect(summary.TotalValue).To(BeNumerically("~", 10394.30, 1e-9))
		})

		It("reports the month to date as lifetime figures without a previous month", func() {
			snap := p.Snapshot()
			Expect(snap.Day).To(BeTemporally("==", day(6)))
			Expect(snap.MonthProfit).To(BeNumerically("~", 394.30, 1e-9))
			Expect(snap.MonthReturns).To(BeNumerically("~", 0.03943, 1e-12))
			Expect(snap.DayProfit).To(BeNumerically("~", 384.90, 1e-9))
			Expect(math.IsNaN(snap.LastMonthProfit)).To(BeTrue())
			Expect(math.IsNaN(snap.LastMonthReturns)).To(BeTrue())
		})
	})

	Describe("deposits", func() {
		It("zero fills days without deposits", func() {
			Expect(p.Deposits().Amount(day(2)).Float()).To(Equal(10000.0))
			Expect(p.Deposits().Amount(day(3)).State).To(Equal(portfolio.ZeroByDefinition))
			Expect(p.Deposits().Amount(day(1)).State).To(Equal(portfolio.OutOfRange))
			Expect(p.Deposits().Days()).To(HaveLen(1))
			Expect(p.Deposits().Total()).To(Equal(10000.0))
		})

		It("measures each deposit against the latest day", func() {
			perf := p.DepositPerformances()
			Expect(perf).To(HaveLen(1))
			Expect(perf[0].Day).To(BeTemporally("==", day(2)))
			Expect(perf[0].Returns).To(BeNumerically("~", 0.03943, 1e-12))
			Expect(perf[0].CurrentValue).To(BeNumerically("~", 10394.30, 1e-8))
			Expect(perf[0].CAGR).To(BeNumerically("~", 15.828796166581583, 1e-6))
		})
	})
})

var _ = Describe("Portfolio loading", func() {
	const accounts = `
[[accounts]]
name = "RRSP1"
type = "RRSP"
investor = "Someone"
created = 2017-03-02
`

	load := func(doc string, opts portfolio.Options) error {
		ledger, err := data.ParseLedger([]byte(doc))
		Expect(err).NotTo(HaveOccurred())
		_, err = portfolio.New(context.Background(), ledger, opts)
		return err
	}

	marketDays := func(days ...int) string {
		res := ""
		for _, d := range days {
			res += "[[market_days]]\nday = " + day(d).Format("2006-01-02") + "\nopen = true\n"
		}
		return res
	}

	It("fails when no account matches", func() {
		err := load(accounts+marketDays(1, 2, 3), portfolio.Options{Accounts: []string{"TFSA"}, Today: day(4)})
		Expect(errors.Is(err, portfolio.ErrNoAccounts)).To(BeTrue())
	})

	It("fails when market days start after inception", func() {
		err := load(accounts+marketDays(3, 4, 5), portfolio.Options{Today: day(6)})
		Expect(errors.Is(err, portfolio.ErrMarketDaysStartLate)).To(BeTrue())
	})

	It("fails when market days end before yesterday", func() {
		err := load(accounts+marketDays(1, 2, 3), portfolio.Options{Today: day(10)})
		Expect(errors.Is(err, portfolio.ErrMarketDaysEndEarly)).To(BeTrue())
	})

	It("fails when market days have a gap", func() {
		err := load(accounts+marketDays(1, 2, 4, 5), portfolio.Options{Today: day(6)})
		Expect(errors.Is(err, portfolio.ErrMarketDaysGap)).To(BeTrue())
	})

	It("generates market days from the exchange calendar", func() {
		ledger, err := data.ParseLedger([]byte(accounts))
		Expect(err).NotTo(HaveOccurred())

		p, err := portfolio.New(context.Background(), ledger, portfolio.Options{Today: day(7)})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Daily().Len()).To(Equal(6))
		Expect(p.Positions().Empty()).To(BeTrue())

		row, ok := p.OnDay(day(4))
		Expect(ok).To(BeTrue())
		Expect(row.Open).To(BeFalse())
		Expect(row.Capital).To(Equal(0.0))
		Expect(math.IsNaN(row.Returns)).To(BeTrue())
		Expect(row.DayReturns).To(Equal(0.0))
	})
})
