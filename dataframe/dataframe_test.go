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

package dataframe_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-tracker/dataframe"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var _ = Describe("DataFrame", func() {
	Context("with no values", func() {
		var (
			df *dataframe.DataFrame[time.Time]
		)

		BeforeEach(func() {
			df = dataframe.New[time.Time]()
		})

		It("has zero length", func() {
			Expect(df.Len()).To(Equal(0))
		})

		It("has zero columns", func() {
			Expect(df.ColCount()).To(Equal(0))
		})

		It("does not error on trim", func() {
			df = df.Trim(day(2021, 1, 1), day(2022, 1, 1))
			Expect(df.Len()).To(Equal(0))
		})

		It("does not error on frequency", func() {
			df = df.Frequency(dataframe.Monthly)
			Expect(df.Len()).To(Equal(0))
		})

		It("renders a placeholder table", func() {
			Expect(df.Table()).To(Equal("<NO DATA>"))
		})

		It("has zero start and end", func() {
			Expect(df.Start().IsZero()).To(BeTrue())
			Expect(df.End().IsZero()).To(BeTrue())
		})
	})

	Context("with 2 years of values and a single column", func() {
		var (
			df *dataframe.DataFrame[time.Time]
		)

		BeforeEach(func() {
			dates := make([]time.Time, 730)
			vals := make([]float64, 730)
			dt := day(2020, 1, 1)
			for idx := range dates {
				dates[idx] = dt
				dt = dt.AddDate(0, 0, 1)
				vals[idx] = float64(idx)
			}
			df = &dataframe.DataFrame[time.Time]{
				ColNames: []string{"Col1"},
				Index:    dates,
				Vals:     [][]float64{vals},
			}
		})

		It("has length", func() {
			Expect(df.Len()).To(Equal(730))
		})

		It("knows its date range", func() {
			Expect(df.Start()).To(Equal(day(2020, 1, 1)))
			Expect(df.End()).To(Equal(day(2021, 12, 30)))
		})

		DescribeTable("trims values by date range", func(a, b time.Time, expectedLen int, expectedA, expectedB time.Time) {
			trimmed := df.Trim(a, b)
			Expect(trimmed.Len()).To(Equal(expectedLen))
			Expect(trimmed.Vals[0]).To(HaveLen(expectedLen))
			if expectedLen > 1 {
				Expect(trimmed.Index[0]).To(Equal(expectedA), "expected begin date")
				Expect(trimmed.Index[len(trimmed.Index)-1]).To(Equal(expectedB), "expected end date")
			}
			Expect(df.Len()).To(Equal(730), "original is unchanged")
		},
			Entry("whole range", day(2020, 1, 1), day(2021, 12, 30), 730, day(2020, 1, 1), day(2021, 12, 30)),
			Entry("range that does not exist in dataframe (left)", day(2018, 1, 1), day(2019, 12, 30), 0, day(2018, 1, 1), day(2019, 12, 30)),
			Entry("range that does not exist in dataframe (right)", day(2022, 1, 1), day(2023, 12, 30), 0, day(2022, 1, 1), day(2023, 12, 30)),
			Entry("range that touches start but not end", day(2020, 1, 1), day(2020, 1, 5), 5, day(2020, 1, 1), day(2020, 1, 5)),
			Entry("range that touches end but not start", day(2021, 12, 27), day(2021, 12, 30), 4, day(2021, 12, 27), day(2021, 12, 30)),
			Entry("range that starts before begin", day(2019, 1, 1), day(2020, 1, 5), 5, day(2020, 1, 1), day(2020, 1, 5)),
			Entry("range that extends beyond the end", day(2021, 12, 27), day(2021, 12, 31), 4, day(2021, 12, 27), day(2021, 12, 30)),
			Entry("range in the middle of dataframe", day(2020, 6, 1), day(2020, 6, 5), 5, day(2020, 6, 1), day(2020, 6, 5)),
			Entry("single date", day(2020, 1, 1), day(2020, 1, 1), 1, day(2020, 1, 1), day(2020, 1, 1)),
			Entry("inverted range", day(2021, 1, 1), day(2020, 1, 1), 0, day(2020, 1, 1), day(2020, 1, 1)),
			Entry("end on start", day(2019, 1, 1), day(2020, 1, 1), 1, day(2020, 1, 1), day(2020, 1, 1)),
			Entry("start on end", day(2021, 12, 30), day(2024, 1, 1), 1, day(2021, 12, 30), day(2021, 12, 30)),
		)

		DescribeTable("test frequency filter", func(frequency dataframe.Frequency, expectedCnt int, expectedStart, expectedEnd time.Time) {
			df2 := df.Frequency(frequency)
			Expect(df2.Len()).To(Equal(expectedCnt))
			Expect(df2.Index[0]).To(Equal(expectedStart))
			Expect(df2.Index[df2.Len()-1]).To(Equal(expectedEnd))
		},
			Entry("Daily", dataframe.Daily, 730, day(2020, 1, 1), day(2021, 12, 30)),
			Entry("MonthBegin", dataframe.MonthBegin, 24, day(2020, 1, 1), day(2021, 12, 1)),
			Entry("MonthEnd", dataframe.MonthEnd, 24, day(2020, 1, 31), day(2021, 12, 30)),
			Entry("YearBegin", dataframe.YearBegin, 2, day(2020, 1, 1), day(2021, 1, 1)),
			Entry("YearEnd", dataframe.YearEnd, 2, day(2020, 12, 31), day(2021, 12, 30)),
		)

		It("keeps the value of the last row in each month", func() {
			monthly := df.Frequency(dataframe.Monthly)
			Expect(monthly.Vals[0][0]).To(Equal(30.0))
			Expect(monthly.Vals[0][1]).To(Equal(59.0))
		})

		It("returns the last row", func() {
			last := df.Last()
			Expect(last.Len()).To(Equal(1))
			Expect(last.Index[0]).To(Equal(day(2021, 12, 30)))
			Expect(last.Vals[0][0]).To(Equal(729.0))
		})

		It("lags values", func() {
			lagged := df.Lag(1)
			Expect(math.IsNaN(lagged.Vals[0][0])).To(BeTrue())
			Expect(lagged.Vals[0][1]).To(Equal(0.0))
			Expect(lagged.Vals[0][729]).To(Equal(728.0))
			Expect(df.Vals[0][0]).To(Equal(0.0), "original is unchanged")
		})

		It("builds a map keyed by date", func() {
			m := df.AsMap("Col1")
			Expect(m).To(HaveLen(730))
			Expect(m[day(2020, 1, 2)]).To(Equal(1.0))
			Expect(df.AsMap("missing")).To(BeEmpty())
		})

		It("filters rows", func() {
			odd := df.Filter(func(rowIdx int, _ time.Time) bool { return rowIdx%2 == 1 })
			Expect(odd.Len()).To(Equal(365))
			Expect(odd.Vals[0][0]).To(Equal(1.0))
		})
	})

	Context("when inserting rows", func() {
		var df *dataframe.DataFrame[time.Time]

		BeforeEach(func() {
			df = dataframe.New[time.Time]("a", "b")
		})

		It("fills missing columns with NaN", func() {
			df.InsertMap(day(2020, 1, 1), map[string]float64{"a": 1, "c": 5})
			Expect(df.Len()).To(Equal(1))
			Expect(df.Column("a")).To(Equal([]float64{1}))
			Expect(math.IsNaN(df.Column("b")[0])).To(BeTrue())
			Expect(df.Column("c")).To(BeNil())
		})

		It("appends positional rows", func() {
			df.InsertRow(day(2020, 1, 1), 1, 2)
			df.InsertRow(day(2020, 1, 2), 3, 4)
			Expect(df.Column("b")).To(Equal([]float64{2, 4}))
		})

		It("panics when rows are out of order", func() {
			df.InsertRow(day(2020, 1, 2), 1, 2)
			Expect(func() { df.InsertRow(day(2020, 1, 1), 3, 4) }).To(Panic())
		})

		It("panics when the number of values is wrong", func() {
			Expect(func() { df.InsertRow(day(2020, 1, 1), 1) }).To(Panic())
		})

		It("adds columns", func() {
			df.InsertRow(day(2020, 1, 1), 1, 2)
			df.Insert("c", []float64{3})
			Expect(df.ColCount()).To(Equal(3))
			Expect(df.ColIndex("c")).To(Equal(2))
			Expect(df.ColIndex("missing")).To(Equal(-1))
		})

		It("renders a table", func() {
			df.InsertRow(day(2020, 1, 1), 1, 2)
			table := df.Table()
			Expect(table).To(ContainSubstring("2020-01-01"))
			Expect(table).To(ContainSubstring("1.0000"))
		})
	})

	Context("with gaps in the data", func() {
		var df *dataframe.DataFrame[time.Time]

		BeforeEach(func() {
			nan := math.NaN()
			df = &dataframe.DataFrame[time.Time]{
				Index:    []time.Time{day(2017, 3, 2), day(2017, 3, 3), day(2017, 3, 4), day(2017, 3, 5), day(2017, 3, 6)},
				ColNames: []string{"VCN.TO", "VEE.TO"},
				Vals: [][]float64{
					{30.00, 30.10, nan, nan, 29.85},
					{nan, 28, nan, nan, 32},
				},
			}
		})

		It("forward fills", func() {
			df.Ffill()
			Expect(df.Vals[0]).To(Equal([]float64{30.00, 30.10, 30.10, 30.10, 29.85}))
			Expect(math.IsNaN(df.Vals[1][0])).To(BeTrue())
			Expect(df.Vals[1][1:]).To(Equal([]float64{28, 28, 28, 32}))
		})

		It("computes percent change", func() {
			change := df.Ffill().PctChange()
			Expect(math.IsNaN(change.Vals[0][0])).To(BeTrue())
			Expect(change.Vals[0][1]).To(BeNumerically("~", 0.1/30.0, 1e-12))
			Expect(change.Vals[0][2]).To(Equal(0.0))
			Expect(math.IsNaN(change.Vals[1][1])).To(BeTrue())
			Expect(change.Vals[1][4]).To(BeNumerically("~", 4.0/28.0, 1e-12))
		})

		It("computes the sample standard deviation ignoring NaN", func() {
			sd := df.StdDev()
			Expect(sd["VCN.TO"]).To(BeNumerically("~", 0.12583057392117908, 1e-9))
			Expect(sd["VEE.TO"]).To(BeNumerically("~", 2.828427, 1e-6))
		})

		It("computes pairwise correlation", func() {
			corr := df.Ffill().Correlation()
			Expect(corr.Index).To(Equal([]string{"VCN.TO", "VEE.TO"}))
			Expect(corr.Vals[0][0]).To(Equal(1.0))
			Expect(corr.Vals[1][1]).To(Equal(1.0))
			Expect(corr.Vals[0][1]).To(BeNumerically("~", -0.9882117688026176, 1e-9))
			Expect(corr.Vals[1][0]).To(Equal(corr.Vals[0][1]))
		})

		It("only correlates rows where both columns are defined", func() {
			corr := df.Correlation()
			Expect(corr.Vals[0][1]).To(BeNumerically("~", -1.0, 1e-9))
		})

		It("returns NaN correlation without enough overlap", func() {
			df.Vals[1][4] = math.NaN()
			corr := df.Correlation()
			Expect(math.IsNaN(corr.Vals[0][1])).To(BeTrue())
			Expect(math.IsNaN(corr.Vals[1][1])).To(BeTrue())
		})
	})
})
