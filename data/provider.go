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

package data

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Provider supplies the raw inputs of a reporting run. Date ranges are
// half-open: begin is included, end is not.
type Provider interface {
	// Accounts returns the named accounts; an empty list means all accounts
	Accounts(ctx context.Context, names []string) ([]*Account, error)

	// MarketDays returns market days ordered by day
	MarketDays(ctx context.Context, begin, end time.Time) ([]*MarketDay, error)

	// Quotes returns closing prices ordered by ticker and then day
	Quotes(ctx context.Context, begin, end time.Time) ([]*Quote, error)

	// Distributions returns per-unit distributions ordered by ticker and then day
	Distributions(ctx context.Context, begin, end time.Time) ([]*Distribution, error)

	// Transactions returns the ledger entries of accounts dated before end,
	// ordered by day
	Transactions(ctx context.Context, accounts []string, end time.Time) ([]*Transaction, error)
}

// ParseAccounts splits a comma separated account list. An empty string
// returns nil which selects every account.
func ParseAccounts(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	accounts := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			accounts = append(accounts, part)
		}
	}

	if len(accounts) == 0 {
		return nil
	}
	return accounts
}

// AccountNames returns the sorted names of accounts
func AccountNames(accounts []*Account) []string {
	names := make([]string, len(accounts))
	for idx, acct := range accounts {
		names[idx] = acct.Name
	}
	sort.Strings(names)
	return names
}

func sortQuotes(quotes []*Quote) {
	sort.SliceStable(quotes, func(i, j int) bool {
		if quotes[i].Ticker == quotes[j].Ticker {
			return quotes[i].Day.Before(quotes[j].Day)
		}
		return quotes[i].Ticker < quotes[j].Ticker
	})
}

func sortDistributions(distributions []*Distribution) {
	sort.SliceStable(distributions, func(i, j int) bool {
		if distributions[i].Ticker == distributions[j].Ticker {
			return distributions[i].Day.Before(distributions[j].Day)
		}
		return distributions[i].Ticker < distributions[j].Ticker
	})
}

func inRange(day, begin, end time.Time) bool {
	return !day.Before(begin) && day.Before(end)
}
