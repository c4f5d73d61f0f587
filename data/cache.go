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
	"encoding/hex"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"
)

// CachedProvider memoizes the results of another Provider in an LRU cache.
// A request is answered from the cache when an earlier result covers it:
// the same or a wider date range and the same or a larger set of accounts.
// Only successful results are stored.
type CachedProvider struct {
	provider Provider
	cache    *lru.Cache
}

// entry is a cached result and the request that produced it. names is nil
// when the request selected every account.
type entry struct {
	method string
	names  []string
	begin  time.Time
	end    time.Time
	value  interface{}
}

// covers is true when every row of the request is contained in e
func (e *entry) covers(method string, names []string, begin, end time.Time) bool {
	if e.method != method || begin.Before(e.begin) || e.end.Before(end) {
		return false
	}

	if len(e.names) == 0 {
		return true
	}
	if len(names) == 0 {
		return false
	}

	have := make(map[string]bool, len(e.names))
	for _, name := range e.names {
		have[name] = true
	}
	for _, name := range names {
		if !have[name] {
			return false
		}
	}
	return true
}

// NewCachedProvider wraps provider with an LRU cache holding up to size results
func NewCachedProvider(provider Provider, size int) (*CachedProvider, error) {
	if size <= 0 {
		return nil, ErrCacheSizeInvalid
	}

	cache, err := lru.New(size)
	if err != nil {
		log.Error().Err(err).Msg("could not create LRU cache")
		return nil, err
	}

	return &CachedProvider{
		provider: provider,
		cache:    cache,
	}, nil
}

// cacheKey calculates a blake3 hash of the method name and its arguments
func cacheKey(method string, names []string, dates ...time.Time) string {
	h := blake3.New()

	if _, err := h.Write([]byte(method)); err != nil {
		log.Error().Stack().Err(err).Msg("could not write method to blake3 hasher")
	}

	if _, err := h.Write([]byte(strings.Join(names, ","))); err != nil {
		log.Error().Stack().Err(err).Msg("could not write names to blake3 hasher")
	}

	for _, dt := range dates {
		if _, err := h.Write([]byte(dt.Format(time.RFC3339))); err != nil {
			log.Error().Stack().Err(err).Msg("could not write date to blake3 hasher")
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Len returns the number of cached results
func (c *CachedProvider) Len() int {
	return c.cache.Len()
}

// lookup finds a cached result covering the request. An exact match is
// tried first, then every cached entry of the same method.
func (c *CachedProvider) lookup(method string, names []string, begin, end time.Time) (interface{}, bool, error) {
	if val, ok := c.cache.Get(cacheKey(method, names, begin, end)); ok {
		e, ok := val.(*entry)
		if !ok {
			return nil, false, ErrUnexpectedCachedValue
		}
		return e.value, true, nil
	}

	for _, key := range c.cache.Keys() {
		val, ok := c.cache.Peek(key)
		if !ok {
			continue
		}
		e, ok := val.(*entry)
		if !ok {
			return nil, false, ErrUnexpectedCachedValue
		}
		if e.covers(method, names, begin, end) {
			c.cache.Get(key)
			log.Debug().Str("Method", method).Time("Begin", begin).Time("End", end).Msg("request served from a wider cached result")
			return e.value, true, nil
		}
	}

	return nil, false, nil
}

func (c *CachedProvider) store(method string, names []string, begin, end time.Time, value interface{}) {
	if len(names) == 0 {
		names = nil
	}
	c.cache.Add(cacheKey(method, names, begin, end), &entry{
		method: method,
		names:  names,
		begin:  begin,
		end:    end,
		value:  value,
	})
}

func nameSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

func (c *CachedProvider) Accounts(ctx context.Context, names []string) ([]*Account, error) {
	val, ok, err := c.lookup("Accounts", names, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	if ok {
		accounts, ok := val.([]*Account)
		if !ok {
			return nil, ErrUnexpectedCachedValue
		}
		want := nameSet(names)
		res := make([]*Account, 0, len(accounts))
		for _, acct := range accounts {
			if want == nil || want[acct.Name] {
				res = append(res, acct)
			}
		}
		return res, nil
	}

	accounts, err := c.provider.Accounts(ctx, names)
	if err == nil {
		c.store("Accounts", names, time.Time{}, time.Time{}, accounts)
	}
	return accounts, err
}

func (c *CachedProvider) MarketDays(ctx context.Context, begin, end time.Time) ([]*MarketDay, error) {
	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	val, ok, err := c.lookup("MarketDays", nil, begin, end)
	if err != nil {
		return nil, err
	}
	if ok {
		days, ok := val.([]*MarketDay)
		if !ok {
			return nil, ErrUnexpectedCachedValue
		}
		res := make([]*MarketDay, 0, len(days))
		for _, md := range days {
			if inRange(md.Day, begin, end) {
				res = append(res, md)
			}
		}
		return res, nil
	}

	days, err := c.provider.MarketDays(ctx, begin, end)
	if err == nil {
		c.store("MarketDays", nil, begin, end, days)
	}
	return days, err
}

func (c *CachedProvider) Quotes(ctx context.Context, begin, end time.Time) ([]*Quote, error) {
	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	val, ok, err := c.lookup("Quotes", nil, begin, end)
	if err != nil {
		return nil, err
	}
	if ok {
		quotes, ok := val.([]*Quote)
		if !ok {
			return nil, ErrUnexpectedCachedValue
		}
		res := make([]*Quote, 0, len(quotes))
		for _, q := range quotes {
			if inRange(q.Day, begin, end) {
				res = append(res, q)
			}
		}
		return res, nil
	}

	quotes, err := c.provider.Quotes(ctx, begin, end)
	if err == nil {
		c.store("Quotes", nil, begin, end, quotes)
	}
	return quotes, err
}

func (c *CachedProvider) Distributions(ctx context.Context, begin, end time.Time) ([]*Distribution, error) {
	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	val, ok, err := c.lookup("Distributions", nil, begin, end)
	if err != nil {
		return nil, err
	}
	if ok {
		distributions, ok := val.([]*Distribution)
		if !ok {
			return nil, ErrUnexpectedCachedValue
		}
		res := make([]*Distribution, 0, len(distributions))
		for _, d := range distributions {
			if inRange(d.Day, begin, end) {
				res = append(res, d)
			}
		}
		return res, nil
	}

	distributions, err := c.provider.Distributions(ctx, begin, end)
	if err == nil {
		c.store("Distributions", nil, begin, end, distributions)
	}
	return distributions, err
}

// Transactions are cached by account list and end. A result for more
// accounts or a later end answers narrower requests.
func (c *CachedProvider) Transactions(ctx context.Context, accounts []string, end time.Time) ([]*Transaction, error) {
	// an empty list selects no accounts here so it must not look like "all"
	if len(accounts) == 0 {
		return c.provider.Transactions(ctx, accounts, end)
	}

	val, ok, err := c.lookup("Transactions", accounts, time.Time{}, end)
	if err != nil {
		return nil, err
	}
	if ok {
		txs, ok := val.([]*Transaction)
		if !ok {
			return nil, ErrUnexpectedCachedValue
		}
		want := nameSet(accounts)
		res := make([]*Transaction, 0, len(txs))
		for _, tx := range txs {
			if (want == nil || want[tx.Account]) && tx.Day.Before(end) {
				res = append(res, tx)
			}
		}
		return res, nil
	}

	txs, err := c.provider.Transactions(ctx, accounts, end)
	if err == nil {
		c.store("Transactions", accounts, time.Time{}, end, txs)
	}
	return txs, err
}
