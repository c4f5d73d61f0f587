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

package quotes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pv-tracker/common"
	"github.com/penny-vault/pv-tracker/data"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	chartURL  = "https://query2.finance.yahoo.com/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d"
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15"
)

// Chart is the daily closing history of one symbol
type Chart struct {
	Symbol string
	Quotes []*data.Quote

	// Missing counts the days the server reported without a close
	Missing int
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Client downloads daily closes from the Yahoo chart API
type Client struct {
	HTTPClient   *http.Client
	LookbackDays int

	limiter *rate.Limiter
	now     func() time.Time
}

// NewClient creates a client that requests lookbackDays of history. A
// requestsPerSecond of zero or less disables throttling.
func NewClient(lookbackDays int, timeout time.Duration, requestsPerSecond float64) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}

	return &Client{
		HTTPClient:   &http.Client{Timeout: timeout},
		LookbackDays: lookbackDays,
		limiter:      rate.NewLimiter(limit, 1),
		now:          time.Now,
	}
}

// FetchQuotes downloads the recent closes of every symbol. Symbols that fail
// are logged and reported in the returned error; charts for the remaining
// symbols are still returned.
func (c *Client) FetchQuotes(ctx context.Context, symbols []string) ([]*Chart, error) {
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}

	today := common.Day(c.now().In(common.GetTimezone()))
	from := today.AddDate(0, 0, -c.LookbackDays).Unix()
	to := today.AddDate(0, 0, 1).Unix()

	charts := make([]*Chart, 0, len(symbols))
	var errs []error
	for _, symbol := range symbols {
		if err := c.limiter.Wait(ctx); err != nil {
			return charts, err
		}

		chart, err := c.fetchChart(ctx, symbol, from, to)
		if err != nil {
			log.Warn().Err(err).Str("Symbol", symbol).Msg("could not fetch quotes")
			errs = append(errs, fmt.Errorf("%s: %w", symbol, err))
			continue
		}

		log.Debug().Str("Symbol", chart.Symbol).Int("NumQuotes", len(chart.Quotes)).Int("Missing", chart.Missing).Msg("fetched quotes")
		charts = append(charts, chart)
	}

	return charts, errors.Join(errs...)
}

func (c *Client) fetchChart(ctx context.Context, symbol string, from, to int64) (*Chart, error) {
	endpoint := fmt.Sprintf(chartURL, url.PathEscape(symbol), from, to)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("StatusCode", resp.StatusCode).Str("Url", endpoint).Str("Body", string(body)).Msg("quote server returned an invalid status code")
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	return parseChart(body)
}

func parseChart(body []byte) (*Chart, error) {
	var payload chartResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadResponse, err.Error())
	}

	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s %s", ErrBadResponse, payload.Chart.Error.Code, payload.Chart.Error.Description)
	}

	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: empty result", ErrBadResponse)
	}

	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: no quote indicator", ErrBadResponse)
	}

	closes := result.Indicators.Quote[0].Close
	if len(closes) != len(result.Timestamp) {
		return nil, fmt.Errorf("%w: %d timestamps but %d closes", ErrBadResponse, len(result.Timestamp), len(closes))
	}

	tz := common.GetTimezone()
	chart := &Chart{
		Symbol: result.Meta.Symbol,
		Quotes: make([]*data.Quote, 0, len(closes)),
	}

	for idx, ts := range result.Timestamp {
		if closes[idx] == nil {
			chart.Missing++
			continue
		}
		chart.Quotes = append(chart.Quotes, &data.Quote{
			Ticker: chart.Symbol,
			Day:    common.Day(time.Unix(ts, 0).In(tz)),
			Close:  *closes[idx],
		})
	}

	return chart, nil
}
