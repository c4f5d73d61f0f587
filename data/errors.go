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

import "errors"

var (
	ErrInvalidTimeRange      = errors.New("start must be before end")
	ErrUnknownTransaction    = errors.New("unknown transaction type")
	ErrInvalidLedger         = errors.New("ledger file is invalid")
	ErrInconsistentTotal     = errors.New("transaction total does not match units, price, and commission")
	ErrNonPositiveDeposit    = errors.New("deposit total must be positive")
	ErrMissingTarget         = errors.New("buy transaction has no target ticker")
	ErrMissingSource         = errors.New("dividend transaction has no source ticker")
	ErrCacheSizeInvalid      = errors.New("cache size must be positive")
	ErrUnexpectedCachedValue = errors.New("cached value has unexpected type")
)
