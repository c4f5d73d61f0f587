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

package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// table is a csv file whose rows are addressed by header name
type table struct {
	reader  *csv.Reader
	columns map[string]int
	line    int
}

func newTable(r io.Reader, required ...string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for idx, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = idx
	}

	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	return &table{reader: reader, columns: columns, line: 1}, nil
}

// next returns the following row or io.EOF
func (t *table) next() (row, error) {
	record, err := t.reader.Read()
	if err != nil {
		return row{}, err
	}
	t.line++
	return row{record: record, columns: t.columns, line: t.line}, nil
}

type row struct {
	record  []string
	columns map[string]int
	line    int
}

func (r row) get(name string) string {
	idx, ok := r.columns[name]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

func (r row) empty() bool {
	for _, field := range r.record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
