/*
 * Copyright 2026 The keyfinder Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package keys

import (
	"context"
	"strings"

	"github.com/datastore-tools/keyfinder/internal/dialect"
)

// HeuristicFinder is the last resort when the catalog declares nothing. The
// rule, in order: a probed column named "id" (case-insensitive), otherwise
// the column of the table's only single-column unique index. No candidates,
// or several disagreeing ones, yields no key rather than a guess.
type HeuristicFinder struct {
	dialect dialect.Dialect
}

func NewHeuristicFinder(d dialect.Dialect) *HeuristicFinder {
	return &HeuristicFinder{dialect: d}
}

func (f *HeuristicFinder) Name() string { return "heuristic" }

func (f *HeuristicFinder) FindPrimaryKey(ctx context.Context, cx Querier, table TableRef) (*PrimaryKey, error) {
	probe, err := newTableProbe(ctx, cx, f.dialect, table)
	if err != nil {
		return nil, err
	}

	for _, name := range probe.names {
		if strings.EqualFold(name, "id") {
			kc, err := probe.keyColumn(name)
			if err != nil {
				return nil, err
			}
			return newPrimaryKey(table.Table, []KeyColumn{kc}), nil
		}
	}

	candidate, err := f.soleUniqueColumn(ctx, cx, table)
	if err != nil {
		return nil, err
	}
	if candidate == "" {
		return nil, nil
	}
	kc, err := probe.keyColumn(candidate)
	if err != nil {
		return nil, err
	}
	return newPrimaryKey(table.Table, []KeyColumn{kc}), nil
}

// soleUniqueColumn returns the column of the table's only single-column
// unique index, or "" when there is no unambiguous choice.
func (f *HeuristicFinder) soleUniqueColumn(ctx context.Context, cx Querier, table TableRef) (string, error) {
	query, args := f.dialect.UniqueColumnsQuery(table.Schema, table.Table)
	rows, err := cx.QueryContext(ctx, query, args...)
	if err != nil {
		return "", &ErrQuery{Op: "unique index lookup", Err: err}
	}
	defer rows.Close()

	byIndex := make(map[string][]string)
	var order []string
	for rows.Next() {
		var index, column string
		if err := rows.Scan(&index, &column); err != nil {
			return "", &ErrQuery{Op: "unique index lookup", Err: err}
		}
		index = strings.TrimSpace(index)
		if _, ok := byIndex[index]; !ok {
			order = append(order, index)
		}
		byIndex[index] = append(byIndex[index], strings.TrimSpace(column))
	}
	if err := rows.Err(); err != nil {
		return "", &ErrQuery{Op: "unique index lookup", Err: err}
	}

	candidate := ""
	for _, index := range order {
		cols := byIndex[index]
		if len(cols) != 1 {
			continue
		}
		if candidate != "" && candidate != cols[0] {
			// Two different single-column unique indexes: ambiguous.
			return "", nil
		}
		candidate = cols[0]
	}
	return candidate, nil
}
