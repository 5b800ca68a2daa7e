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

	"github.com/datastore-tools/keyfinder/internal/dialect"
)

// IdentityFinder discovers generated/identity columns through the engine's
// per-column identity flag, for engines that mark identity columns in the
// catalog without declaring a queryable primary-key constraint. Every match
// is auto-generated by construction; the probe flag is re-checked anyway and
// rows that fail it are skipped rather than erroring, since the convention
// is heuristic.
type IdentityFinder struct {
	dialect dialect.Dialect
}

func NewIdentityFinder(d dialect.Dialect) *IdentityFinder {
	return &IdentityFinder{dialect: d}
}

func (f *IdentityFinder) Name() string { return "identity column" }

func (f *IdentityFinder) FindPrimaryKey(ctx context.Context, cx Querier, table TableRef) (*PrimaryKey, error) {
	query, args := f.dialect.IdentityColumnsQuery(table.Schema, table.Table)
	names, err := queryColumnNames(ctx, cx, "identity column lookup", query, args)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}

	probe, err := newTableProbe(ctx, cx, f.dialect, table)
	if err != nil {
		return nil, err
	}
	var cols []KeyColumn
	for _, name := range names {
		if !probe.isAutoIncrement(name) {
			continue
		}
		kc, err := probe.keyColumn(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, kc)
	}
	return newPrimaryKey(table.Table, cols), nil
}
