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

// ConstraintFinder resolves the key from the primary-key constraint declared
// in the engine catalog. Zero declared columns is a normal outcome, not an
// error; the resolver moves on to the next strategy.
type ConstraintFinder struct {
	dialect dialect.Dialect
}

func NewConstraintFinder(d dialect.Dialect) *ConstraintFinder {
	return &ConstraintFinder{dialect: d}
}

func (f *ConstraintFinder) Name() string { return "primary-key constraint" }

func (f *ConstraintFinder) FindPrimaryKey(ctx context.Context, cx Querier, table TableRef) (*PrimaryKey, error) {
	query, args := f.dialect.PrimaryKeyQuery(table.Schema, table.Table)
	names, err := queryColumnNames(ctx, cx, "primary key lookup", query, args)
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
	cols := make([]KeyColumn, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		// A column can appear more than once when the catalog reports
		// overlapping constraints; the key must never contain duplicates.
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		kc, err := probe.keyColumn(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, kc)
	}
	return newPrimaryKey(table.Table, cols), nil
}
