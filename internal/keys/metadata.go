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
	"database/sql"
	"fmt"
	"strings"

	"github.com/datastore-tools/keyfinder/internal/dialect"
)

// DefaultMetadataTable is the mapping table consulted when the caller
// enables the override strategy without naming a table.
const DefaultMetadataTable = "pk_metadata"

// MetadataTableFinder reads a caller-maintained mapping table declaring
// primary keys the catalog cannot describe. Expected layout:
//
//	table_schema   varchar, null for tables in the default schema
//	table_name     varchar
//	pk_column      varchar
//	pk_column_idx  integer, position within a multi-column key
//	pk_policy      varchar: 'assigned', 'sequence' or 'autogenerated'
//
// Column types come from probing the target table; roles come from the
// declared policy, not from the catalog flag, since the whole point of the
// override is to correct what the catalog cannot say.
type MetadataTableFinder struct {
	dialect dialect.Dialect
	table   string
}

func NewMetadataTableFinder(d dialect.Dialect, table string) *MetadataTableFinder {
	if table == "" {
		table = DefaultMetadataTable
	}
	return &MetadataTableFinder{dialect: d, table: table}
}

func (f *MetadataTableFinder) Name() string { return "metadata table" }

func (f *MetadataTableFinder) FindPrimaryKey(ctx context.Context, cx Querier, table TableRef) (*PrimaryKey, error) {
	var sb strings.Builder
	args := make([]any, 0, 2)
	sb.WriteString("SELECT pk_column, pk_policy FROM ")
	sb.WriteString(f.dialect.QuoteIdentifier(f.table))
	sb.WriteString(" WHERE table_name = ")
	sb.WriteString(f.dialect.Placeholder(1))
	args = append(args, table.Table)
	if table.Schema != "" {
		sb.WriteString(" AND table_schema = ")
		sb.WriteString(f.dialect.Placeholder(2))
		args = append(args, table.Schema)
	} else {
		sb.WriteString(" AND table_schema IS NULL")
	}
	sb.WriteString(" ORDER BY pk_column_idx")

	rows, err := cx.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, &ErrQuery{Op: "metadata table lookup", Err: err}
	}
	defer rows.Close()

	type entry struct {
		column string
		policy string
	}
	var entries []entry
	for rows.Next() {
		var column string
		var policy sql.NullString
		if err := rows.Scan(&column, &policy); err != nil {
			return nil, &ErrQuery{Op: "metadata table lookup", Err: err}
		}
		e := entry{column: strings.TrimSpace(column), policy: "assigned"}
		if policy.Valid && policy.String != "" {
			e.policy = strings.ToLower(strings.TrimSpace(policy.String))
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &ErrQuery{Op: "metadata table lookup", Err: err}
	}
	if len(entries) == 0 {
		return nil, nil
	}

	probe, err := newTableProbe(ctx, cx, f.dialect, table)
	if err != nil {
		return nil, err
	}
	cols := make([]KeyColumn, 0, len(entries))
	for _, e := range entries {
		role, err := policyRole(e.policy, e.column)
		if err != nil {
			return nil, err
		}
		kc, err := probe.keyColumn(e.column)
		if err != nil {
			return nil, err
		}
		kc.Role = role
		cols = append(cols, kc)
	}
	return newPrimaryKey(table.Table, cols), nil
}

func policyRole(policy, column string) (ColumnRole, error) {
	switch policy {
	case "assigned":
		return RoleExternallySupplied, nil
	case "sequence", "autogenerated":
		return RoleAutoGenerated, nil
	default:
		return 0, fmt.Errorf("unknown pk_policy %q for column %q", policy, column)
	}
}
