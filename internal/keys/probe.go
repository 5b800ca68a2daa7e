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
	"strings"

	"github.com/datastore-tools/keyfinder/internal/dialect"
)

// Querier is the subset of database/sql the finders need. *sql.DB,
// *sql.Conn and *sql.Tx all satisfy it. The connection is owned by the
// caller and is never closed here.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// tableProbe is the catalog query layer. It runs a zero-row probe
// (`SELECT * FROM t WHERE 1=2`) for column names, ordinals and type names,
// plus the dialect's identity-column query for the auto-increment flag;
// database/sql exposes no per-column auto-increment bit, so the flag comes
// from the catalog. Everything is materialized up front; no statement stays
// open past the constructor.
type tableProbe struct {
	names    []string          // probe order, trimmed
	ordinals map[string]int    // 1-based
	types    map[string]string // raw database type names, classified lazily
	identity map[string]bool
}

func newTableProbe(ctx context.Context, cx Querier, d dialect.Dialect, table TableRef) (*tableProbe, error) {
	p := &tableProbe{
		ordinals: make(map[string]int),
		types:    make(map[string]string),
		identity: make(map[string]bool),
	}
	if err := p.probeColumns(ctx, cx, d, table); err != nil {
		return nil, err
	}
	query, args := d.IdentityColumnsQuery(table.Schema, table.Table)
	flagged, err := queryColumnNames(ctx, cx, "identity flag lookup", query, args)
	if err != nil {
		return nil, err
	}
	for _, name := range flagged {
		p.identity[name] = true
	}
	return p, nil
}

func (p *tableProbe) probeColumns(ctx context.Context, cx Querier, d dialect.Dialect, table TableRef) error {
	from := d.QuoteIdentifier(table.Table)
	if table.Schema != "" {
		from = d.QuoteIdentifier(table.Schema) + "." + from
	}
	rows, err := cx.QueryContext(ctx, "SELECT * FROM "+from+" WHERE 1=2")
	if err != nil {
		return &ErrQuery{Op: "table probe", Err: err}
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return &ErrQuery{Op: "table probe", Err: err}
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return &ErrQuery{Op: "table probe", Err: err}
	}
	for i, name := range names {
		trimmed := strings.TrimSpace(name)
		p.names = append(p.names, trimmed)
		p.ordinals[trimmed] = i + 1
		p.types[trimmed] = colTypes[i].DatabaseTypeName()
	}
	return nil
}

func (p *tableProbe) ordinal(name string) (int, bool) {
	ord, ok := p.ordinals[name]
	return ord, ok
}

func (p *tableProbe) isAutoIncrement(name string) bool {
	return p.identity[name]
}

// keyColumn builds the key descriptor for a probed column, classifying its
// type and role.
func (p *tableProbe) keyColumn(name string) (KeyColumn, error) {
	typeName, ok := p.types[name]
	if !ok {
		return KeyColumn{}, &ErrClassification{Column: name}
	}
	t, err := classifyType(name, typeName)
	if err != nil {
		return KeyColumn{}, err
	}
	return KeyColumn{Name: name, Type: t, Role: roleOf(p.isAutoIncrement(name))}, nil
}

// ColumnDescriptor is one probed column as reported by the catalog.
type ColumnDescriptor struct {
	Name          string
	Ordinal       int
	DatabaseType  string
	Type          ColumnType
	AutoIncrement bool
}

// DescribeColumns exposes the probe view of a table: every column with its
// ordinal, semantic type and auto-increment flag. A column whose type cannot
// be classified fails the call.
func DescribeColumns(ctx context.Context, cx Querier, d dialect.Dialect, table TableRef) ([]ColumnDescriptor, error) {
	if strings.TrimSpace(table.Table) == "" {
		return nil, errEmptyTable
	}
	p, err := newTableProbe(ctx, cx, d, table)
	if err != nil {
		return nil, err
	}
	out := make([]ColumnDescriptor, 0, len(p.names))
	for _, name := range p.names {
		t, err := classifyType(name, p.types[name])
		if err != nil {
			return nil, err
		}
		out = append(out, ColumnDescriptor{
			Name:          name,
			Ordinal:       p.ordinals[name],
			DatabaseType:  p.types[name],
			Type:          t,
			AutoIncrement: p.isAutoIncrement(name),
		})
	}
	return out, nil
}

// queryColumnNames runs a single-column catalog query and returns the
// trimmed values in result order. The result set is closed on every path.
func queryColumnNames(ctx context.Context, cx Querier, op, query string, args []any) ([]string, error) {
	rows, err := cx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ErrQuery{Op: op, Err: err}
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &ErrQuery{Op: op, Err: err}
		}
		names = append(names, strings.TrimSpace(name))
	}
	if err := rows.Err(); err != nil {
		return nil, &ErrQuery{Op: op, Err: err}
	}
	return names, nil
}
