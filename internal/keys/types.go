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

import "strings"

// TableRef identifies the relation to resolve a key for. Schema is optional;
// empty means the connection's default schema.
type TableRef struct {
	Schema string
	Table  string
}

func (t TableRef) String() string {
	if t.Schema == "" {
		return t.Table
	}
	return t.Schema + "." + t.Table
}

// ColumnRole says who produces a key column's value on insert.
type ColumnRole int

const (
	// RoleAutoGenerated marks a column the engine assigns itself; it must be
	// omitted from inserts.
	RoleAutoGenerated ColumnRole = iota + 1
	// RoleExternallySupplied marks a column the writer must provide.
	RoleExternallySupplied
)

func (r ColumnRole) String() string {
	switch r {
	case RoleAutoGenerated:
		return "auto-generated"
	case RoleExternallySupplied:
		return "externally-supplied"
	default:
		return "unknown"
	}
}

// roleOf maps the catalog's auto-increment flag onto a role. Applied
// identically no matter which strategy produced the column, so downstream
// insert/update logic sees one contract.
func roleOf(autoIncrement bool) ColumnRole {
	if autoIncrement {
		return RoleAutoGenerated
	}
	return RoleExternallySupplied
}

// ColumnType is the semantic classification of a column's database type.
type ColumnType int

const (
	TypeInteger ColumnType = iota + 1
	TypeDecimal
	TypeFloat
	TypeString
	TypeBytes
	TypeTime
	TypeBool
)

func (t ColumnType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeDecimal:
		return "decimal"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeBytes:
		return "bytes"
	case TypeTime:
		return "time"
	case TypeBool:
		return "bool"
	default:
		return "unknown"
	}
}

// classifyType maps a driver-reported database type name onto a ColumnType.
// Names vary per engine and may carry a length suffix; the prefix before any
// '(' is matched case-insensitively. An unrecognized name is fatal for the
// strategy attempt, never silently downgraded to "no key".
func classifyType(column, typeName string) (ColumnType, error) {
	name := strings.ToUpper(strings.TrimSpace(typeName))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	switch name {
	case "INT", "INTEGER", "BIGINT", "SMALLINT", "TINYINT", "BYTEINT", "MEDIUMINT",
		"INT2", "INT4", "INT8", "SERIAL", "BIGSERIAL", "SMALLSERIAL":
		return TypeInteger, nil
	case "DECIMAL", "NUMERIC", "NUMBER", "MONEY", "SMALLMONEY":
		return TypeDecimal, nil
	case "FLOAT", "REAL", "DOUBLE", "DOUBLE PRECISION", "FLOAT4", "FLOAT8",
		"BINARY_FLOAT", "BINARY_DOUBLE":
		return TypeFloat, nil
	case "CHAR", "NCHAR", "BPCHAR", "VARCHAR", "NVARCHAR", "VARCHAR2", "NVARCHAR2",
		"CHARACTER", "CHARACTER VARYING", "TEXT", "NTEXT", "CLOB", "NCLOB",
		"UUID", "UNIQUEIDENTIFIER":
		return TypeString, nil
	case "BYTEA", "BLOB", "BINARY", "VARBINARY", "VARBYTE", "BYTE", "IMAGE", "RAW", "LONG RAW":
		return TypeBytes, nil
	case "DATE", "TIME", "TIMETZ", "TIMESTAMP", "TIMESTAMPTZ", "DATETIME", "DATETIME2",
		"DATETIMEOFFSET", "SMALLDATETIME",
		"TIMESTAMP WITH TIME ZONE", "TIMESTAMP WITHOUT TIME ZONE",
		"TIME WITH TIME ZONE", "TIME WITHOUT TIME ZONE":
		return TypeTime, nil
	case "BOOL", "BOOLEAN", "BIT":
		return TypeBool, nil
	default:
		return 0, &ErrClassification{Column: column, TypeName: typeName}
	}
}

// KeyColumn is one column of a resolved key.
type KeyColumn struct {
	Name string
	Type ColumnType
	Role ColumnRole
}

// PrimaryKey is a resolved key: the table name and its key columns in
// catalog-declared order. It is never constructed with zero columns; "no key
// found" is a nil *PrimaryKey.
type PrimaryKey struct {
	Table   string
	Columns []KeyColumn
}

func newPrimaryKey(table string, cols []KeyColumn) *PrimaryKey {
	if len(cols) == 0 {
		return nil
	}
	return &PrimaryKey{Table: table, Columns: cols}
}

// Column reports whether name is part of the key and, if so, returns its
// descriptor. The match is exact on the catalog-reported name.
func (pk *PrimaryKey) Column(name string) (KeyColumn, bool) {
	for _, c := range pk.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return KeyColumn{}, false
}

// ColumnNames returns the key column names in order.
func (pk *PrimaryKey) ColumnNames() []string {
	names := make([]string, len(pk.Columns))
	for i, c := range pk.Columns {
		names[i] = c.Name
	}
	return names
}
