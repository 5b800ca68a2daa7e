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
package dialect

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/datastore-tools/keyfinder/internal/config"
)

// teradataDialect reads key metadata from the DBC catalog views. Teradata
// does not expose primary keys through a portable information_schema, which
// is why this engine is the reason the whole fallback chain exists.
type teradataDialect struct{}

var _ Dialect = teradataDialect{}

func (teradataDialect) Name() string { return "teradata" }

func (teradataDialect) QuoteIdentifier(name string) string {
	return fmt.Sprintf("%q", name)
}

func (teradataDialect) Placeholder(int) string { return "?" }

func (teradataDialect) PrimaryKeyQuery(schema, table string) (string, []any) {
	// IndexType 'K' is a declared PRIMARY KEY constraint.
	var sb strings.Builder
	args := make([]any, 0, 2)
	sb.WriteString("SELECT TRIM(ColumnName) FROM DBC.IndicesV WHERE ")
	if schema != "" {
		sb.WriteString("DatabaseName = ? AND ")
		args = append(args, schema)
	}
	sb.WriteString("TableName = ? AND IndexType = 'K' ORDER BY ColumnPosition")
	args = append(args, table)
	return sb.String(), args
}

// IdentityColumnsQuery reads the per-column identity flag from DBC.ColumnsV.
// IdColType 'GA' is GENERATED ALWAYS, 'GD' is GENERATED BY DEFAULT. A close
// cousin of this answer can be read from DBC.IndicesV with IndexType = 'P'
// (the primary index), but the column flag is canonical here: it also covers
// identity columns that are not part of the primary index.
func (teradataDialect) IdentityColumnsQuery(schema, table string) (string, []any) {
	var sb strings.Builder
	args := make([]any, 0, 2)
	sb.WriteString("SELECT TRIM(ColumnName) FROM DBC.ColumnsV WHERE ")
	if schema != "" {
		sb.WriteString("DatabaseName = ? AND ")
		args = append(args, schema)
	}
	sb.WriteString("TableName = ? AND IdColType IN ('GA','GD') ORDER BY ColumnId")
	args = append(args, table)
	return sb.String(), args
}

func (teradataDialect) UniqueColumnsQuery(schema, table string) (string, []any) {
	var sb strings.Builder
	args := make([]any, 0, 2)
	sb.WriteString("SELECT IndexNumber, TRIM(ColumnName) FROM DBC.IndicesV WHERE ")
	if schema != "" {
		sb.WriteString("DatabaseName = ? AND ")
		args = append(args, schema)
	}
	sb.WriteString("TableName = ? AND UniqueFlag = 'Y' AND IndexType <> 'K' ORDER BY IndexNumber, ColumnPosition")
	args = append(args, table)
	return sb.String(), args
}

// Open fails deliberately: there is no pure-Go Teradata driver to bundle.
// Callers with a Teradata connection (ODBC bridge, vendor driver) should
// open it themselves and use the keys package directly.
func (teradataDialect) Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	return nil, fmt.Errorf("no bundled teradata driver: open a *sql.DB with your own driver and call the keys resolver directly")
}

func init() {
	Register(teradataDialect{})
}
