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

	_ "github.com/denisenkom/go-mssqldb"

	"github.com/datastore-tools/keyfinder/internal/config"
)

// sqlServerDialect uses INFORMATION_SCHEMA plus sys.* views. SQL Server
// accepts square brackets for identifiers, which are standard and safer
// than double quotes there.
type sqlServerDialect struct{}

var _ Dialect = sqlServerDialect{}

func (sqlServerDialect) Name() string { return "sqlserver" }

func (sqlServerDialect) QuoteIdentifier(name string) string {
	return fmt.Sprintf("[%s]", name)
}

func (sqlServerDialect) Placeholder(i int) string { return fmt.Sprintf("@p%d", i) }

func (sqlServerDialect) PrimaryKeyQuery(schema, table string) (string, []any) {
	q := `SELECT kcu.COLUMN_NAME
		FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
		JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
		  ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME AND tc.TABLE_SCHEMA = kcu.TABLE_SCHEMA
		WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY' AND tc.TABLE_NAME = @table`
	if schema != "" {
		return q + ` AND tc.TABLE_SCHEMA = @schema ORDER BY kcu.ORDINAL_POSITION`,
			[]any{sql.Named("table", table), sql.Named("schema", schema)}
	}
	return q + ` ORDER BY kcu.ORDINAL_POSITION`, []any{sql.Named("table", table)}
}

func (sqlServerDialect) IdentityColumnsQuery(schema, table string) (string, []any) {
	q := `SELECT COLUMN_NAME
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_NAME = @table
		  AND COLUMNPROPERTY(OBJECT_ID(TABLE_SCHEMA + '.' + TABLE_NAME), COLUMN_NAME, 'IsIdentity') = 1`
	if schema != "" {
		return q + ` AND TABLE_SCHEMA = @schema ORDER BY ORDINAL_POSITION`,
			[]any{sql.Named("table", table), sql.Named("schema", schema)}
	}
	return q + ` ORDER BY ORDINAL_POSITION`, []any{sql.Named("table", table)}
}

func (d sqlServerDialect) UniqueColumnsQuery(schema, table string) (string, []any) {
	qualified := d.QuoteIdentifier(table)
	if schema != "" {
		qualified = d.QuoteIdentifier(schema) + "." + qualified
	}
	q := `SELECT i.name, c.name
		FROM sys.indexes i
		JOIN sys.index_columns ic ON i.object_id = ic.object_id AND i.index_id = ic.index_id
		JOIN sys.columns c ON ic.object_id = c.object_id AND ic.column_id = c.column_id
		WHERE i.is_unique = 1 AND i.is_primary_key = 0 AND i.object_id = OBJECT_ID(@qualified)
		ORDER BY i.name, ic.key_ordinal`
	return q, []any{sql.Named("qualified", qualified)}
}

func (sqlServerDialect) Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	connStr := cfg.DSN
	if connStr == "" {
		port := cfg.Port
		if port == 0 {
			port = 1433
		}
		connStr = fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			cfg.User, cfg.Password, cfg.Host, port, cfg.DBName)
	}
	pool, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, fmt.Errorf("sql.Open (sqlserver): %w", err)
	}
	return pool, nil
}

func init() {
	Register(sqlServerDialect{})
}
