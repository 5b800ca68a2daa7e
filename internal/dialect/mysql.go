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

	"github.com/go-sql-driver/mysql"

	"github.com/datastore-tools/keyfinder/internal/config"
)

// mysqlDialect treats the MySQL "schema" as the database, matching how the
// server itself conflates the two.
type mysqlDialect struct{}

var _ Dialect = mysqlDialect{}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) QuoteIdentifier(name string) string {
	return fmt.Sprintf("`%s`", name)
}

func (mysqlDialect) Placeholder(int) string { return "?" }

func (mysqlDialect) PrimaryKeyQuery(schema, table string) (string, []any) {
	q := `SELECT COLUMN_NAME
		FROM information_schema.KEY_COLUMN_USAGE
		WHERE CONSTRAINT_NAME = 'PRIMARY' AND TABLE_NAME = ? AND TABLE_SCHEMA = `
	if schema != "" {
		return q + `? ORDER BY ORDINAL_POSITION`, []any{table, schema}
	}
	return q + `DATABASE() ORDER BY ORDINAL_POSITION`, []any{table}
}

func (mysqlDialect) IdentityColumnsQuery(schema, table string) (string, []any) {
	q := `SELECT COLUMN_NAME
		FROM information_schema.COLUMNS
		WHERE TABLE_NAME = ? AND EXTRA LIKE '%auto_increment%' AND TABLE_SCHEMA = `
	if schema != "" {
		return q + `? ORDER BY ORDINAL_POSITION`, []any{table, schema}
	}
	return q + `DATABASE() ORDER BY ORDINAL_POSITION`, []any{table}
}

func (mysqlDialect) UniqueColumnsQuery(schema, table string) (string, []any) {
	q := `SELECT INDEX_NAME, COLUMN_NAME
		FROM information_schema.STATISTICS
		WHERE TABLE_NAME = ? AND NON_UNIQUE = 0 AND INDEX_NAME <> 'PRIMARY' AND TABLE_SCHEMA = `
	if schema != "" {
		return q + `? ORDER BY INDEX_NAME, SEQ_IN_INDEX`, []any{table, schema}
	}
	return q + `DATABASE() ORDER BY INDEX_NAME, SEQ_IN_INDEX`, []any{table}
}

func (mysqlDialect) Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	connStr := cfg.DSN
	if connStr == "" {
		port := cfg.Port
		if port == 0 {
			port = 3306
		}
		mysqlCfg := mysql.Config{
			User:                 cfg.User,
			Passwd:               cfg.Password,
			Net:                  "tcp",
			Addr:                 fmt.Sprintf("%s:%d", cfg.Host, port),
			DBName:               cfg.DBName,
			AllowNativePasswords: true,
			ParseTime:            true,
		}
		connStr = mysqlCfg.FormatDSN()
	}
	pool, err := sql.Open("mysql", connStr)
	if err != nil {
		return nil, fmt.Errorf("sql.Open (mysql): %w", err)
	}
	return pool, nil
}

func init() {
	Register(mysqlDialect{})
}
