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

	_ "github.com/sijms/go-ora/v2"

	"github.com/datastore-tools/keyfinder/internal/config"
)

// oracleDialect reads the ALL_* catalog views so a schema (owner) filter can
// be applied; without one the queries fall back to the session user.
type oracleDialect struct{}

var _ Dialect = oracleDialect{}

func (oracleDialect) Name() string { return "oracle" }

func (oracleDialect) QuoteIdentifier(name string) string {
	return fmt.Sprintf("%q", name)
}

func (oracleDialect) Placeholder(i int) string { return fmt.Sprintf(":%d", i) }

func (oracleDialect) PrimaryKeyQuery(schema, table string) (string, []any) {
	q := `SELECT cc.COLUMN_NAME
		FROM ALL_CONSTRAINTS ac
		JOIN ALL_CONS_COLUMNS cc
		  ON ac.CONSTRAINT_NAME = cc.CONSTRAINT_NAME AND ac.OWNER = cc.OWNER
		WHERE ac.CONSTRAINT_TYPE = 'P' AND ac.TABLE_NAME = :1 AND ac.OWNER = `
	if schema != "" {
		return q + `:2 ORDER BY cc.POSITION`, []any{table, schema}
	}
	return q + `USER ORDER BY cc.POSITION`, []any{table}
}

func (oracleDialect) IdentityColumnsQuery(schema, table string) (string, []any) {
	q := `SELECT COLUMN_NAME
		FROM ALL_TAB_COLUMNS
		WHERE TABLE_NAME = :1 AND IDENTITY_COLUMN = 'YES' AND OWNER = `
	if schema != "" {
		return q + `:2 ORDER BY COLUMN_ID`, []any{table, schema}
	}
	return q + `USER ORDER BY COLUMN_ID`, []any{table}
}

func (oracleDialect) UniqueColumnsQuery(schema, table string) (string, []any) {
	q := `SELECT ac.CONSTRAINT_NAME, cc.COLUMN_NAME
		FROM ALL_CONSTRAINTS ac
		JOIN ALL_CONS_COLUMNS cc
		  ON ac.CONSTRAINT_NAME = cc.CONSTRAINT_NAME AND ac.OWNER = cc.OWNER
		WHERE ac.CONSTRAINT_TYPE = 'U' AND ac.TABLE_NAME = :1 AND ac.OWNER = `
	if schema != "" {
		return q + `:2 ORDER BY ac.CONSTRAINT_NAME, cc.POSITION`, []any{table, schema}
	}
	return q + `USER ORDER BY ac.CONSTRAINT_NAME, cc.POSITION`, []any{table}
}

func (oracleDialect) Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	connStr := cfg.DSN
	if connStr == "" {
		port := cfg.Port
		if port == 0 {
			port = 1521
		}
		connStr = fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
			cfg.User, cfg.Password, cfg.Host, port, cfg.DBName)
	}
	pool, err := sql.Open("oracle", connStr)
	if err != nil {
		return nil, fmt.Errorf("sql.Open (oracle): %w", err)
	}
	return pool, nil
}

func init() {
	Register(oracleDialect{})
}
