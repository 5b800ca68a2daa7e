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

	_ "github.com/lib/pq"

	"github.com/datastore-tools/keyfinder/internal/config"
)

type postgresDialect struct{}

var _ Dialect = postgresDialect{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) QuoteIdentifier(name string) string {
	return fmt.Sprintf("%q", name)
}

func (postgresDialect) Placeholder(i int) string { return fmt.Sprintf("$%d", i) }

func (postgresDialect) PrimaryKeyQuery(schema, table string) (string, []any) {
	q := `SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_name = $1 AND tc.table_schema = `
	if schema != "" {
		return q + `$2 ORDER BY kcu.ordinal_position`, []any{table, schema}
	}
	return q + `current_schema() ORDER BY kcu.ordinal_position`, []any{table}
}

// Serial columns predate the SQL-standard identity flag, so the default
// expression is checked as well.
func (postgresDialect) IdentityColumnsQuery(schema, table string) (string, []any) {
	q := `SELECT column_name
		FROM information_schema.columns
		WHERE table_name = $1 AND (is_identity = 'YES' OR column_default LIKE 'nextval(%') AND table_schema = `
	if schema != "" {
		return q + `$2 ORDER BY ordinal_position`, []any{table, schema}
	}
	return q + `current_schema() ORDER BY ordinal_position`, []any{table}
}

func (postgresDialect) UniqueColumnsQuery(schema, table string) (string, []any) {
	q := `SELECT tc.constraint_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'UNIQUE' AND tc.table_name = $1 AND tc.table_schema = `
	if schema != "" {
		return q + `$2 ORDER BY tc.constraint_name, kcu.ordinal_position`, []any{table, schema}
	}
	return q + `current_schema() ORDER BY tc.constraint_name, kcu.ordinal_position`, []any{table}
}

func (postgresDialect) Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	connStr := cfg.DSN
	if connStr == "" {
		port := cfg.Port
		if port == 0 {
			port = 5432
		}
		connStr = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
		)
	}
	pool, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("sql.Open (postgres): %w", err)
	}
	return pool, nil
}

func init() {
	Register(postgresDialect{})
}
