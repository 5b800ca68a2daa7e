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
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/datastore-tools/keyfinder/internal/config"
)

// Dialect supplies identifier quoting and the catalog SQL for one database
// engine. Query builders return the SQL text together with its bind
// arguments; the schema-qualified and unqualified shapes differ per engine,
// so both are constructed here rather than at the call site.
type Dialect interface {
	Name() string

	// QuoteIdentifier wraps a single identifier in the engine's quoting.
	QuoteIdentifier(name string) string

	// Placeholder returns the bind marker for the i-th argument (1-based).
	Placeholder(i int) string

	// PrimaryKeyQuery selects the declared primary-key column names for the
	// table, one per row, in key-sequence order.
	PrimaryKeyQuery(schema, table string) (string, []any)

	// IdentityColumnsQuery selects the names of columns whose values the
	// engine generates (identity, auto-increment or sequence-backed), one
	// per row, in column order.
	IdentityColumnsQuery(schema, table string) (string, []any)

	// UniqueColumnsQuery selects (index, column) pairs for unique indexes
	// and constraints on the table, excluding the primary key, ordered by
	// index then position.
	UniqueColumnsQuery(schema, table string) (string, []any)

	// Open builds a connection pool for the engine from cfg. It does not
	// verify connectivity; callers ping.
	Open(cfg config.DatabaseConfig) (*sql.DB, error)
}

var (
	dialects = make(map[string]Dialect)
	mu       sync.RWMutex
)

// Register makes a dialect available under its Name. Called from init() in
// each engine file.
func Register(d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := dialects[d.Name()]; exists {
		log.Printf("WARN: dialect %q is being overwritten.", d.Name())
	}
	dialects[d.Name()] = d
}

// Get returns the dialect registered under name.
func Get(name string) (Dialect, error) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported dialect: %s (supported: %s)", name, strings.Join(names(), ", "))
	}
	return d, nil
}

// Names lists the registered dialect names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	return names()
}

func names() []string {
	out := make([]string, 0, len(dialects))
	for name := range dialects {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
