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
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/datastore-tools/keyfinder/internal/dialect"
)

var errEmptyTable = errors.New("table name is required")

// Finder is one key-discovery strategy. A nil *PrimaryKey with a nil error
// means the strategy found nothing, which is a normal outcome.
type Finder interface {
	Name() string
	FindPrimaryKey(ctx context.Context, cx Querier, table TableRef) (*PrimaryKey, error)
}

// Resolver chains finders in fixed priority order and returns the result of
// the first one that produces a non-empty key. Results are never merged
// across strategies. Every call resolves from scratch: nothing is cached
// between calls, so repeated resolution of an unchanged table is idempotent.
type Resolver struct {
	finders []Finder
	log     *zap.Logger
}

// Option configures a Resolver.
type Option func(*resolverConfig)

type resolverConfig struct {
	log           *zap.Logger
	metadataTable string
	finders       []Finder
}

// WithLogger attaches a logger for per-strategy debug output.
func WithLogger(l *zap.Logger) Option {
	return func(c *resolverConfig) { c.log = l }
}

// WithMetadataTable enables the caller-populated override table as the
// highest-priority strategy. Empty name selects DefaultMetadataTable.
func WithMetadataTable(name string) Option {
	return func(c *resolverConfig) {
		if name == "" {
			name = DefaultMetadataTable
		}
		c.metadataTable = name
	}
}

// WithFinders replaces the default strategy chain entirely. Used to inject
// custom strategies; order is priority order.
func WithFinders(finders ...Finder) Option {
	return func(c *resolverConfig) { c.finders = finders }
}

// NewResolver builds the default chain for a dialect: metadata-table
// override (when enabled), declared primary-key constraint, identity-column
// convention, then the heuristic.
func NewResolver(d dialect.Dialect, opts ...Option) *Resolver {
	cfg := resolverConfig{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	finders := cfg.finders
	if finders == nil {
		if cfg.metadataTable != "" {
			finders = append(finders, NewMetadataTableFinder(d, cfg.metadataTable))
		}
		finders = append(finders,
			NewConstraintFinder(d),
			NewIdentityFinder(d),
			NewHeuristicFinder(d),
		)
	}
	return &Resolver{finders: finders, log: cfg.log}
}

// Resolve runs the strategy chain for one table. It returns (nil, nil) when
// every strategy comes up empty: an undeclared key is a valid terminal
// outcome and the caller decides policy, typically falling back to
// whole-row identity.
func (r *Resolver) Resolve(ctx context.Context, cx Querier, table TableRef) (*PrimaryKey, error) {
	if strings.TrimSpace(table.Table) == "" {
		return nil, errEmptyTable
	}
	for _, f := range r.finders {
		pk, err := f.FindPrimaryKey(ctx, cx, table)
		if err != nil {
			return nil, err
		}
		if pk != nil {
			r.log.Debug("primary key resolved",
				zap.String("table", table.String()),
				zap.String("strategy", f.Name()),
				zap.Strings("columns", pk.ColumnNames()))
			return pk, nil
		}
		r.log.Debug("strategy found no key",
			zap.String("table", table.String()),
			zap.String("strategy", f.Name()))
	}
	return nil, nil
}
