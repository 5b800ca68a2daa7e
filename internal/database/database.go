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
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/datastore-tools/keyfinder/internal/config"
	"github.com/datastore-tools/keyfinder/internal/dialect"
)

// DB bundles the connection pool for one configured database with the
// dialect used to introspect it. The key-resolution code never opens or
// closes connections itself; this wrapper is the collaborator that does.
type DB struct {
	Pool    *sql.DB
	Dialect dialect.Dialect
	Config  config.DatabaseConfig
}

// New resolves the dialect, opens the pool and verifies connectivity with a
// ping.
func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	d, err := dialect.Get(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	pool, err := d.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool for dialect %s: %w", cfg.Dialect, err)
	}
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database (ping failed) for dialect %s: %w", cfg.Dialect, err)
	}
	return &DB{Pool: pool, Dialect: d, Config: cfg}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database connection pool is not initialized")
	}
	return db.Pool.PingContext(ctx)
}

func (db *DB) Close() error {
	if db.Pool == nil {
		return nil
	}
	return db.Pool.Close()
}
