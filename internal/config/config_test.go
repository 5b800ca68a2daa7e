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
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.Database.Dialect)
	require.Equal(t, "localhost", cfg.Database.Host)
	require.Equal(t, "disable", cfg.Database.SSLMode)
	require.Empty(t, cfg.Keys.MetadataTable)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyfinder.yaml")
	content := `
database:
  dialect: teradata
  host: dbc.example.com
  port: 1025
  dbname: sales
keys:
  metadata_table: pk_metadata
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "teradata", cfg.Database.Dialect)
	require.Equal(t, "dbc.example.com", cfg.Database.Host)
	require.Equal(t, 1025, cfg.Database.Port)
	require.Equal(t, "sales", cfg.Database.DBName)
	require.Equal(t, "pk_metadata", cfg.Keys.MetadataTable)
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("KEYFINDER_DATABASE_DIALECT", "mysql")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "mysql", cfg.Database.Dialect)
}
