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
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/datastore-tools/keyfinder/internal/keys"
	"github.com/datastore-tools/keyfinder/internal/utils"
)

var (
	resolveSchema string
	resolveTable  string
	resolveOut    string
)

var resolveCmd = &cobra.Command{
	Use:     "resolve",
	Short:   "Resolve the primary key of a table",
	Long:    `Runs the strategy chain against the catalog and prints the resolved key columns with their roles.`,
	Example: `keyfinder resolve --dialect postgres --username user --password pass --database mydb --schema sales --table orders`,
	RunE:    runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(resolveTable) == "" {
		return fmt.Errorf("--table is required")
	}

	ctx := cmd.Context()
	db, err := setupDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []keys.Option{keys.WithLogger(logger)}
	if cfg.Keys.MetadataTable != "" {
		opts = append(opts, keys.WithMetadataTable(cfg.Keys.MetadataTable))
	}
	resolver := keys.NewResolver(db.Dialect, opts...)

	table := keys.TableRef{Schema: resolveSchema, Table: resolveTable}
	pk, err := resolver.Resolve(ctx, db.Pool, table)
	if err != nil {
		return fmt.Errorf("failed to resolve primary key for %s: %w", table, err)
	}

	report := formatKeyReport(table, pk)
	fmt.Print(report)

	if resolveOut != "" {
		out := resolveOut
		if out == "auto" {
			out = utils.DefaultOutputFilePath(cfg.Database.DBName, "resolve")
		}
		if err := utils.WriteReport(out, report); err != nil {
			return err
		}
		logger.Info("report written", zap.String("path", out))
	}
	return nil
}

func formatKeyReport(table keys.TableRef, pk *keys.PrimaryKey) string {
	var sb strings.Builder
	if pk == nil {
		fmt.Fprintf(&sb, "%s: no primary key found; callers should fall back to whole-row identity\n", table)
		return sb.String()
	}
	fmt.Fprintf(&sb, "%s: primary key with %d column(s)\n", table, len(pk.Columns))
	for i, col := range pk.Columns {
		fmt.Fprintf(&sb, "  %d. %s (%s, %s)\n", i+1, col.Name, col.Type, col.Role)
	}
	return sb.String()
}

func init() {
	resolveCmd.Flags().StringVar(&resolveSchema, "schema", "", "Schema (database) containing the table; empty uses the connection default")
	resolveCmd.Flags().StringVar(&resolveTable, "table", "", "Table to resolve the key for (required)")
	resolveCmd.Flags().StringVar(&resolveOut, "out", "", "Write the report to this file ('auto' picks a timestamped name)")
	rootCmd.AddCommand(resolveCmd)
}
