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

	"github.com/datastore-tools/keyfinder/internal/keys"
)

var (
	columnsSchema string
	columnsTable  string
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Show the probed column metadata of a table",
	Long: `Runs the zero-row metadata probe and identity-flag lookup for a table and
prints each column's ordinal, type classification and auto-increment flag.`,
	RunE: runColumns,
}

func runColumns(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(columnsTable) == "" {
		return fmt.Errorf("--table is required")
	}

	ctx := cmd.Context()
	db, err := setupDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	table := keys.TableRef{Schema: columnsSchema, Table: columnsTable}
	cols, err := keys.DescribeColumns(ctx, db.Pool, db.Dialect, table)
	if err != nil {
		return fmt.Errorf("failed to probe %s: %w", table, err)
	}

	fmt.Printf("%s: %d column(s)\n", table, len(cols))
	for _, col := range cols {
		auto := ""
		if col.AutoIncrement {
			auto = " auto-increment"
		}
		fmt.Printf("  %2d. %-30s %-10s (%s)%s\n", col.Ordinal, col.Name, col.Type, col.DatabaseType, auto)
	}
	return nil
}

func init() {
	columnsCmd.Flags().StringVar(&columnsSchema, "schema", "", "Schema (database) containing the table; empty uses the connection default")
	columnsCmd.Flags().StringVar(&columnsTable, "table", "", "Table to probe (required)")
	rootCmd.AddCommand(columnsCmd)
}
