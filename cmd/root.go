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
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/datastore-tools/keyfinder/internal/config"
	"github.com/datastore-tools/keyfinder/internal/database"
)

var (
	cfgFile string
	verbose bool

	// Database connection flags
	dialectFlag string
	host        string
	port        int
	username    string
	password    string
	dbName      string
	sslMode     string
	dsn         string

	metadataTable string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "keyfinder",
	Short: "Discover primary keys through catalog fallback strategies",
	Long: `keyfinder resolves the ordered set of columns that uniquely identify
rows in a table, classifying each as auto-generated or externally supplied.
It chains fallback strategies (override table, declared constraint, identity
column convention, heuristic) because not every catalog exposes primary keys
through one reliable interface.`,
	PersistentPreRunE: initConfigAndLogger,
	SilenceUsage:      true,
}

func initConfigAndLogger(cmd *cobra.Command, args []string) error {
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Flags override file and environment values.
	flags := cmd.Flags()
	if flags.Changed("dialect") {
		cfg.Database.Dialect = dialectFlag
	}
	if flags.Changed("host") {
		cfg.Database.Host = host
	}
	if flags.Changed("port") {
		cfg.Database.Port = port
	}
	if flags.Changed("username") {
		cfg.Database.User = username
	}
	if flags.Changed("password") {
		cfg.Database.Password = password
	}
	if flags.Changed("database") {
		cfg.Database.DBName = dbName
	}
	if flags.Changed("sslmode") {
		cfg.Database.SSLMode = sslMode
	}
	if flags.Changed("dsn") {
		cfg.Database.DSN = dsn
	}
	if flags.Changed("pk-metadata-table") {
		cfg.Keys.MetadataTable = metadataTable
	}
	return nil
}

func setupDatabase(ctx context.Context) (*database.DB, error) {
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		return nil, err
	}
	return db, nil
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default ./keyfinder.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.PersistentFlags().StringVar(&dialectFlag, "dialect", "postgres", "Database dialect (teradata, postgres, mysql, sqlserver, oracle)")
	rootCmd.PersistentFlags().StringVar(&host, "host", "localhost", "Database host")
	rootCmd.PersistentFlags().IntVar(&port, "port", 0, "Database port (0 uses the dialect default)")
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "Database username")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "Database password")
	rootCmd.PersistentFlags().StringVar(&dbName, "database", "", "Database name")
	rootCmd.PersistentFlags().StringVar(&sslMode, "sslmode", "disable", "SSL mode (postgres)")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Raw DSN; overrides the discrete connection flags")

	rootCmd.PersistentFlags().StringVar(&metadataTable, "pk-metadata-table", "", "Name of a caller-populated primary-key override table")
}
