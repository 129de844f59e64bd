package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"libapi/internal/config"
	"libapi/internal/database"
	"libapi/internal/database/migration"
	"libapi/internal/logging"
	"libapi/internal/repository/sqlstore"
)

func newMigrateCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the catalog schema if it does not exist and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger := logging.New(cmd.OutOrStdout(), logging.ParseLevel(cfg.LogLevel), cfg.Location())

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return migrate(ctx, cfg, logger)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "maximum time to wait for the migration")
	return cmd
}

func migrate(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	dialect, err := sqlstore.DialectFor(cfg.Database.Driver)
	if err != nil {
		return err
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	return migration.EnsureMigrated(ctx, db, dialect.Name(), logger, dbHost(cfg.Database))
}

// dbHost names the database in logs without credentials.
func dbHost(c config.DatabaseConfig) string {
	if c.Driver == database.DriverSQLite {
		return c.SQLitePath
	}
	return c.Host
}
