package main

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/iota-uz/levels/modules/levels"
	"github.com/iota-uz/levels/pkg/configuration"
)

const migrationsDir = "infrastructure/persistence/schema"

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the levels schema",
	}
	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateDownCmd())
	return cmd
}

func openMigrationDB() (*sql.DB, error) {
	db, err := sql.Open("pgx", configuration.Use().Database.Opts)
	if err != nil {
		return nil, fmt.Errorf("db open failed: %w", err)
	}
	goose.SetBaseFS(levels.MigrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openMigrationDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			return goose.UpContext(cmd.Context(), db, migrationsDir)
		},
	}
}

func newMigrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openMigrationDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			return goose.DownContext(cmd.Context(), db, migrationsDir)
		},
	}
}
