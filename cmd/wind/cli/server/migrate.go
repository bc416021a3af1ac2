package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mwantia/wind/internal/agent"
	config "github.com/mwantia/wind/internal/config/server"
	"github.com/mwantia/wind/pkg/db/migrations"
	"github.com/mwantia/wind/pkg/db/store"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, m *migrations.Migrator) error {
			if err := m.Migrate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rollback",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, m *migrations.Migrator) error {
			if err := m.Rollback(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Rolled back the last migration")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, m *migrations.Migrator) error {
			statuses, err := m.Status(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tSTATE\tDESCRIPTION")
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\n", s.Version, state, s.Description)
			}
			return tw.Flush()
		}),
	})

	return cmd
}

func withMigrator(fn func(ctx context.Context, cmd *cobra.Command, m *migrations.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServerConfig()
		if err != nil {
			return fmt.Errorf("failed to load server configuration: %w", err)
		}

		if err := os.MkdirAll(filepath.Dir(cfg.Metadata.SQLite.Path), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}

		st, err := store.NewSQLiteStore(agent.SQLiteConfig(cfg.Metadata.SQLite))
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		if err := st.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect metadata store: %w", err)
		}

		return fn(ctx, cmd, migrations.NewMigrator(st.DB()))
	}
}
