package cli

import (
	"fmt"

	"github.com/compozy/defaultdesk/engine/infra/postgres"
	"github.com/compozy/defaultdesk/engine/infra/sqlite"
	"github.com/compozy/defaultdesk/pkg/config"
	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/spf13/cobra"
)

const auditDriverSQLite = "sqlite"

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	cmd.PersistentFlags().String("audit-driver", "", "Audit log driver (postgres, sqlite)")
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE:  runMigrateUp,
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent postgres migration",
			RunE:  runMigrateDown,
		},
	)
	return cmd
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	log := logger.FromContext(ctx)
	if err := postgres.ApplyMigrations(ctx, postgres.FromAppConfig(cfg).DSN()); err != nil {
		return fmt.Errorf("postgres migrations failed: %w", err)
	}
	log.Info("Postgres schema is up to date")
	if cfg.Audit.Driver != auditDriverSQLite {
		return nil
	}
	if err := sqlite.ApplyMigrations(ctx, cfg.Audit.SQLitePath); err != nil {
		return fmt.Errorf("audit sqlite migrations failed: %w", err)
	}
	log.Info("Audit schema is up to date", "path", cfg.Audit.SQLitePath)
	return nil
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	if err := postgres.RollbackMigration(ctx, postgres.FromAppConfig(cfg).DSN()); err != nil {
		return fmt.Errorf("postgres rollback failed: %w", err)
	}
	logger.FromContext(ctx).Info("Rolled back one postgres migration")
	return nil
}
