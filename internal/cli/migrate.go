package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"devquiz/internal/config"
	"devquiz/internal/infra/sqldb"
	"devquiz/internal/infra/sqldb/migrations"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var rollback bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath, rollback)
		},
	}
	cmd.Flags().BoolVar(&rollback, "rollback", false, "roll back the last migration group")
	return cmd
}

func runMigrations(ctx context.Context, configPath string, rollback bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.Driver == "" {
		return fmt.Errorf("database driver not configured")
	}
	log := newLogger(cfg)

	db, err := sqldb.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if rollback {
		return migrations.Rollback(ctx, db, log)
	}
	return migrations.Run(ctx, db, log)
}
