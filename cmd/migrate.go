package cmd

import (
	"fmt"

	"github.com/frahmantamala/resource-dashboard/internal/session/gormkv"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run the session store migrations embedded from db/migrations",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := appConfig.SessionStore

	conn, err := gormkv.Connect(cfg)
	if err != nil {
		return fmt.Errorf("goose: %w", err)
	}
	defer conn.Close()

	if migrateRollback {
		return gormkv.Rollback(ctx, conn, cfg.Driver)
	}
	return gormkv.Migrate(ctx, conn, cfg.Driver)
}
