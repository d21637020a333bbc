package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/careline-api/internal/repository/postgres"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Database.Driver != "postgres" {
				return errors.New("migrate requires the postgres driver")
			}
			ctx := cmd.Context()

			db, err := postgres.NewDB(ctx, a.cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := postgres.NewMigrator(db).Up(ctx)
			if err != nil {
				return err
			}
			a.log.Info("migrations applied", "count", applied)
			return nil
		},
	}
}
