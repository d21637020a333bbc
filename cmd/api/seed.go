package main

import (
	"github.com/spf13/cobra"

	"github.com/jwalitptl/careline-api/internal/service/seed"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample cases when the case table is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := seed.NewSeeder(store.repos.Cases).Run(ctx)
			if err != nil {
				return err
			}
			a.log.Info("seed finished", "inserted", n)
			return nil
		},
	}
}
