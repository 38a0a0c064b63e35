package main

import (
	"context"
	"fmt"

	"dealMintAPI/internal/app"
	"dealMintAPI/internal/store/postgres"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadEnv()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		st, err := app.OpenStore(ctx, cfg, log, false)
		if err != nil {
			return err
		}
		defer st.Close()

		pg, ok := st.(*postgres.Store)
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "store driver %q has no schema to migrate\n", cfg.StoreDriver)
			return nil
		}
		if err := pg.Migrate(); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
