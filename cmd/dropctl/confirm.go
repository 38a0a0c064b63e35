package main

import (
	"context"

	"dealMintAPI/internal/app"

	"github.com/spf13/cobra"
)

var confirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Run one confirmation sweep over pending paid claims",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			result, err := a.Confirmations.ConfirmPendingDropClaims(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		})
	},
}

func init() {
	rootCmd.AddCommand(confirmCmd)
}
