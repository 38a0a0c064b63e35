package main

import (
	"context"
	"fmt"

	"dealMintAPI/internal/app"
	"dealMintAPI/internal/drop"
	"dealMintAPI/services"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var createDropOpts services.DemoDropOptions

var createDropCmd = &cobra.Command{
	Use:   "create-drop [deal-slug]",
	Short: "Open a drop that starts now for a deal, or for the demo deal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := createDropOpts
		if len(args) == 1 {
			opts.DealSlug = args[0]
		}
		if opts.Supply <= 0 {
			return fmt.Errorf("--supply must be positive, got %d", opts.Supply)
		}
		if opts.Hours <= 0 {
			return fmt.Errorf("--hours must be positive, got %d", opts.Hours)
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			created, err := a.Drops.CreateDemoDrop(ctx, opts)
			if err != nil {
				return err
			}
			return printJSON(cmd, drop.NewDropWithDealSummary(created))
		})
	},
}

var cancelDropCmd = &cobra.Command{
	Use:   "cancel-drop <drop-id>",
	Short: "Cancel a scheduled or live drop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dropID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid drop id %q: %w", args[0], err)
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Drops.CancelDrop(ctx, dropID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "drop %s cancelled\n", dropID)
			return nil
		})
	},
}

func init() {
	createDropCmd.Flags().IntVar(&createDropOpts.Supply, "supply", 1000, "Claims available in the drop")
	createDropCmd.Flags().IntVar(&createDropOpts.Hours, "hours", 4, "How long the drop stays open")

	rootCmd.AddCommand(createDropCmd, cancelDropCmd)
}
