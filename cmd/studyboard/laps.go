package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func lapsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "laps",
		Short: "List recorded study sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			err = c.Store.ReloadLaps(ctx)
			if err != nil {
				return fmt.Errorf("load laps: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, lap := range c.Store.Laps() {
				fmt.Fprintf(out, "#%-4d %s  %s  %s  %s\n",
					lap.SessionNumber, lap.ID, lap.CreatedAt.Local().Format("2006-01-02 15:04"), lap.Duration, lap.Name)
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "delete <id>",
		Short:   "Remove a recorded session",
		Example: "  studyboard laps delete 0190f3a2-7c1e-7b7a-9d11-2f4c1a9e0b3d",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			err = c.Store.ReloadLaps(ctx)
			if err != nil {
				return fmt.Errorf("load laps: %w", err)
			}
			err = c.Store.DeleteLap(ctx, args[0])
			if err != nil {
				return fmt.Errorf("delete lap: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	})
	return cmd
}
