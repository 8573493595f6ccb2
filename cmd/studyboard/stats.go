package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/studyboard/internal/app"
	"github.com/adanyl0v/studyboard/internal/chart"
	"github.com/adanyl0v/studyboard/internal/client"
	"github.com/adanyl0v/studyboard/internal/stats"
)

func statsCmd() *cobra.Command {
	var (
		window string
		offset int
		width  int
		watch  bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print study time for a day, week, month or year",
		Example: `  studyboard stats --window week
  studyboard stats --window month --offset -1
  studyboard stats --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := stats.ParseKind(window)
			if err != nil {
				return err
			}
			w := stats.Window{Kind: kind, Offset: offset}

			ctx := cmd.Context()
			c, err := openClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			err = c.Store.Reload(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printStats(out, c, w, width)
			if !watch {
				return nil
			}

			return c.API.StreamLaps(ctx, func(e client.StreamEvent) {
				if !strings.HasPrefix(e.Name, "lap.") {
					return
				}
				reloadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				defer cancel()
				if c.Store.ReloadLaps(reloadCtx) == nil {
					fmt.Fprintln(out)
					printStats(out, c, w, width)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&window, "window", "w", string(stats.KindWeek), "day, week, month or year")
	cmd.Flags().IntVarP(&offset, "offset", "o", 0, "periods from now, negative goes back")
	cmd.Flags().IntVar(&width, "width", 40, "width of the longest bar")
	cmd.Flags().BoolVar(&watch, "watch", false, "redraw when laps change")
	return cmd
}

func printStats(out io.Writer, c *app.ClientApp, w stats.Window, width int) {
	summary := c.Store.Stats(w, time.Now(), c.Config.MonthlyGoalMinutes)
	fmt.Fprintln(out, chart.Render(summary, width))
}
