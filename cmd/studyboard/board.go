package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/adanyl0v/studyboard/internal/events"
	"github.com/adanyl0v/studyboard/internal/tui"
)

func boardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the task board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			toasts := c.Bus.Subscribe(events.TopicToast)
			defer c.Bus.Unsubscribe(toasts)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go follow(ctx, c)

			model := tui.NewBoardModel(c.Store, c.Local, c.Config.Workspace, toasts)
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
}

func timerCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Run the Pomodoro study timer",
		Long: `Run the Pomodoro study timer.

Finished focus phases are saved as laps. The timer state survives
restarts, time keeps counting while the timer is closed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			model := tui.NewTimerModel(c.Store, c.Local, c.Bus, name, nil)
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "name of the study session")
	return cmd
}
