package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/studyboard/internal/client"
)

func generateCmd() *cobra.Command {
	var (
		timezone string
		yes      bool
	)
	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Suggest tasks from a description and create the ones you accept",
		Long: `Suggest tasks from a free-text description.

Nothing is created until the suggestions are confirmed. A prompt that
could not be turned into tasks is kept as a draft and reused when the
command runs again without one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			text := strings.Join(args, " ")
			if text == "" {
				text = c.Local.DraftPrompt(ctx)
			}
			if text == "" {
				return fmt.Errorf("nothing to generate from, pass a prompt")
			}
			if timezone == "" {
				timezone = client.LocalZone()
			}

			suggestions, err := c.API.Generate(ctx, text, timezone)
			if err != nil {
				_ = c.Local.SaveDraftPrompt(ctx, text)
				return fmt.Errorf("generate: %w (prompt kept as draft)", err)
			}

			out := cmd.OutOrStdout()
			if len(suggestions.Drafts) == 0 {
				fmt.Fprintln(out, "No tasks suggested.")
				return nil
			}
			for i, draft := range suggestions.Drafts {
				line := fmt.Sprintf("%2d. %s", i+1, draft.Title)
				if draft.Assignment != "" {
					line += " [" + draft.Assignment + "]"
				}
				if draft.HasDeadline() {
					line += " due " + draft.Deadline.Format(time.DateOnly)
				}
				if draft.Difficulty != "" {
					line += " (" + string(draft.Difficulty) + ")"
				}
				fmt.Fprintln(out, line)
			}

			if !yes {
				answer, err := prompt(cmd.InOrStdin(), out, fmt.Sprintf("Create %d tasks? [y/N] ", len(suggestions.Drafts)))
				if err != nil {
					return err
				}
				if a := strings.ToLower(answer); a != "y" && a != "yes" {
					_ = c.Local.SaveDraftPrompt(ctx, text)
					fmt.Fprintln(out, "Nothing created, prompt kept as draft.")
					return nil
				}
			}

			created := 0
			for _, draft := range suggestions.Drafts {
				_, err := c.Store.AddTask(ctx, draft)
				if err != nil {
					fmt.Fprintf(out, "could not create %q: %v\n", draft.Title, err)
					continue
				}
				created++
			}
			_ = c.Local.SaveDraftPrompt(ctx, "")
			fmt.Fprintf(out, "Created %d of %d tasks.\n", created, len(suggestions.Drafts))
			return nil
		},
	}
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone for dates, defaults to the local zone")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "create the suggestions without asking")
	return cmd
}
