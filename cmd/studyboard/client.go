package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/studyboard/internal/app"
)

// openClient sets up logging and the client for a terminal command.
func openClient(ctx context.Context) (*app.ClientApp, error) {
	app.InitClientLogger(verbose)
	return app.OpenClient(ctx, configPath)
}

func loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the access token",
		Long: `Sign in and remember the access token in the local state.

The password is read from STUDYBOARD_PASSWORD or prompted for when
--password is not given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			if password == "" {
				password = os.Getenv("STUDYBOARD_PASSWORD")
			}
			if password == "" {
				password, err = prompt(cmd.InOrStdin(), cmd.OutOrStdout(), "Password: ")
				if err != nil {
					return err
				}
			}

			result, err := c.API.Login(ctx, email, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			err = c.Local.SaveToken(ctx, result.AccessToken)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in, token valid until %s\n",
				result.AccessTokenExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List the devices you are signed in on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			sessions, err := c.API.ListSessions(ctx)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, s := range sessions {
				marker := " "
				if s.Current {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s  last used %s  %s\n",
					marker, s.ID, s.UpdatedAt.Local().Format("2006-01-02 15:04"), s.Fingerprint)
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "revoke <id>",
		Short:   "Sign a device out",
		Example: "  studyboard sessions revoke 0190f3a2-7c1e-7b7a-9d11-2f4c1a9e0b3d",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			err = c.API.RevokeSession(ctx, args[0])
			if err != nil {
				return fmt.Errorf("revoke session: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed out %s\n", args[0])
			return nil
		},
	})
	return cmd
}

func prompt(in io.Reader, out io.Writer, question string) (string, error) {
	fmt.Fprint(out, question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
