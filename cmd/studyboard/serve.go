package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/studyboard/internal/app"
)

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder scheduler",
		Long: `Run the HTTP API and the reminder scheduler.

Settings come from the environment, a .env file is loaded first.
The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			app.InitDefaultLogger()
			app.MustReadEnv()
			app.MustInitApplicationLogger()

			app.MustConnectPostgres()
			defer app.DisconnectPostgres()

			if migrate {
				app.MustMigrate(context.Background())
			}

			app.MustListenAndServeHTTP()
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply the schema before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			app.InitDefaultLogger()
			app.MustReadEnv()
			app.MustInitApplicationLogger()

			app.MustConnectPostgres()
			defer app.DisconnectPostgres()

			app.MustMigrate(cmd.Context())
		},
	}
}
