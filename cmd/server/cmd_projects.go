package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/jrsteele09/aicp-web/apiclient"
	"github.com/jrsteele09/aicp-web/internal/config"
	"github.com/jrsteele09/aicp-web/internal/logging"
	"github.com/jrsteele09/aicp-web/session"
	"github.com/jrsteele09/aicp-web/session/memstore"
	"github.com/spf13/cobra"
)

func newCmdProjects() *cobra.Command {
	c := &cobra.Command{
		Use:   "projects",
		Short: "Project commands against the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	c.AddCommand(newCmdProjectsList())
	return c
}

// newCmdProjectsList signs in with the given credentials and prints the user's projects
func newCmdProjectsList() *cobra.Command {
	var (
		username string
		password string
		asJSON   bool
	)
	c := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.New()
			logging.Setup(cfg.GetEnv(), cfg.GetLogLevel())
			if err := cfg.Validate(); err != nil {
				return err
			}

			api, err := apiclient.New(cfg.GetAPIHost(), apiclient.WithTimeout(cfg.GetAPITimeout()))
			if err != nil {
				return err
			}
			sessions := session.NewController(api, memstore.New())

			ctx := cmd.Context()
			sessionID, _, err := sessions.SignIn(ctx, username, password)
			if err != nil {
				return err
			}
			defer func() { _ = sessions.SignOut(ctx, sessionID) }()

			projects, err := api.WithTokenSource(sessions.TokenSource(ctx, sessionID)).ListProjects(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(projects)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME")
			for _, p := range projects {
				fmt.Fprintf(tw, "%s\t%s\n", p.ID, p.Name)
			}
			return tw.Flush()
		},
	}
	c.Flags().StringVarP(&username, "username", "u", "", "Username to sign in with")
	c.Flags().StringVarP(&password, "password", "p", "", "Password to sign in with")
	c.Flags().BoolVar(&asJSON, "json", false, "Print projects as JSON")
	_ = c.MarkFlagRequired("username")
	_ = c.MarkFlagRequired("password")
	return c
}
