package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/danielolaszy/sentry-relay/internal/config"
	"github.com/spf13/cobra"
)

// issueCmd looks up a single issue without starting the service.
var issueCmd = &cobra.Command{
	Use:   "issue <issue-id-or-url>",
	Short: "Look up a single Sentry issue",
	Long: `Look up a single Sentry issue and print the simplified document as JSON.

The argument is either a numeric issue ID or an issue URL such as
https://acme.sentry.io/issues/4512/. The auth token is read from --token or,
if unset, from SENTRY_AUTH_TOKEN.

Example:
  sentry-relay issue https://acme.sentry.io/issues/4512/ --token "$SENTRY_AUTH_TOKEN"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		token, err := cmd.Flags().GetString("token")
		if err != nil {
			return err
		}
		if token == "" {
			token = cfg.Sentry.AuthToken
		}

		svc, err := newService(cfg, config.NewTokenStore(token), nil)
		if err != nil {
			return err
		}

		issue, err := svc.LookupIssue(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to look up issue: %w", err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(issue)
	},
}

func init() {
	issueCmd.Flags().StringP("token", "t", "", "Sentry auth token (defaults to SENTRY_AUTH_TOKEN)")
}
