// Package cmd provides the command-line interface for the Sentry relay.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/danielolaszy/sentry-relay/internal/config"
	"github.com/danielolaszy/sentry-relay/internal/logging"
	"github.com/danielolaszy/sentry-relay/internal/metrics"
	"github.com/danielolaszy/sentry-relay/internal/relay"
	"github.com/danielolaszy/sentry-relay/internal/sentry"
	"github.com/spf13/cobra"
)

// logOutput receives log records; commands print results to stdout, so logs
// go to stderr.
var logOutput io.Writer = os.Stderr

var rootCmd = &cobra.Command{
	Use:   "sentry-relay",
	Short: "Sentry relay looks up Sentry issues and returns a simplified view",
	Long: `Sentry relay accepts a Sentry issue ID or issue URL, fetches the issue from the
Sentry API and reshapes it into a small, stable document: title, status, level,
timestamps, event count and a flattened stacktrace.

Run it as an HTTP service with 'serve', or look up a single issue with 'issue'.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(issueCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment and applies the logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.SetupLogger(logOutput, logging.LogLevel(cfg.Logging.Level), logging.Format(cfg.Logging.Format))
	return cfg, nil
}

// newService wires the Sentry client and relay service for cfg.
func newService(cfg *config.Config, tokens relay.TokenProvider, m *metrics.Metrics) (*relay.Service, error) {
	client, err := sentry.NewClient(cfg.Sentry.APIURL, sentry.WithTimeout(cfg.Sentry.Timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sentry client: %w", err)
	}
	return relay.NewService(client, tokens, m), nil
}
