package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielolaszy/sentry-relay/internal/config"
	"github.com/danielolaszy/sentry-relay/internal/logging"
	"github.com/danielolaszy/sentry-relay/internal/metrics"
	"github.com/danielolaszy/sentry-relay/internal/server"
	"github.com/danielolaszy/sentry-relay/internal/version"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

// serveCmd runs the relay as an HTTP service.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the relay HTTP service",
	Long: `Run the relay HTTP service.

Endpoints:
  POST /config        set the Sentry auth token: {"auth_token": "..."}
  GET  /config        report whether a token is configured
  POST /sentry/issue  look up an issue: {"issue_id_or_url": "..."}
  GET  /health        health check
  GET  /metrics       Prometheus metrics

The token may also be provided at startup through SENTRY_AUTH_TOKEN.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("host") {
			cfg.Server.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if err := config.ValidateConfig(cfg); err != nil {
			return err
		}

		tokens := config.NewTokenStore(cfg.Sentry.AuthToken)
		m := metrics.New()
		svc, err := newService(cfg, tokens, m)
		if err != nil {
			return err
		}

		router := server.NewRouter(server.RouterConfig{
			Lookup:         svc,
			Tokens:         tokens,
			Metrics:        m,
			RequestTimeout: cfg.Server.RequestTimeout,
			CORSOrigins:    cfg.Server.CORSOrigins,
			Version:        version.Version,
		})

		logging.Info("starting sentry relay",
			"version", version.Version,
			"addr", cfg.Server.Addr(),
			"sentry_api_url", cfg.Sentry.APIURL,
			"token", logging.MaskSensitive(cfg.Sentry.AuthToken))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.ListenAndServe(ctx, cfg.Server.Addr(), router, shutdownTimeout)
	},
}

func init() {
	serveCmd.Flags().String("host", config.DefaultHost, "Address to listen on (overrides RELAY_HOST)")
	serveCmd.Flags().IntP("port", "p", config.DefaultPort, "Port to listen on (overrides RELAY_PORT)")
}
