// ABOUTME: CLI command for the HTTP webhook and JSON API server.
// ABOUTME: Shuts down gracefully on SIGINT/SIGTERM.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/coach/internal/webhook"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	Long: `Start the HTTP server for messaging webhooks and the JSON API.

ROUTES:

  POST   /webhook                              {"sender_id", "message_text"} -> reply
  GET    /api/users/{user}/entries             list entries (?since=YYYY-MM-DD)
  POST   /api/users/{user}/entries             log a day
  GET    /api/users/{user}/entries/{date}      get one day
  DELETE /api/users/{user}/entries/{date}      delete one day
  GET    /api/users/{user}/weekly              weekly summary
  GET    /api/users/{user}/profile             profile
  GET    /healthz                              liveness

EXAMPLES:

  coach serve
  coach serve --addr 127.0.0.1:9000
  COACH_CORS_ORIGINS=https://example.com coach serve`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = cfg.GetHTTPAddr()
		}

		server := webhook.NewServer(svc, webhook.Options{
			CORSOrigins: cfg.CORSOrigins,
			Logger:      logger,
		})

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("webhook server listening", "addr", addr, "backend", cfg.GetBackend())
		return server.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8080)")
	rootCmd.AddCommand(serveCmd)
}
