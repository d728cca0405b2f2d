// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for Claude integration.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/coach/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout. Logs go to stderr.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "coach": {
        "command": "coach",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  log_day           Log or replace one day
  get_entry         Get the entry for a date
  list_entries      List recent entries
  delete_entry      Delete the entry for a date
  get_profile       Get the training profile
  save_profile      Replace the training profile
  recent_analysis   Last 7 days at a glance
  weekly_summary    Weekly summary and insights
  progression       Trends, split balance, and plateau checks
  sync_status       Compare the store with the snapshot file
  coach_reply       Ask the coach

AVAILABLE RESOURCES:

  coach://recent    Recent entries and analysis
  coach://summary   Profile, stats, balance, and weekly summary`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(svc, syncer, currentUser())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("mcp server starting", "user", currentUser(), "backend", cfg.GetBackend())
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
