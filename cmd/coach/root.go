// ABOUTME: Root Cobra command for coach CLI.
// ABOUTME: Loads config and manages the store and coaching service via PersistentPre/PostRunE.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harperreed/coach/internal/coach"
	"github.com/harperreed/coach/internal/config"
	"github.com/harperreed/coach/internal/interchange"
	"github.com/harperreed/coach/internal/logging"
	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/storage"
	"github.com/harperreed/coach/internal/validate"
)

// Version is set at build time.
var Version = "dev"

// skipStorage marks commands that run without opening the store.
const skipStorage = "skip-storage"

var (
	cfg    *config.Config
	logger *log.Logger
	svc    *coach.Service
	syncer *interchange.Syncer

	userFlag     string
	backendFlag  string
	dataDirFlag  string
	snapshotFlag string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "coach",
	Short: "Personal AI fitness coach and training log",
	Long: `Coach is a CLI for logging daily wellness and training, spotting trends,
and getting personalised coaching replies.

WHAT IT TRACKS (one entry per day):

  Wellness    mood, energy, sleep hours, sleep quality, stress, soreness
  Training    what you trained, session quality
  Nutrition   foods eaten, hydration
  Derived     recovery score (0-10), training volume, training split

QUICK START:

  $ coach log --training "Push Day - Heavy" --energy 8 --sleep 7.5
  $ coach list                      # Recent days
  $ coach trends weekly             # Weekly summary
  $ coach chat "what should I train today?"

SNAPSHOTS:

  $ coach export                    # Write the snapshot file
  $ coach status                    # Compare store and snapshot
  $ coach import backup.yaml        # Load a snapshot

MCP INTEGRATION:

  Run 'coach mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants:

  {
    "mcpServers": {
      "coach": { "command": "coach", "args": ["mcp"] }
    }
  }

CONFIGURATION:

  ~/.config/coach/config.json, overridden by COACH_* environment variables
  and the flags below. Set OPENAI_API_KEY to enable generated replies.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlags(cfg)
		logger = logging.New(os.Stderr, cfg.LogLevel)

		if !needsStorage(cmd) {
			return nil
		}
		return openService()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeService()
	},
}

func applyFlags(c *config.Config) {
	if userFlag != "" {
		c.User = userFlag
	}
	if backendFlag != "" {
		c.Backend = backendFlag
	}
	if dataDirFlag != "" {
		c.DataDir = dataDirFlag
	}
	if snapshotFlag != "" {
		c.Snapshot = snapshotFlag
	}
	if logLevelFlag != "" {
		c.LogLevel = logLevelFlag
	}
}

func needsStorage(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipStorage] == "true" {
			return false
		}
		switch c.Name() {
		case "help", cobra.ShellCompRequestCmd, "completion":
			return false
		}
	}
	return true
}

func openService() error {
	repo, err := cfg.OpenStorage()
	switch {
	case errors.Is(err, storage.ErrStorageUnavailable):
		// Reads fall back to the snapshot; writes keep failing.
		logger.Warn("store unavailable, serving reads from snapshot", "err", err)
		repo = storage.Offline(err)
	case err != nil:
		return friendly("open storage", err)
	}
	svc, err = coach.NewService(repo, coach.Options{
		Snapshot:  cfg.SnapshotReader(),
		Generator: cfg.Generator(),
		Timeout:   cfg.GetLLMTimeout(),
		Logger:    logger,
	})
	if err != nil {
		_ = repo.Close()
		return err
	}
	syncer = interchange.NewSyncer(svc.Repo(), cfg.GetSnapshotPath())
	return nil
}

func closeService() error {
	if svc == nil {
		return nil
	}
	err := svc.Close()
	svc = nil
	syncer = nil
	return err
}

// currentUser is the user every command acts for.
func currentUser() string {
	return cfg.GetUser()
}

// friendly turns service errors into messages fit for the terminal.
// Storage details go to the log instead.
func friendly(action string, err error) error {
	var verr *validate.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr
	case errors.Is(err, storage.ErrStorageUnavailable):
		logger.Error(action+" failed", "err", err)
		return fmt.Errorf("failed to %s: storage is unavailable, try again", action)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func today() string {
	return models.Today()
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version",
	Annotations: map[string]string{skipStorage: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(out(cmd), "coach %s\n", Version)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "user ID (default: config user or $USER)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "storage backend: sqlite, charm, or badger")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory")
	rootCmd.PersistentFlags().StringVar(&snapshotFlag, "snapshot", "", "snapshot file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.AddCommand(versionCmd)
}
