// ABOUTME: CLI command for copying data between storage backends.
// ABOUTME: Opens source and destination directly so either can be the configured backend.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/coach/internal/config"
	"github.com/harperreed/coach/internal/storage"
)

var (
	migrateFrom   string
	migrateTo     string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy data between storage backends",
	Long: `Copy every user's profile and entries from one backend to another.

BACKENDS:

  sqlite   Local SQLite database (default)
  charm    Charm KV, synced across devices
  badger   Local Badger directory

Entries already in the destination are replaced for the same dates.
Run with --dry-run first to see what would be copied.

EXAMPLES:

  coach migrate --from sqlite --to charm --dry-run
  coach migrate --from charm --to sqlite`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateFrom == "" || migrateTo == "" {
			return fmt.Errorf("both --from and --to are required")
		}
		if migrateFrom == migrateTo {
			return fmt.Errorf("source and destination are both %s", migrateFrom)
		}

		src, err := openBackend(migrateFrom)
		if err != nil {
			return err
		}
		defer src.Close()

		w := out(cmd)
		if migrateDryRun {
			fmt.Fprintln(w, color.YellowString("Dry run mode - no changes will be made"))
			users, err := src.ListUsers()
			if err != nil {
				return friendly("list users", err)
			}
			for _, u := range users {
				stats, err := src.EntryStats(u)
				if err != nil {
					return friendly("count entries", err)
				}
				fmt.Fprintf(w, "  %s: %d entries\n", u, stats.TotalCount)
			}
			fmt.Fprintf(w, "Would copy %d users from %s to %s\n", len(users), migrateFrom, migrateTo)
			return nil
		}

		dst, err := openBackend(migrateTo)
		if err != nil {
			return err
		}
		defer dst.Close()

		summary, err := storage.MigrateData(src, dst)
		if err != nil {
			return friendly("migrate", err)
		}
		fmt.Fprintln(w, color.GreenString("✓ Migrated %s to %s", migrateFrom, migrateTo))
		fmt.Fprintf(w, "  Users:    %d\n", summary.Users)
		fmt.Fprintf(w, "  Profiles: %d\n", summary.Profiles)
		fmt.Fprintf(w, "  Entries:  %d\n", summary.Entries)
		return nil
	},
}

func openBackend(name string) (storage.Repository, error) {
	c := *cfg
	c.Backend = name
	switch c.GetBackend() {
	case config.BackendSQLite, config.BackendCharm, config.BackendBadger:
	default:
		return nil, fmt.Errorf("unknown backend: %s (use sqlite, charm, or badger)", name)
	}
	repo, err := c.OpenStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return repo, nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "", "source backend")
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	rootCmd.AddCommand(migrateCmd)
}
