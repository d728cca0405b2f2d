// ABOUTME: CLI commands for Charm-based sync.
// ABOUTME: Supports link, unlink, status, repair, reset, and wipe operations.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/charm/kv"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/coach/internal/config"
	"github.com/harperreed/coach/internal/storage"
)

var noStorage = map[string]string{skipStorage: "true"}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync coach data across devices",
	Long: `Sync coach data across devices using Charm Cloud.

Sync applies when the backend is charm (--backend charm or COACH_BACKEND=charm).
Data is E2E encrypted with your SSH key before upload.

GETTING STARTED:

  1. Link your device (creates/uses SSH key automatically):
     coach sync link

  2. Copy existing data into Charm:
     coach migrate --from sqlite --to charm

  3. Use Charm from now on:
     export COACH_BACKEND=charm

COMMANDS:

  link        Link this device to your Charm account
  unlink      Disconnect this device from Charm
  status      Show sync status and account info
  repair      Repair database corruption (checkpoints WAL, removes SHM, vacuums)
  reset       Reset local data and restore from cloud (destructive)
  wipe        Delete cloud and local data (destructive)

With the charm backend, data syncs automatically after each write.`,
}

var syncLinkCmd = &cobra.Command{
	Use:         "link",
	Short:       "Link this device to Charm",
	Args:        cobra.NoArgs,
	Annotations: noStorage,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm(cmd, "link"); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}
		fmt.Fprintln(out(cmd), color.GreenString("\n✓ Device linked to Charm"))
		fmt.Fprintln(out(cmd), "Use --backend charm (or COACH_BACKEND=charm) to sync your coach data.")
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:         "unlink",
	Short:       "Disconnect from Charm",
	Args:        cobra.NoArgs,
	Annotations: noStorage,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm(cmd, "unlink"); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}
		fmt.Fprintln(out(cmd), color.GreenString("✓ Device unlinked from Charm"))
		fmt.Fprintln(out(cmd), "Your local coach data is preserved.")
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := out(cmd)
		fmt.Fprintf(w, "Backend: %s\n", cfg.GetBackend())

		if cfg.GetBackend() == config.BackendCharm {
			id, err := storage.CharmUserID()
			if err != nil {
				fmt.Fprintln(w, color.YellowString("Not linked to Charm"))
				fmt.Fprintln(w, "\nRun 'coach sync link' to connect to Charm.")
				return nil
			}
			fmt.Fprintln(w, "Charm ID:", id)
			host := cfg.CharmHost
			if host == "" {
				host = storage.DefaultCharmHost
			}
			fmt.Fprintln(w, "Server:", host)
			if storage.IsReadOnly(svc.Repo()) {
				fmt.Fprintln(w, color.YellowString("Read-only: another coach process holds the database."))
			}
		} else {
			fmt.Fprintln(w, color.New(color.Faint).Sprint("Cloud sync is off. Use --backend charm to enable it."))
		}

		stats, err := svc.Stats(currentUser())
		if err != nil {
			return friendly("get stats", err)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  User:    %s\n", currentUser())
		fmt.Fprintf(w, "  Entries: %d\n", stats.TotalCount)
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:         "wipe",
	Short:       "Delete all cloud and local data",
	Args:        cobra.NoArgs,
	Annotations: noStorage,
	Long: `Delete all Charm cloud backups and local Charm data for coach.

This is a DESTRUCTIVE operation. ALL synced data will be permanently deleted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(out(cmd), "This will PERMANENTLY DELETE all cloud backups and local coach data.")
		if !confirm(cmd, "Type 'wipe' to confirm: ", "wipe") {
			fmt.Fprintln(out(cmd), "Canceled.")
			return nil
		}

		result, err := kv.Wipe(storage.CharmDBName)
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}

		fmt.Fprintln(out(cmd), color.GreenString("✓ Data wiped successfully"))
		fmt.Fprintf(out(cmd), "  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		fmt.Fprintf(out(cmd), "  Local files deleted: %d\n", result.LocalFilesDeleted)
		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:         "repair",
	Short:       "Repair database corruption",
	Args:        cobra.NoArgs,
	Annotations: noStorage,
	Long: `Repair the local Charm database by checkpointing WAL, removing SHM files,
checking integrity, and vacuuming.

Use this when you encounter database lock errors or corruption.
Run with --force to attempt recovery even if integrity checks fail.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		w := out(cmd)

		fmt.Fprintln(w, "Repairing coach database...")
		result, err := kv.Repair(storage.CharmDBName, force)

		if result.WalCheckpointed {
			fmt.Fprintln(w, color.GreenString("  ✓ WAL checkpointed"))
		}
		if result.ShmRemoved {
			fmt.Fprintln(w, color.GreenString("  ✓ SHM file removed"))
		}
		if result.IntegrityOK {
			fmt.Fprintln(w, color.GreenString("  ✓ Integrity check passed"))
		} else {
			fmt.Fprintln(w, color.RedString("  ✗ Integrity check failed"))
		}
		if result.Vacuumed {
			fmt.Fprintln(w, color.GreenString("  ✓ Database vacuumed"))
		}

		if err != nil {
			if !force {
				fmt.Fprintln(w, color.YellowString("\nRun with --force to attempt recovery."))
			}
			return fmt.Errorf("repair failed: %w", err)
		}

		fmt.Fprintln(w, color.GreenString("\n✓ Repair complete"))
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:         "reset",
	Short:       "Reset local data and restore from cloud",
	Args:        cobra.NoArgs,
	Annotations: noStorage,
	Long: `Delete local Charm data and restore it from Charm Cloud.

Use this to fix sync conflicts or reset a device to the cloud state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(out(cmd), "This will DELETE all local coach data and restore from cloud.")
		if !confirm(cmd, "Continue? [y/N]: ", "y", "yes") {
			fmt.Fprintln(out(cmd), "Canceled.")
			return nil
		}

		if err := kv.Reset(storage.CharmDBName); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}

		fmt.Fprintln(out(cmd), color.GreenString("✓ Local data reset and restored from cloud"))
		return nil
	},
}

func runCharm(cmd *cobra.Command, arg string) error {
	c := exec.Command("charm", arg)
	c.Stdin = os.Stdin
	c.Stdout = out(cmd)
	c.Stderr = cmd.ErrOrStderr()
	return c.Run()
}

// confirm prompts and reports whether the answer is one of accept.
func confirm(cmd *cobra.Command, prompt string, accept ...string) bool {
	fmt.Fprint(out(cmd), prompt)
	return readAnswer(cmd.InOrStdin(), accept...)
}

func readAnswer(r io.Reader, accept ...string) bool {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	for _, a := range accept {
		if answer == a {
			return true
		}
	}
	return false
}

func init() {
	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncUnlinkCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncRepairCmd)
	syncCmd.AddCommand(syncResetCmd)
	syncCmd.AddCommand(syncWipeCmd)

	syncRepairCmd.Flags().Bool("force", false, "Attempt recovery even if integrity checks fail")

	rootCmd.AddCommand(syncCmd)
}
