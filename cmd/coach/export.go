// ABOUTME: CLI commands for snapshot export, import, and status.
// ABOUTME: Snapshots are JSON or YAML; markdown export is a read-only table.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/coach/internal/interchange"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export [format]",
	Short: "Export your profile and entries",
	Long: `Export your profile and every logged day.

With no arguments the snapshot file (see --snapshot) is rewritten. This is
the file read when the store is unavailable, and the one 'coach status'
compares against.

FORMATS:

  json       Full snapshot (suitable for backup/restore)
  yaml       Same snapshot, human-readable
  markdown   Table of days (for sharing; cannot be imported)

EXAMPLES:

  coach export                          # Refresh the snapshot file
  coach export json                     # Print JSON to stdout
  coach export yaml -o backup.yaml      # Save YAML to a file
  coach export -o backup.json           # Format from the file extension
  coach export markdown > log.md`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		user := currentUser()

		if len(args) == 0 {
			path := exportOutput
			if path == "" {
				path = syncer.Path()
			}
			snap, err := syncer.ExportFile(user, path)
			if err != nil {
				return friendly("export", err)
			}
			fmt.Fprintln(out(cmd), color.GreenString("✓ Exported %d entries to %s", len(snap.Entries), path))
			return nil
		}

		snap, err := syncer.Export(user)
		if err != nil {
			return friendly("export", err)
		}

		var data []byte
		switch format := args[0]; format {
		case "json":
			data, err = snap.Encode(interchange.FormatJSON)
		case "yaml":
			data, err = snap.Encode(interchange.FormatYAML)
		case "markdown":
			data = []byte(interchange.Markdown(snap))
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			fmt.Fprintln(out(cmd), color.GreenString("✓ Exported to %s", exportOutput))
			return nil
		}
		fmt.Fprintln(out(cmd), string(data))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a snapshot",
	Long: `Import a JSON or YAML snapshot (default: the snapshot file).

Each day replaces the stored day for the same date. Records that fail
validation are skipped and listed; the rest still import. Derived fields in
the file are ignored and worked out again.

EXAMPLES:

  coach import                  # Restore from the snapshot file
  coach import backup.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := syncer.Path()
		if len(args) == 1 {
			path = args[0]
		}

		result, err := syncer.ImportFile(path, currentUser())
		if err != nil {
			return friendly("import", err)
		}

		w := out(cmd)
		fmt.Fprintln(w, color.GreenString("✓ Imported from %s", path))
		fmt.Fprintf(w, "  Applied:  %d\n", result.Applied)
		if result.ProfileSaved {
			fmt.Fprintln(w, "  Profile:  saved")
		}
		if result.Warnings > 0 {
			fmt.Fprintf(w, "  Warnings: %d\n", result.Warnings)
		}
		if result.Skipped > 0 {
			fmt.Fprintln(w, color.YellowString("  Skipped:  %d", result.Skipped))
			for _, r := range result.Rejections {
				if r.Index < 0 {
					fmt.Fprintf(w, "    %s\n", r.Reason)
					continue
				}
				fmt.Fprintf(w, "    #%d %s: %s\n", r.Index, r.Date, r.Reason)
			}
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compare the store with the snapshot file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := syncer.Diff(currentUser())
		if err != nil {
			return friendly("compare snapshot", err)
		}

		w := out(cmd)
		fmt.Fprintf(w, "Snapshot: %s\n", status.SnapshotPath)
		if !status.SnapshotExists {
			fmt.Fprintln(w, color.YellowString("No snapshot yet. Run 'coach export' to create one."))
			return nil
		}
		fmt.Fprintf(w, "  Store entries:     %d\n", status.StoreCount)
		fmt.Fprintf(w, "  Snapshot entries:  %d\n", status.SnapshotCount)
		if status.Unreadable > 0 {
			fmt.Fprintf(w, "  Unreadable:        %d\n", status.Unreadable)
		}
		if !status.ProfileInSync {
			fmt.Fprintln(w, "  Profile differs")
		}
		if len(status.MissingFromSnapshot) > 0 {
			fmt.Fprintf(w, "  Not in snapshot:   %v\n", status.MissingFromSnapshot)
		}
		if len(status.MissingFromStore) > 0 {
			fmt.Fprintf(w, "  Not in store:      %v\n", status.MissingFromStore)
		}

		if status.InSync() {
			fmt.Fprintln(w, color.GreenString("✓ In sync"))
		} else {
			fmt.Fprintln(w, color.YellowString("Out of sync. Run 'coach export' or 'coach import'."))
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout, or the snapshot file with no format)")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statusCmd)
}
