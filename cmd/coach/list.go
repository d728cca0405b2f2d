// ABOUTME: CLI commands for reading and deleting logged days.
// ABOUTME: show prints one day in full; list prints recent days one per line.
package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/coach/internal/validate"
)

var (
	listSince string
	listLimit int
)

var showCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show one day",
	Long: `Show everything logged for a day (default today).

EXAMPLES:

  coach show
  coach show 2025-01-13`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := today()
		if len(args) == 1 {
			date = args[0]
		}

		e, err := svc.Entry(currentUser(), date)
		if err != nil {
			return friendly("get entry", err)
		}
		if e == nil {
			fmt.Fprintf(out(cmd), "Nothing logged for %s.\n", date)
			return nil
		}
		describeEntry(cmd, e)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List logged days",
	Long: `List logged days, most recent first.

OUTPUT FORMAT:

  Each line shows: DATE  SPLIT  RECOVERY  ENERGY  TRAINING  (LOGGED)

EXAMPLES:

  coach list                       # Last 20 days
  coach list -n 50                 # Last 50 days
  coach list --since 2025-01-01    # Everything since New Year`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		since := ""
		if listSince != "" {
			var err error
			if since, err = validate.ParseDate(listSince); err != nil {
				return err
			}
		}

		entries, err := svc.Entries(currentUser(), since)
		if err != nil {
			return friendly("list entries", err)
		}
		if len(entries) == 0 {
			fmt.Fprintln(out(cmd), "No entries found.")
			return nil
		}
		if listLimit > 0 && len(entries) > listLimit {
			entries = entries[:listLimit]
		}

		w := out(cmd)
		faint := color.New(color.Faint)
		for _, e := range entries {
			energy := "-"
			if e.Energy != nil {
				energy = fmt.Sprintf("%g", *e.Energy)
			}
			logged := ""
			if !e.Timestamp.IsZero() {
				logged = faint.Sprintf(" (%s)", humanize.Time(e.Timestamp))
			}
			fmt.Fprintf(w, "%s  %s  %4.1f  %s  %s%s\n",
				e.Date,
				padRight(string(e.Split), 8),
				e.RecoveryScore,
				padRight(energy, 3),
				truncate(e.TrainingDone, 30),
				logged)
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <date>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a logged day",
	Long: `Delete the entry for a date.

EXAMPLES:

  coach delete 2025-01-13`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deleted, err := svc.DeleteDay(currentUser(), args[0])
		if err != nil {
			return friendly("delete entry", err)
		}
		if !deleted {
			return fmt.Errorf("no entry for %s", args[0])
		}
		fmt.Fprintln(out(cmd), color.GreenString("✓ Deleted %s", args[0]))
		return nil
	},
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

func init() {
	listCmd.Flags().StringVar(&listSince, "since", "", "only days on or after this date")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "maximum number of days")
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
}
