// ABOUTME: CLI commands for stats and trend analysis over logged days.
// ABOUTME: trends picks one report: recent, weekly, progression, balance, plateau, or nutrition.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/coach/internal/aggregate"
	"github.com/harperreed/coach/internal/coach"
	"github.com/harperreed/coach/internal/models"
)

var trendsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show entry counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := svc.Stats(currentUser())
		if err != nil {
			return friendly("get stats", err)
		}
		w := out(cmd)
		fmt.Fprintf(w, "Entries:       %d\n", stats.TotalCount)
		fmt.Fprintf(w, "Last 7 days:   %d\n", stats.CountLast7Days)
		if stats.TotalCount > 0 {
			fmt.Fprintf(w, "Range:         %s to %s\n", stats.MinDate, stats.MaxDate)
			if last, err := time.Parse(models.DateLayout, stats.MaxDate); err == nil {
				fmt.Fprintf(w, "Last logged:   %s\n", humanize.Time(last))
			}
		}
		return nil
	},
}

var trendsCmd = &cobra.Command{
	Use:   "trends [report]",
	Short: "Analyse recent training",
	Long: `Analyse recent days. Windows end at your newest logged day.

REPORTS:

  recent        Last 7 days: energy, training days, soreness (default)
  weekly        Weekly summary with best/worst day and insights (needs 3 days)
  progression   Volume, quality, and recovery trends over 14 days
  balance       Push/Pull/Legs counts for the week
  plateau       Unchanged volume or low training quality this week
  nutrition     Common foods and what you eat on high-energy days

EXAMPLES:

  coach trends
  coach trends weekly
  coach trends progression --json`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"recent", "weekly", "progression", "balance", "plateau", "nutrition"},
	RunE: func(cmd *cobra.Command, args []string) error {
		report := "recent"
		if len(args) == 1 {
			report = strings.ToLower(args[0])
		}
		user := currentUser()

		var (
			v      any
			err    error
			render func(io.Writer)
		)
		switch report {
		case "recent":
			var a aggregate.RecentAnalysis
			a, err = svc.Recent(user)
			v, render = a, func(w io.Writer) { fmt.Fprint(w, a.Text()) }
		case "weekly":
			var s *aggregate.WeeklySummary
			s, err = svc.Weekly(user)
			if errors.Is(err, aggregate.ErrInsufficientData) {
				fmt.Fprintf(out(cmd), "Not enough data for a weekly summary yet (need %d days in the last week).\n",
					aggregate.MinWeeklyEntries)
				return nil
			}
			v, render = s, func(w io.Writer) { renderWeekly(w, s) }
		case "progression":
			var p aggregate.ProgressionReport
			p, err = svc.Progression(user)
			v, render = p, func(w io.Writer) { renderProgression(w, p) }
		case "balance":
			var b *coach.Balance
			b, err = svc.Balance(user)
			v, render = b, func(w io.Writer) { renderBalance(w, b) }
		case "plateau":
			var p aggregate.PlateauReport
			p, err = svc.Plateau(user)
			v, render = p, func(w io.Writer) { renderPlateau(w, p) }
		case "nutrition":
			var n aggregate.NutritionReport
			n, err = svc.Nutrition(user)
			v, render = n, func(w io.Writer) { renderNutrition(w, n) }
		default:
			return fmt.Errorf("unknown report: %s\nValid reports: recent, weekly, progression, balance, plateau, nutrition", report)
		}
		if err != nil {
			return friendly("analyse "+report, err)
		}

		if trendsJSON {
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), string(data))
			return nil
		}
		render(out(cmd))
		return nil
	},
}

func renderWeekly(w io.Writer, s *aggregate.WeeklySummary) {
	fmt.Fprintf(w, "Week %s to %s\n", s.StartDate, s.EndDate)
	fmt.Fprintf(w, "  Days logged:    %d\n", s.TotalDays)
	fmt.Fprintf(w, "  Training days:  %d\n", s.TrainingDays)
	if s.AvgEnergy != nil {
		fmt.Fprintf(w, "  Avg energy:     %.1f\n", *s.AvgEnergy)
	}
	if s.AvgRecovery != nil {
		fmt.Fprintf(w, "  Avg recovery:   %.1f\n", *s.AvgRecovery)
	}
	if s.AvgSleep != nil {
		fmt.Fprintf(w, "  Avg sleep:      %.1fh\n", *s.AvgSleep)
	}
	if s.BestDay != nil {
		fmt.Fprintf(w, "  Best day:       %s (energy %g)\n", s.BestDay.Date, s.BestDay.Energy)
	}
	if s.WorstDay != nil {
		fmt.Fprintf(w, "  Worst day:      %s (energy %g)\n", s.WorstDay.Date, s.WorstDay.Energy)
	}
	renderCounts(w, s.SplitCounts)
	for _, insight := range s.Insights {
		fmt.Fprintf(w, "  • %s\n", insight)
	}
}

func renderProgression(w io.Writer, p aggregate.ProgressionReport) {
	fmt.Fprintf(w, "Progression (last %d days)\n", p.Days)
	fmt.Fprintf(w, "  Volume:    %s\n", trendOrDash(p.VolumeTrend))
	fmt.Fprintf(w, "  Quality:   %s\n", trendOrDash(p.QualityTrend))
	fmt.Fprintf(w, "  Recovery:  %s\n", trendOrDash(p.RecoveryTrend))
	if p.RecentRecovery != nil {
		fmt.Fprintf(w, "  Recent recovery: %.1f\n", *p.RecentRecovery)
	}
	for _, s := range p.Suggestions {
		fmt.Fprintf(w, "  • %s\n", s)
	}
}

func renderBalance(w io.Writer, b *coach.Balance) {
	fmt.Fprintln(w, "Split balance (last 7 days)")
	renderCounts(w, b.Counts)
	if b.Imbalanced {
		fmt.Fprintln(w, color.YellowString("  Push, Pull, and Legs are out of balance."))
	} else {
		fmt.Fprintln(w, "  Push, Pull, and Legs are balanced.")
	}
}

func renderPlateau(w io.Writer, p aggregate.PlateauReport) {
	fmt.Fprintf(w, "Plateau check (last %d days)\n", p.Days)
	if p.AverageQuality != nil {
		fmt.Fprintf(w, "  Avg training quality: %.1f\n", *p.AverageQuality)
	}
	if len(p.Messages) == 0 {
		fmt.Fprintln(w, "  No plateau detected.")
	}
	for _, m := range p.Messages {
		fmt.Fprintf(w, "  • %s\n", m)
	}
}

func renderNutrition(w io.Writer, n aggregate.NutritionReport) {
	fmt.Fprintf(w, "Nutrition (last %d days)\n", n.Days)
	if n.NoData {
		fmt.Fprintln(w, "  No nutrition logged.")
		return
	}
	for _, fc := range n.CommonFoods {
		fmt.Fprintf(w, "  %s %d\n", padRight(fc.Food, 20), fc.Count)
	}
	for _, s := range n.Suggestions {
		fmt.Fprintf(w, "  • %s\n", s)
	}
}

func renderCounts(w io.Writer, counts map[models.Split]int) {
	var parts []string
	for _, sp := range models.AllSplits {
		if n := counts[sp]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", sp, n))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, "  Splits:         %s\n", strings.Join(parts, ", "))
	}
}

func trendOrDash(t aggregate.Trend) string {
	if t == "" {
		return "-"
	}
	return string(t)
}

func init() {
	trendsCmd.Flags().BoolVar(&trendsJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(trendsCmd)
}
