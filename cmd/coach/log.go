// ABOUTME: CLI command for logging a day of wellness and training.
// ABOUTME: Flags map onto the flat record form; one entry per date, replaced on re-log.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/coach/internal/models"
)

var (
	logDate            string
	logMood            string
	logEnergy          string
	logSleep           string
	logSleepQuality    string
	logStress          string
	logSoreness        string
	logTraining        string
	logTrainingQuality string
	logNutrition       string
	logHydration       string
	logNotes           string
)

var logCmd = &cobra.Command{
	Use:     "log",
	Aliases: []string{"add", "a"},
	Short:   "Log a day",
	Long: `Log one day of wellness and training data.

Each date holds one entry. Logging the same date again replaces the whole
entry, so include every field you want to keep.

Scores (energy, sleep quality, stress, training quality, hydration) are 0-10.
Sleep is hours (0-24). Values that don't parse or are out of range are
dropped with a warning; the rest of the day is still saved.

Recovery score, training volume, and split are worked out for you.

EXAMPLES:

  coach log --training "Push Day - Heavy" --energy 8 --sleep 7.5
  coach log --date 2025-01-12 --training "Rest" --soreness "knee, back"
  coach log --nutrition "oats, eggs, rice" --hydration 7 --mood good`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec := models.Record{
			Date:            logDate,
			Mood:            models.Text(logMood),
			Energy:          models.Scalar(logEnergy),
			SleepHours:      models.Scalar(logSleep),
			SleepQuality:    models.Scalar(logSleepQuality),
			StressLevel:     models.Scalar(logStress),
			Soreness:        models.Scalar(logSoreness),
			TrainingDone:    logTraining,
			TrainingQuality: models.Scalar(logTrainingQuality),
			Nutrition:       logNutrition,
			Hydration:       models.Scalar(logHydration),
			Notes:           logNotes,
		}
		if rec.Date == "" {
			rec.Date = today()
		}

		e, warnings, err := svc.LogDay(currentUser(), rec)
		if err != nil {
			return friendly("log day", err)
		}

		w := out(cmd)
		fmt.Fprintln(w, color.GreenString("✓ Logged %s", e.Date))
		fmt.Fprintf(w, "  %s recovery %.1f/10  %s  volume %s\n",
			color.New(color.Faint).Sprint(e.ID.String()[:8]),
			e.RecoveryScore, e.Split, e.TrainingVolume)
		for _, warning := range warnings {
			fmt.Fprintln(w, color.YellowString("  ! %s", warning))
		}
		return nil
	},
}

func init() {
	f := logCmd.Flags()
	f.StringVarP(&logDate, "date", "d", "", "date (YYYY-MM-DD, default today)")
	f.StringVar(&logMood, "mood", "", "mood (free text or 0-10)")
	f.StringVarP(&logEnergy, "energy", "e", "", "energy 0-10")
	f.StringVarP(&logSleep, "sleep", "s", "", "sleep hours")
	f.StringVar(&logSleepQuality, "sleep-quality", "", "sleep quality 0-10")
	f.StringVar(&logStress, "stress", "", "stress level 0-10")
	f.StringVar(&logSoreness, "soreness", "", `sore areas, comma separated, or "none"`)
	f.StringVarP(&logTraining, "training", "t", "", "what you trained")
	f.StringVarP(&logTrainingQuality, "quality", "q", "", "training quality 0-10")
	f.StringVarP(&logNutrition, "nutrition", "n", "", "foods eaten, comma separated")
	f.StringVar(&logHydration, "hydration", "", "hydration 0-10")
	f.StringVar(&logNotes, "notes", "", "notes for the day")
	rootCmd.AddCommand(logCmd)
}

// describeEntry prints every reported field of an entry.
func describeEntry(cmd *cobra.Command, e *models.Entry) {
	w := out(cmd)
	faint := color.New(color.Faint)

	fmt.Fprintf(w, "%s  %s\n", color.New(color.Bold).Sprint(e.Date), faint.Sprint(e.ID.String()[:8]))
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "  %s %s\n", padRight(label, 16), value)
		}
	}
	row("Training", e.TrainingDone)
	row("Split", string(e.Split))
	row("Volume", string(e.TrainingVolume))
	row("Recovery", fmt.Sprintf("%.1f/10", e.RecoveryScore))
	row("Energy", score(e.Energy))
	row("Sleep", hours(e.SleepHours))
	row("Sleep quality", score(e.SleepQuality))
	row("Stress", score(e.StressLevel))
	row("Training quality", score(e.TrainingQuality))
	row("Mood", e.Mood)
	if e.SorenessReported() {
		if len(e.Soreness) == 0 {
			row("Soreness", "none")
		} else {
			row("Soreness", strings.Join(e.Soreness, ", "))
		}
	}
	row("Nutrition", e.Nutrition)
	row("Hydration", score(e.Hydration))
	row("Notes", e.Notes)
}

func score(f *float64) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%g/10", *f)
}

func hours(f *float64) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%gh", *f)
}
