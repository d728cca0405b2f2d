// ABOUTME: Recent-window analysis and weekly summaries over entry sequences.
// ABOUTME: Pure functions; inputs are never mutated and storage is never touched.
package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/coach/internal/metrics"
	"github.com/harperreed/coach/internal/models"
)

// Default window sizes in calendar days.
const (
	RecentDays      = 7
	WeekDays        = 7
	ProgressionDays = 14
)

// MinWeeklyEntries is the fewest entries a weekly summary is computed from.
const MinWeeklyEntries = 3

// ErrInsufficientData is returned instead of a summary built from too few points.
var ErrInsufficientData = errors.New("insufficient data")

// RecentAnalysis summarises the last few days of entries.
type RecentAnalysis struct {
	Days          int      `json:"days"`
	EntryCount    int      `json:"entry_count"`
	NoData        bool     `json:"no_data"`
	AverageEnergy *float64 `json:"average_energy,omitempty"`
	TrainingDays  int      `json:"training_days"`
	Soreness      []string `json:"soreness,omitempty"`
}

// AnalyzeRecent analyses the entries within days of the newest one.
func AnalyzeRecent(entries []*models.Entry, days int) RecentAnalysis {
	window := Window(entries, days)
	a := RecentAnalysis{Days: days, EntryCount: len(window)}
	if len(window) == 0 {
		a.NoData = true
		return a
	}

	var energies []float64
	soreness := make(map[string]bool)
	for _, e := range window {
		if e.Energy != nil {
			energies = append(energies, *e.Energy)
		}
		if metrics.IsTrainingDay(e.TrainingDone) {
			a.TrainingDays++
		}
		for _, tag := range e.Soreness {
			soreness[tag] = true
		}
	}

	a.AverageEnergy = meanPtr(energies)
	for tag := range soreness {
		a.Soreness = append(a.Soreness, tag)
	}
	sort.Strings(a.Soreness)
	return a
}

// Text renders the analysis as the short summary handed to the coach.
func (a RecentAnalysis) Text() string {
	if a.NoData {
		return "No training history available yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent analysis (last %d days, %d entries):\n", a.Days, a.EntryCount)
	if a.AverageEnergy != nil {
		fmt.Fprintf(&b, "- Average energy: %.1f/10\n", *a.AverageEnergy)
	}
	fmt.Fprintf(&b, "- Training frequency: %d days\n", a.TrainingDays)
	if len(a.Soreness) > 0 {
		fmt.Fprintf(&b, "- Soreness reported: %s\n", strings.Join(a.Soreness, ", "))
	}
	return b.String()
}

// DayScore identifies a day by its energy.
type DayScore struct {
	Date   string  `json:"date"`
	Energy float64 `json:"energy"`
}

// WeeklySummary is the computed summary of one 7-day window.
type WeeklySummary struct {
	StartDate    string               `json:"start_date"`
	EndDate      string               `json:"end_date"`
	TotalDays    int                  `json:"total_days"`
	TrainingDays int                  `json:"training_days"`
	AvgEnergy    *float64             `json:"avg_energy,omitempty"`
	AvgRecovery  *float64             `json:"avg_recovery,omitempty"`
	AvgSleep     *float64             `json:"avg_sleep,omitempty"`
	BestDay      *DayScore            `json:"best_day,omitempty"`
	WorstDay     *DayScore            `json:"worst_day,omitempty"`
	SplitCounts  map[models.Split]int `json:"split_counts"`
	Insights     []string             `json:"insights,omitempty"`
}

// Weekly summarises the 7 days ending at the newest entry. It returns
// ErrInsufficientData when that window holds fewer than 3 entries.
func Weekly(entries []*models.Entry) (*WeeklySummary, error) {
	window := Window(entries, WeekDays)
	if len(window) < MinWeeklyEntries {
		return nil, fmt.Errorf("weekly summary needs %d entries, have %d: %w",
			MinWeeklyEntries, len(window), ErrInsufficientData)
	}

	days := chronological(window)
	s := &WeeklySummary{
		StartDate:   days[0].Date,
		EndDate:     days[len(days)-1].Date,
		TotalDays:   len(days),
		SplitCounts: SplitCounts(days),
	}

	var energies, recoveries, sleeps []float64
	for _, e := range days {
		if metrics.IsTrainingDay(e.TrainingDone) {
			s.TrainingDays++
		}
		recoveries = append(recoveries, e.RecoveryScore)
		if e.SleepHours != nil {
			sleeps = append(sleeps, *e.SleepHours)
		}
		if e.Energy == nil {
			continue
		}
		energies = append(energies, *e.Energy)
		// Ties go to the later day.
		if s.BestDay == nil || *e.Energy >= s.BestDay.Energy {
			s.BestDay = &DayScore{Date: e.Date, Energy: *e.Energy}
		}
		if s.WorstDay == nil || *e.Energy <= s.WorstDay.Energy {
			s.WorstDay = &DayScore{Date: e.Date, Energy: *e.Energy}
		}
	}

	s.AvgEnergy = meanPtr(energies)
	s.AvgRecovery = meanPtr(recoveries)
	s.AvgSleep = meanPtr(sleeps)
	s.Insights = weeklyInsights(s)
	return s, nil
}

func weeklyInsights(s *WeeklySummary) []string {
	var out []string
	if s.AvgEnergy != nil {
		switch {
		case *s.AvgEnergy < 6:
			out = append(out, "Energy has been low this week. Consider more rest or lighter training.")
		case *s.AvgEnergy > 8:
			out = append(out, "Great energy levels this week.")
		}
	}
	if s.AvgRecovery != nil {
		switch {
		case *s.AvgRecovery < 6:
			out = append(out, "Recovery scores are low. Focus on sleep and recovery days.")
		case *s.AvgRecovery > 8:
			out = append(out, "Excellent recovery. Training load looks well managed.")
		}
	}
	switch {
	case s.TrainingDays >= 5:
		out = append(out, "You trained frequently this week. Great consistency!")
	case s.TrainingDays <= 2:
		out = append(out, "You could increase training frequency if you're feeling good.")
	}

	push, pull := s.SplitCounts[models.SplitPush], s.SplitCounts[models.SplitPull]
	switch {
	case push > pull+1:
		out = append(out, "More push than pull work. Add pull exercises for balance.")
	case pull > push+1:
		out = append(out, "More pull than push work. Time for some push exercises.")
	}
	if s.SplitCounts[models.SplitLegs] == 0 {
		out = append(out, "No leg training this week.")
	}
	return out
}

// SplitCounts counts days per split. Every split is present in the map.
func SplitCounts(entries []*models.Entry) map[models.Split]int {
	counts := make(map[models.Split]int, len(models.AllSplits))
	for _, sp := range models.AllSplits {
		counts[sp] = 0
	}
	for _, e := range entries {
		split := e.Split
		if split == "" {
			split = metrics.Split(e.TrainingDone)
		}
		counts[split]++
	}
	return counts
}

// DetectSplitImbalance reports whether Push, Pull and Legs day counts over
// the last 7 days differ by more than one.
func DetectSplitImbalance(entries []*models.Entry) bool {
	counts := SplitCounts(Window(entries, WeekDays))
	ppl := []int{counts[models.SplitPush], counts[models.SplitPull], counts[models.SplitLegs]}
	lo, hi := ppl[0], ppl[0]
	for _, c := range ppl[1:] {
		lo = min(lo, c)
		hi = max(hi, c)
	}
	return hi-lo > 1
}
