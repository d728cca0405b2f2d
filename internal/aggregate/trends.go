// ABOUTME: Multi-day trend detection: progression, plateaus, and nutrition patterns.
// ABOUTME: Compares the newest points against earlier ones inside a calendar window.
package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/coach/internal/metrics"
	"github.com/harperreed/coach/internal/models"
)

// Trend is the direction of a metric over a window.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// trendPoints is the number of newest points compared against the rest.
const trendPoints = 3

// ProgressionReport holds per-metric trends. A metric with fewer than three
// points in the window has an empty trend.
type ProgressionReport struct {
	Days           int      `json:"days"`
	VolumeTrend    Trend    `json:"volume_trend,omitempty"`
	QualityTrend   Trend    `json:"quality_trend,omitempty"`
	RecoveryTrend  Trend    `json:"recovery_trend,omitempty"`
	RecentRecovery *float64 `json:"recent_recovery,omitempty"`
	Suggestions    []string `json:"suggestions,omitempty"`
}

// DetectProgression compares the mean of the newest three points of each
// metric against the mean of the earlier points within the window.
func DetectProgression(entries []*models.Entry, days int) ProgressionReport {
	report := ProgressionReport{Days: days}

	var volumes, qualities, recoveries []float64
	for _, e := range chronological(Window(entries, days)) {
		if level, ok := metrics.VolumeLevel(e.TrainingVolume); ok {
			volumes = append(volumes, level)
		}
		if e.TrainingQuality != nil {
			qualities = append(qualities, *e.TrainingQuality)
		}
		recoveries = append(recoveries, e.RecoveryScore)
	}

	report.VolumeTrend = trend(volumes)
	report.QualityTrend = trend(qualities)
	report.RecoveryTrend = trend(recoveries)
	if len(recoveries) >= trendPoints {
		recent := round1(mean(recoveries[len(recoveries)-trendPoints:]))
		report.RecentRecovery = &recent
	}
	report.Suggestions = progressionSuggestions(report)
	return report
}

// trend needs at least three chronological points. With exactly three the
// earlier mean is the oldest point alone.
func trend(points []float64) Trend {
	if len(points) < trendPoints {
		return ""
	}
	split := len(points) - trendPoints
	recent := mean(points[split:])
	earlier := points[0]
	if split > 0 {
		earlier = mean(points[:split])
	}

	switch diff := recent - earlier; {
	case diff > 1:
		return TrendImproving
	case diff < -1:
		return TrendDeclining
	}
	return TrendStable
}

func progressionSuggestions(r ProgressionReport) []string {
	var out []string
	poor := r.RecentRecovery != nil && *r.RecentRecovery < 6
	excellent := r.RecentRecovery != nil && *r.RecentRecovery > 8

	switch {
	case poor:
		out = append(out, "Consider a deload week or more recovery time")
	case excellent:
		out = append(out, "Great recovery! You can push harder")
	}

	switch {
	case r.QualityTrend == TrendDeclining:
		out = append(out, "Training quality is declining - consider deload or technique focus")
	case r.VolumeTrend == TrendImproving && poor:
		out = append(out, "Volume is climbing while recovery is poor - reduce volume or increase rest")
	case r.VolumeTrend == TrendDeclining && excellent:
		out = append(out, "Good recovery with falling volume - time to increase intensity")
	}
	return out
}

// PlateauReport flags stalled training within a window.
type PlateauReport struct {
	Days           int      `json:"days"`
	VolumePlateau  bool     `json:"volume_plateau"`
	AverageQuality *float64 `json:"average_quality,omitempty"`
	LowQuality     bool     `json:"low_quality"`
	Messages       []string `json:"messages,omitempty"`
}

// DetectPlateau flags an unchanged volume class across more than two
// training days, and a mean training quality below 6.
func DetectPlateau(entries []*models.Entry, days int) PlateauReport {
	report := PlateauReport{Days: days}

	var volumes []models.TrainingVolume
	var qualities []float64
	for _, e := range Window(entries, days) {
		if e.TrainingVolume != models.VolumeUnknown && e.TrainingVolume != models.VolumeNone {
			volumes = append(volumes, e.TrainingVolume)
		}
		if e.TrainingQuality != nil {
			qualities = append(qualities, *e.TrainingQuality)
		}
	}

	if len(volumes) > 2 {
		report.VolumePlateau = true
		for _, v := range volumes[1:] {
			if v != volumes[0] {
				report.VolumePlateau = false
				break
			}
		}
	}
	if report.VolumePlateau {
		report.Messages = append(report.Messages,
			fmt.Sprintf("Plateau: training volume has stayed %s for %d sessions.", volumes[0], len(volumes)))
	}

	report.AverageQuality = meanPtr(qualities)
	if len(qualities) > 0 && mean(qualities) < 6 {
		report.LowQuality = true
		report.Messages = append(report.Messages, "Training quality is low. Consider a deload or more recovery.")
	}
	return report
}

// FoodCount is how often a food appeared in the window.
type FoodCount struct {
	Food  string `json:"food"`
	Count int    `json:"count"`
}

// NutritionReport lists eating patterns within a window.
type NutritionReport struct {
	Days            int         `json:"days"`
	NoData          bool        `json:"no_data"`
	CommonFoods     []FoodCount `json:"common_foods,omitempty"`
	HighEnergyFoods []string    `json:"high_energy_foods,omitempty"`
	LowEnergyFoods  []string    `json:"low_energy_foods,omitempty"`
	Suggestions     []string    `json:"suggestions,omitempty"`
}

// NutritionPatterns counts comma-separated foods and relates them to energy.
// High-energy days have energy >= 7, low-energy days <= 4.
func NutritionPatterns(entries []*models.Entry, days int) NutritionReport {
	report := NutritionReport{Days: days}

	counts := make(map[string]int)
	high := make(map[string]bool)
	low := make(map[string]bool)
	for _, e := range Window(entries, days) {
		foods := splitFoods(e.Nutrition)
		for _, f := range foods {
			counts[f]++
		}
		if e.Energy == nil {
			continue
		}
		for _, f := range foods {
			switch {
			case *e.Energy >= 7:
				high[f] = true
			case *e.Energy <= 4:
				low[f] = true
			}
		}
	}

	if len(counts) == 0 {
		report.NoData = true
		return report
	}

	for food, n := range counts {
		report.CommonFoods = append(report.CommonFoods, FoodCount{Food: food, Count: n})
	}
	sort.Slice(report.CommonFoods, func(i, j int) bool {
		a, b := report.CommonFoods[i], report.CommonFoods[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Food < b.Food
	})
	if len(report.CommonFoods) > 5 {
		report.CommonFoods = report.CommonFoods[:5]
	}

	report.HighEnergyFoods = sortedKeys(high)
	report.LowEnergyFoods = sortedKeys(low)

	top := make([]string, 0, 3)
	for _, fc := range report.CommonFoods[:min(3, len(report.CommonFoods))] {
		top = append(top, fc.Food)
	}
	report.Suggestions = append(report.Suggestions, "Your most common foods: "+strings.Join(top, ", "))
	if len(report.HighEnergyFoods) > 0 {
		report.Suggestions = append(report.Suggestions,
			"Foods you eat on high-energy days: "+strings.Join(report.HighEnergyFoods[:min(3, len(report.HighEnergyFoods))], ", "))
	}
	return report
}

func splitFoods(nutrition string) []string {
	var foods []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(strings.ToLower(nutrition), ",") {
		f := strings.TrimSpace(part)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		foods = append(foods, f)
	}
	return foods
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
