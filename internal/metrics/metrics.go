// ABOUTME: Derived metrics for daily entries: recovery score, training volume, and split.
// ABOUTME: Pure functions with no I/O; every surface derives through this package.
package metrics

import (
	"math"
	"strings"

	"github.com/harperreed/coach/internal/models"
)

// Midpoint is the neutral value for 0-10 self-reported scales.
const Midpoint = 5.0

// restSentinels are training_done values that mean no training happened.
var restSentinels = map[string]bool{
	"none":          true,
	"rest":          true,
	"rest day":      true,
	"none/rest day": true,
	"off":           true,
	"day off":       true,
}

var (
	highKeywords   = []string{"heavy", "max", "intense", "failure"}
	lowKeywords    = []string{"light", "mobility", "recovery", "walk"}
	mediumKeywords = []string{"moderate", "medium", "normal"}
)

type splitRule struct {
	split    models.Split
	keywords []string
}

// Order matters: the first matching rule wins.
var splitRules = []splitRule{
	{models.SplitPush, []string{"push"}},
	{models.SplitPull, []string{"pull"}},
	{models.SplitLegs, []string{"leg", "squat", "deadlift"}},
	{models.SplitYoga, []string{"yoga"}},
	{models.SplitRecovery, []string{"mobility", "recovery"}},
}

// IsRestDay reports whether training text is empty or a rest sentinel.
func IsRestDay(trainingDone string) bool {
	text := strings.ToLower(strings.TrimSpace(trainingDone))
	return text == "" || restSentinels[text]
}

// IsTrainingDay is the complement of IsRestDay.
func IsTrainingDay(trainingDone string) bool {
	return !IsRestDay(trainingDone)
}

// TrainingVolume classifies free training text into a coarse load level.
func TrainingVolume(trainingDone string) models.TrainingVolume {
	if IsRestDay(trainingDone) {
		return models.VolumeNone
	}
	text := strings.ToLower(trainingDone)
	switch {
	case containsAny(text, highKeywords):
		return models.VolumeHigh
	case containsAny(text, lowKeywords):
		return models.VolumeLow
	case containsAny(text, mediumKeywords):
		return models.VolumeMedium
	}
	return models.VolumeUnknown
}

// Split classifies free training text into a training split.
func Split(trainingDone string) models.Split {
	if IsRestDay(trainingDone) {
		return models.SplitRest
	}
	text := strings.ToLower(trainingDone)
	for _, rule := range splitRules {
		if containsAny(text, rule.keywords) {
			return rule.split
		}
	}
	return models.SplitOther
}

// RecoveryScore estimates readiness on a 0-10 scale.
//
// The baseline is the mean of energy and sleep quality (each defaulting to
// the midpoint). Sleep duration adds +1 within [7.5, 9] hours, +0.5 within
// [6, 7.5) or (9, 10], and -1 below 6; unreported sleep adds nothing.
// High stress (> 7) and any soreness each subtract 0.5. The result is
// clamped to [0, 10] and rounded to one decimal.
func RecoveryScore(e *models.Entry) float64 {
	energy := valueOr(e.Energy, Midpoint)
	quality := valueOr(e.SleepQuality, Midpoint)
	score := (energy + quality) / 2

	if e.SleepHours != nil {
		score += sleepAdjustment(*e.SleepHours)
	}
	if e.StressLevel != nil && *e.StressLevel > 7 {
		score -= 0.5
	}
	if len(e.Soreness) > 0 {
		score -= 0.5
	}

	score = math.Max(0, math.Min(10, score))
	return math.Round(score*10) / 10
}

func sleepAdjustment(hours float64) float64 {
	switch {
	case hours >= 7.5 && hours <= 9:
		return 1
	case hours >= 6 && hours < 7.5, hours > 9 && hours <= 10:
		return 0.5
	case hours < 6:
		return -1
	}
	return 0
}

// Derive fills the cached derived fields on an entry.
func Derive(e *models.Entry) {
	e.RecoveryScore = RecoveryScore(e)
	e.TrainingVolume = TrainingVolume(e.TrainingDone)
	e.Split = Split(e.TrainingDone)
}

// VolumeLevel maps a volume class onto the 0-10 scale used for trends.
// Unknown volume has no level.
func VolumeLevel(v models.TrainingVolume) (float64, bool) {
	switch v {
	case models.VolumeNone:
		return 0, true
	case models.VolumeLow:
		return 3, true
	case models.VolumeMedium:
		return 6, true
	case models.VolumeHigh:
		return 9, true
	}
	return 0, false
}

func valueOr(f *float64, def float64) float64 {
	if f == nil {
		return def
	}
	return *f
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
