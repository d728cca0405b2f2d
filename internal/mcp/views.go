// ABOUTME: Flat JSON views of entries and profiles returned by tools and resources.
// ABOUTME: Keeps tool output schemas to plain strings, numbers, and lists.
package mcp

import (
	"time"

	"github.com/harperreed/coach/internal/models"
)

type entryView struct {
	ID              string   `json:"id"`
	Date            string   `json:"date"`
	Timestamp       string   `json:"timestamp"`
	Mood            string   `json:"mood,omitempty"`
	Energy          *float64 `json:"energy,omitempty"`
	SleepHours      *float64 `json:"sleep_hours,omitempty"`
	SleepQuality    *float64 `json:"sleep_quality,omitempty"`
	StressLevel     *float64 `json:"stress_level,omitempty"`
	Soreness        []string `json:"soreness,omitempty"`
	TrainingDone    string   `json:"training_done,omitempty"`
	TrainingQuality *float64 `json:"training_quality,omitempty"`
	Nutrition       string   `json:"nutrition,omitempty"`
	Hydration       *float64 `json:"hydration,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	RecoveryScore   float64  `json:"recovery_score"`
	TrainingVolume  string   `json:"training_volume"`
	Split           string   `json:"split"`
}

func viewEntry(e *models.Entry) entryView {
	return entryView{
		ID:              e.ID.String(),
		Date:            e.Date,
		Timestamp:       e.Timestamp.UTC().Format(time.RFC3339),
		Mood:            e.Mood,
		Energy:          e.Energy,
		SleepHours:      e.SleepHours,
		SleepQuality:    e.SleepQuality,
		StressLevel:     e.StressLevel,
		Soreness:        e.Soreness,
		TrainingDone:    e.TrainingDone,
		TrainingQuality: e.TrainingQuality,
		Nutrition:       e.Nutrition,
		Hydration:       e.Hydration,
		Notes:           e.Notes,
		RecoveryScore:   e.RecoveryScore,
		TrainingVolume:  string(e.TrainingVolume),
		Split:           string(e.Split),
	}
}

func viewEntries(entries []*models.Entry) []entryView {
	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, viewEntry(e))
	}
	return out
}

type profileView struct {
	UserID        string   `json:"user_id"`
	Name          string   `json:"name,omitempty"`
	TrainingSplit string   `json:"training_split"`
	DaysPerWeek   int      `json:"days_per_week"`
	Goals         []string `json:"goals,omitempty"`
	InjuryNotes   string   `json:"injury_notes,omitempty"`
	DietaryNotes  string   `json:"dietary_notes,omitempty"`
	UpdatedAt     string   `json:"updated_at"`
}

func viewProfile(p *models.Profile) profileView {
	return profileView{
		UserID:        p.UserID,
		Name:          p.Name,
		TrainingSplit: p.TrainingSplit,
		DaysPerWeek:   p.DaysPerWeek,
		Goals:         p.Goals,
		InjuryNotes:   p.InjuryNotes,
		DietaryNotes:  p.DietaryNotes,
		UpdatedAt:     p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
