// ABOUTME: Profile model holding a user's long-lived training preferences.
// ABOUTME: Created lazily with defaults; compared structurally for sync checks.
package models

import (
	"slices"
	"time"
)

// Profile defaults applied when a user is first seen.
const (
	DefaultTrainingSplit = "Push/Pull/Legs"
	DefaultDaysPerWeek   = 4
)

// Profile is one user's stable preferences and context.
type Profile struct {
	UserID        string    `json:"user_id" yaml:"user_id"`
	Name          string    `json:"name,omitempty" yaml:"name,omitempty"`
	TrainingSplit string    `json:"training_split" yaml:"training_split"`
	DaysPerWeek   int       `json:"days_per_week" yaml:"days_per_week"`
	Goals         []string  `json:"goals,omitempty" yaml:"goals,omitempty"`
	InjuryNotes   string    `json:"injury_notes,omitempty" yaml:"injury_notes,omitempty"`
	DietaryNotes  string    `json:"dietary_notes,omitempty" yaml:"dietary_notes,omitempty"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewProfile creates a Profile with default preferences.
func NewProfile(userID string) *Profile {
	return &Profile{
		UserID:        userID,
		TrainingSplit: DefaultTrainingSplit,
		DaysPerWeek:   DefaultDaysPerWeek,
		UpdatedAt:     time.Now().UTC(),
	}
}

// Equal compares every field except UpdatedAt.
// A nil Goals slice equals an empty one.
func (p *Profile) Equal(other *Profile) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.UserID == other.UserID &&
		p.Name == other.Name &&
		p.TrainingSplit == other.TrainingSplit &&
		p.DaysPerWeek == other.DaysPerWeek &&
		slices.Equal(p.Goals, other.Goals) &&
		p.InjuryNotes == other.InjuryNotes &&
		p.DietaryNotes == other.DietaryNotes
}

// Clone returns a deep copy.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	if p.Goals != nil {
		c.Goals = append([]string{}, p.Goals...)
	}
	return &c
}
