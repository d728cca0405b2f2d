// ABOUTME: Entry model for one user's self-reported day.
// ABOUTME: Defines TrainingVolume and Split enums plus the derived fields cached at write time.
package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the canonical calendar date format used for entry keys.
const DateLayout = "2006-01-02"

// TrainingVolume is the coarse training load classification of a day.
type TrainingVolume string

const (
	VolumeNone    TrainingVolume = "none"
	VolumeLow     TrainingVolume = "low"
	VolumeMedium  TrainingVolume = "medium"
	VolumeHigh    TrainingVolume = "high"
	VolumeUnknown TrainingVolume = "unknown"
)

// Split is the training split a day belongs to.
type Split string

const (
	SplitPush     Split = "Push"
	SplitPull     Split = "Pull"
	SplitLegs     Split = "Legs"
	SplitRecovery Split = "Recovery"
	SplitYoga     Split = "Yoga"
	SplitRest     Split = "Rest"
	SplitOther    Split = "Other"
)

// AllSplits lists every split in display order.
var AllSplits = []Split{
	SplitPush, SplitPull, SplitLegs, SplitRecovery, SplitYoga, SplitRest, SplitOther,
}

// IsValidVolume checks if a string is a known training volume.
func IsValidVolume(s string) bool {
	switch TrainingVolume(s) {
	case VolumeNone, VolumeLow, VolumeMedium, VolumeHigh, VolumeUnknown:
		return true
	}
	return false
}

// IsValidSplit checks if a string is a known split.
func IsValidSplit(s string) bool {
	for _, sp := range AllSplits {
		if string(sp) == s {
			return true
		}
	}
	return false
}

// Entry is the canonical record of one calendar day for one user.
// Numeric pointers are nil when the value was not reported.
// Soreness is nil when not reported and empty (non-nil) when reported as none.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`

	Mood            string   `json:"mood,omitempty"`
	Energy          *float64 `json:"energy,omitempty"`
	SleepHours      *float64 `json:"sleep_hours,omitempty"`
	SleepQuality    *float64 `json:"sleep_quality,omitempty"`
	StressLevel     *float64 `json:"stress_level,omitempty"`
	Soreness        []string `json:"soreness"`
	TrainingDone    string   `json:"training_done,omitempty"`
	TrainingQuality *float64 `json:"training_quality,omitempty"`
	Nutrition       string   `json:"nutrition,omitempty"`
	Hydration       *float64 `json:"hydration,omitempty"`
	Notes           string   `json:"notes,omitempty"`

	RecoveryScore  float64        `json:"recovery_score"`
	TrainingVolume TrainingVolume `json:"training_volume"`
	Split          Split          `json:"split"`
}

// NewEntry creates an empty Entry for a user and canonical date.
func NewEntry(userID, date string) *Entry {
	return &Entry{
		ID:     uuid.New(),
		UserID: userID,
		Date:   date,
	}
}

// Day returns the entry date as midnight UTC.
func (e *Entry) Day() time.Time {
	t, _ := time.Parse(DateLayout, e.Date)
	return t
}

// SorenessReported reports whether soreness was logged at all (including "none").
func (e *Entry) SorenessReported() bool {
	return e.Soreness != nil
}

// Clone returns a deep copy so callers can't mutate cached or stored values.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	c.Energy = cloneFloat(e.Energy)
	c.SleepHours = cloneFloat(e.SleepHours)
	c.SleepQuality = cloneFloat(e.SleepQuality)
	c.StressLevel = cloneFloat(e.StressLevel)
	c.TrainingQuality = cloneFloat(e.TrainingQuality)
	c.Hydration = cloneFloat(e.Hydration)
	if e.Soreness != nil {
		c.Soreness = append([]string{}, e.Soreness...)
	}
	return &c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// Float returns a pointer to f. Handy for building entries in code and tests.
func Float(f float64) *float64 {
	return &f
}

// EntryStats summarises a user's stored entries.
type EntryStats struct {
	TotalCount     int    `json:"total_count"`
	MinDate        string `json:"min_date,omitempty"`
	MaxDate        string `json:"max_date,omitempty"`
	CountLast7Days int    `json:"count_last_7_days"`
}

// LocalDate returns t's calendar date in the local time zone.
func LocalDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// Today returns the current local date. Every "today" in coach comes from here.
func Today() string {
	return LocalDate(time.Now())
}

// WeekStart returns the first date of the 7-day window ending on today.
func WeekStart(today string) string {
	t, err := time.Parse(DateLayout, today)
	if err != nil {
		return today
	}
	return t.AddDate(0, 0, -6).Format(DateLayout)
}

// StatsOf summarises entries the same way the stores do.
func StatsOf(entries []*Entry, today string) *EntryStats {
	weekStart := WeekStart(today)
	stats := &EntryStats{}
	for _, e := range entries {
		stats.TotalCount++
		if stats.MinDate == "" || e.Date < stats.MinDate {
			stats.MinDate = e.Date
		}
		if e.Date > stats.MaxDate {
			stats.MaxDate = e.Date
		}
		if e.Date >= weekStart {
			stats.CountLast7Days++
		}
	}
	return stats
}
