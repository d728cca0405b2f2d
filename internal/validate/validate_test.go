// ABOUTME: Tests for record validation and normalisation.
// ABOUTME: Covers required fields, numeric parsing, soreness tags, and derived fields.
package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/coach/internal/models"
)

func TestValidateEndToEndScenario(t *testing.T) {
	rec := models.Record{
		Date:         "2025-01-13",
		TrainingDone: "Push Day - Moderate",
		Energy:       "8",
		SleepHours:   "7.5",
		SleepQuality: "8",
		StressLevel:  "3",
		Soreness:     "none",
	}

	e, warnings, err := Validate("yoel", rec)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "yoel", e.UserID)
	assert.Equal(t, "2025-01-13", e.Date)
	assert.Equal(t, models.SplitPush, e.Split)
	assert.Equal(t, models.VolumeMedium, e.TrainingVolume)
	assert.GreaterOrEqual(t, e.RecoveryScore, 7.5)
	assert.LessOrEqual(t, e.RecoveryScore, 9.0)
	require.NotNil(t, e.Soreness)
	assert.Empty(t, e.Soreness)
	require.NotNil(t, e.Energy)
	assert.Equal(t, 8.0, *e.Energy)
}

func TestValidateRequiresUserAndDate(t *testing.T) {
	tests := []struct {
		name  string
		user  string
		date  string
		field string
	}{
		{"missing user", "  ", "2025-01-13", "user_id"},
		{"missing date", "yoel", "", "date"},
		{"bad date", "yoel", "13/01/2025", "date"},
		{"impossible date", "yoel", "2025-02-30", "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Validate(tt.user, models.Record{Date: tt.date})
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %s, want %s", verr.Field, tt.field)
			}
		})
	}
}

func TestParseDateLayouts(t *testing.T) {
	for _, in := range []string{"2025-01-13", " 2025-01-13 ", "2025/01/13", "2025-01-13T18:30:00Z"} {
		got, err := ParseDate(in)
		if err != nil {
			t.Errorf("ParseDate(%q) error: %v", in, err)
			continue
		}
		if got != "2025-01-13" {
			t.Errorf("ParseDate(%q) = %s", in, got)
		}
	}
}

func TestValidateAllowsFutureDates(t *testing.T) {
	_, _, err := Validate("yoel", models.Record{Date: "2099-12-31"})
	assert.NoError(t, err)
}

func TestValidateDropsBadNumbers(t *testing.T) {
	rec := models.Record{
		Date:        "2025-01-13",
		Energy:      "high",
		SleepHours:  "30",
		StressLevel: "-1",
		Hydration:   "0",
	}

	e, warnings, err := Validate("yoel", rec)
	require.NoError(t, err)

	assert.Nil(t, e.Energy)
	assert.Nil(t, e.SleepHours)
	assert.Nil(t, e.StressLevel)
	require.NotNil(t, e.Hydration, "zero is a real value")
	assert.Equal(t, 0.0, *e.Hydration)

	fields := make([]string, 0, len(warnings))
	for _, w := range warnings {
		fields = append(fields, w.Field)
	}
	assert.ElementsMatch(t, []string{"energy", "sleep_hours", "stress_level"}, fields)
}

func TestValidateTimestampWarning(t *testing.T) {
	_, warnings, err := Validate("yoel", models.Record{Date: "2025-01-13", Timestamp: "yesterday"})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "timestamp", warnings[0].Field)
}

func TestParseSoreness(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"None", []string{}},
		{"knee", []string{"knee"}},
		{"Shoulder, knee , shoulder", []string{"knee", "shoulder"}},
		{"back,,none", []string{"back"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseSoreness(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateIgnoresDerivedFieldsInRecord(t *testing.T) {
	rec := models.Record{
		Date:           "2025-01-13",
		TrainingDone:   "Yoga flow session",
		RecoveryScore:  "1",
		TrainingVolume: "high",
		Split:          "Legs",
	}

	e, _, err := Validate("yoel", rec)
	require.NoError(t, err)
	assert.Equal(t, models.SplitYoga, e.Split)
	assert.Equal(t, models.VolumeUnknown, e.TrainingVolume)
	assert.Equal(t, 5.0, e.RecoveryScore)
}

func TestProfile(t *testing.T) {
	p := &models.Profile{
		UserID:      " yoel ",
		DaysPerWeek: 5,
		Goals:       []string{" handstand ", "", "pancake"},
	}
	require.NoError(t, Profile(p))
	assert.Equal(t, "yoel", p.UserID)
	assert.Equal(t, models.DefaultTrainingSplit, p.TrainingSplit)
	assert.Equal(t, []string{"handstand", "pancake"}, p.Goals)

	var verr *ValidationError
	err := Profile(&models.Profile{UserID: "yoel", DaysPerWeek: 9})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "days_per_week", verr.Field)

	err = Profile(&models.Profile{})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "user_id", verr.Field)
}
