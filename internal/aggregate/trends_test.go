// ABOUTME: Tests for progression, plateau, and nutrition pattern detection.
// ABOUTME: Checks the newest-three comparison and omission of sparse metrics.
package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/coach/internal/models"
)

func withQuality(e *models.Entry, q float64) *models.Entry {
	e.TrainingQuality = models.Float(q)
	return e
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name   string
		points []float64
		want   Trend
	}{
		{"too few", []float64{1, 9}, ""},
		{"exactly three rising", []float64{2, 5, 6}, TrendImproving},
		{"exactly three flat", []float64{5, 5, 6}, TrendStable},
		{"falling", []float64{8, 8, 8, 5, 5, 5}, TrendDeclining},
		{"small change is stable", []float64{5, 5, 6, 6, 6}, TrendStable},
		{"rising", []float64{3, 3, 6, 7, 8}, TrendImproving},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trend(tt.points))
		})
	}
}

func TestDetectProgression(t *testing.T) {
	entries := desc(
		withQuality(day(1, "Push Day - Light", models.Float(5)), 8),
		withQuality(day(2, "Pull Day - Light", models.Float(5)), 8),
		withQuality(day(3, "Legs - Heavy", models.Float(5)), 5),
		withQuality(day(4, "Push - Heavy", models.Float(5)), 5),
		withQuality(day(5, "Pull - Heavy", models.Float(5)), 5),
	)

	r := DetectProgression(entries, 14)

	assert.Equal(t, TrendImproving, r.VolumeTrend)
	assert.Equal(t, TrendDeclining, r.QualityTrend)
	assert.Equal(t, TrendStable, r.RecoveryTrend)
	require.NotNil(t, r.RecentRecovery)
	assert.Contains(t, r.Suggestions, "Training quality is declining - consider deload or technique focus")
}

func TestDetectProgressionOmitsSparseMetrics(t *testing.T) {
	entries := desc(
		withQuality(day(1, "Legs", nil), 7),
		day(2, "Other stuff", nil),
		day(3, "Yoga", nil),
	)

	r := DetectProgression(entries, 14)

	assert.Empty(t, r.VolumeTrend, "unknown volumes are not points")
	assert.Empty(t, r.QualityTrend, "one quality point is not enough")
	assert.Equal(t, TrendStable, r.RecoveryTrend)
}

func TestDetectProgressionSuggestsRecovery(t *testing.T) {
	low := func(n int) *models.Entry {
		e := day(n, "rest", models.Float(2))
		e.SleepQuality = models.Float(2)
		e.RecoveryScore = 2
		return e
	}
	r := DetectProgression(desc(low(1), low(2), low(3)), 14)
	assert.Contains(t, r.Suggestions, "Consider a deload week or more recovery time")
}

func TestDetectPlateau(t *testing.T) {
	stalled := desc(
		withQuality(day(1, "Push moderate", nil), 5),
		day(2, "rest", nil),
		withQuality(day(3, "Pull moderate", nil), 5),
		withQuality(day(4, "Legs moderate", nil), 6),
	)
	r := DetectPlateau(stalled, 7)
	assert.True(t, r.VolumePlateau)
	assert.True(t, r.LowQuality)
	assert.Len(t, r.Messages, 2)

	varied := desc(
		day(1, "Push heavy", nil),
		day(2, "Pull moderate", nil),
		day(3, "Legs moderate", nil),
	)
	r = DetectPlateau(varied, 7)
	assert.False(t, r.VolumePlateau)
	assert.False(t, r.LowQuality)
	assert.Nil(t, r.AverageQuality)
}

func TestNutritionPatterns(t *testing.T) {
	a := day(1, "", models.Float(8))
	a.Nutrition = "Oats, eggs, coffee"
	b := day(2, "", models.Float(3))
	b.Nutrition = "pizza, coffee"
	c := day(3, "", models.Float(7))
	c.Nutrition = "eggs, rice"

	r := NutritionPatterns(desc(a, b, c), 7)

	require.False(t, r.NoData)
	require.NotEmpty(t, r.CommonFoods)
	assert.Equal(t, FoodCount{Food: "coffee", Count: 2}, r.CommonFoods[0])
	assert.Equal(t, FoodCount{Food: "eggs", Count: 2}, r.CommonFoods[1])
	assert.Equal(t, []string{"coffee", "eggs", "oats", "rice"}, r.HighEnergyFoods)
	assert.Equal(t, []string{"coffee", "pizza"}, r.LowEnergyFoods)
	assert.Equal(t, "Your most common foods: coffee, eggs, oats", r.Suggestions[0])

	empty := NutritionPatterns(desc(day(1, "Push", nil)), 7)
	assert.True(t, empty.NoData)
}
