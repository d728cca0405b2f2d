// ABOUTME: Tests for windows, recent analysis, weekly summaries, and split balance.
// ABOUTME: Builds entry sequences in memory; no storage involved.
package aggregate

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/coach/internal/metrics"
	"github.com/harperreed/coach/internal/models"
)

// day builds a derived entry for 2025-01-<n>.
func day(n int, training string, energy *float64) *models.Entry {
	date := time.Date(2025, 1, n, 0, 0, 0, 0, time.UTC).Format(models.DateLayout)
	e := models.NewEntry("yoel", date)
	e.TrainingDone = training
	e.Energy = energy
	metrics.Derive(e)
	return e
}

// desc orders entries newest first, as the store returns them.
func desc(entries ...*models.Entry) []*models.Entry {
	out := make([]*models.Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

func TestWindowAnchorsOnNewestEntry(t *testing.T) {
	entries := desc(day(1, "", nil), day(5, "", nil), day(9, "", nil), day(11, "", nil))

	got := Window(entries, 7)
	var dates []string
	for _, e := range got {
		dates = append(dates, e.Date)
	}
	assert.Equal(t, []string{"2025-01-11", "2025-01-09", "2025-01-05"}, dates)
	assert.Len(t, Window(entries, 0), 4)
	assert.Empty(t, Window(nil, 7))
}

func TestAnalyzeRecent(t *testing.T) {
	e1 := day(10, "Push Day", models.Float(6))
	e1.Soreness = []string{"shoulder"}
	e2 := day(11, "rest", nil)
	e2.Soreness = []string{}
	e3 := day(12, "Legs", models.Float(8))
	e3.Soreness = []string{"knee", "shoulder"}

	a := AnalyzeRecent(desc(e1, e2, e3), 7)

	assert.False(t, a.NoData)
	assert.Equal(t, 3, a.EntryCount)
	require.NotNil(t, a.AverageEnergy)
	assert.Equal(t, 7.0, *a.AverageEnergy)
	assert.Equal(t, 2, a.TrainingDays)
	assert.Equal(t, []string{"knee", "shoulder"}, a.Soreness)
	assert.Contains(t, a.Text(), "Average energy: 7.0/10")
	assert.Contains(t, a.Text(), "Training frequency: 2 days")
}

func TestAnalyzeRecentNoData(t *testing.T) {
	a := AnalyzeRecent(nil, 7)
	assert.True(t, a.NoData)
	assert.Nil(t, a.AverageEnergy)
	assert.Equal(t, "No training history available yet.", a.Text())
}

func TestAnalyzeRecentWithoutEnergy(t *testing.T) {
	a := AnalyzeRecent(desc(day(1, "Pull", nil)), 7)
	assert.False(t, a.NoData)
	assert.Nil(t, a.AverageEnergy, "no energy values must not produce a degenerate average")
	assert.NotContains(t, a.Text(), "Average energy")
}

func TestWeeklyInsufficientData(t *testing.T) {
	_, err := Weekly(desc(day(1, "Push", models.Float(5)), day(2, "Pull", models.Float(6))))
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}

	// Old entries outside the week don't count toward the minimum.
	_, err = Weekly(desc(day(1, "Push", nil), day(12, "Pull", nil), day(13, "Legs", nil)))
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestWeeklySummary(t *testing.T) {
	a := day(11, "Push Day - Heavy", models.Float(4))
	a.SleepHours = models.Float(6)
	b := day(12, "Pull Day", models.Float(6))
	c := day(13, "rest", models.Float(8))
	c.SleepHours = models.Float(8)

	s, err := Weekly(desc(a, b, c))
	require.NoError(t, err)

	assert.Equal(t, "2025-01-11", s.StartDate)
	assert.Equal(t, "2025-01-13", s.EndDate)
	assert.Equal(t, 3, s.TotalDays)
	assert.Equal(t, 2, s.TrainingDays)
	require.NotNil(t, s.AvgEnergy)
	assert.Equal(t, 6.0, *s.AvgEnergy)
	require.NotNil(t, s.AvgSleep)
	assert.Equal(t, 7.0, *s.AvgSleep)
	require.NotNil(t, s.AvgRecovery)
	assert.Equal(t, &DayScore{Date: "2025-01-13", Energy: 8}, s.BestDay)
	assert.Equal(t, &DayScore{Date: "2025-01-11", Energy: 4}, s.WorstDay)
	assert.Equal(t, 1, s.SplitCounts[models.SplitPush])
	assert.Equal(t, 1, s.SplitCounts[models.SplitPull])
	assert.Equal(t, 1, s.SplitCounts[models.SplitRest])
	assert.Equal(t, 0, s.SplitCounts[models.SplitLegs])
	assert.Contains(t, s.Insights, "No leg training this week.")
}

func TestWeeklySummaryWithoutEnergy(t *testing.T) {
	s, err := Weekly(desc(day(1, "Push", nil), day(2, "Pull", nil), day(3, "Legs", nil)))
	require.NoError(t, err)
	assert.Nil(t, s.AvgEnergy)
	assert.Nil(t, s.BestDay)
	assert.Nil(t, s.WorstDay)
}

func TestDetectSplitImbalance(t *testing.T) {
	imbalanced := desc(
		day(1, "Push", nil), day(2, "Push", nil), day(3, "Push", nil),
		day(4, "Pull", nil), day(5, "Legs", nil),
	)
	assert.True(t, DetectSplitImbalance(imbalanced))

	balanced := desc(
		day(1, "Push", nil), day(2, "Push", nil),
		day(3, "Pull", nil), day(4, "Pull", nil), day(5, "Legs", nil),
	)
	assert.False(t, DetectSplitImbalance(balanced))

	// Push days older than the week are ignored.
	old := desc(day(1, "Push", nil), day(2, "Push", nil), day(3, "Push", nil), day(20, "Pull", nil))
	assert.False(t, DetectSplitImbalance(old))
}

func TestAggregationsDoNotMutateInput(t *testing.T) {
	entries := desc(
		day(1, "Push Day - Heavy", models.Float(5)),
		day(2, "Pull Day - Light", models.Float(6)),
		day(3, "Legs moderate", models.Float(7)),
		day(4, "Yoga", models.Float(8)),
	)
	before := make([]*models.Entry, len(entries))
	snapshot := make([]models.Entry, len(entries))
	for i, e := range entries {
		before[i] = e
		snapshot[i] = *e.Clone()
	}

	first, _ := Weekly(entries)
	second, _ := Weekly(entries)
	_ = AnalyzeRecent(entries, 7)
	_ = DetectProgression(entries, 14)
	_ = DetectPlateau(entries, 7)
	_ = NutritionPatterns(entries, 7)

	assert.Equal(t, first, second, "Weekly must be idempotent")
	for i := range entries {
		if entries[i] != before[i] {
			t.Fatalf("input order changed at %d", i)
		}
		if !reflect.DeepEqual(*entries[i], snapshot[i]) {
			t.Fatalf("entry %d mutated", i)
		}
	}
}
