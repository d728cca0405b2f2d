// ABOUTME: Tests for the coaching service against a real SQLite store.
// ABOUTME: Covers logging, cached aggregates, snapshot fallback, and reply fallback.
package coach

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/coach/internal/aggregate"
	"github.com/harperreed/coach/internal/interchange"
	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/storage"
	"github.com/harperreed/coach/internal/validate"
)

type stubGenerator struct {
	mu    sync.Mutex
	reply string
	err   error
	block bool
	calls int
	last  *Context
}

func (g *stubGenerator) Generate(ctx context.Context, c *Context, userText string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.last = c
	g.mu.Unlock()
	if g.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.reply, g.err
}

func newTestService(t *testing.T, opts Options) (*Service, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "coach.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc, err := NewService(db, opts)
	require.NoError(t, err)
	return svc, db
}

func seedWeek(t *testing.T, svc *Service) {
	t.Helper()
	days := []models.Record{
		{Date: "2025-01-11", TrainingDone: "Pull day - light", Energy: "4", Nutrition: "oats, eggs"},
		{Date: "2025-01-12", TrainingDone: "Leg day", Energy: "6", Soreness: "knee"},
		{Date: "2025-01-13", TrainingDone: "Push Day - Moderate", Energy: "8", SleepHours: "7.5",
			SleepQuality: "8", StressLevel: "3", Soreness: "none"},
	}
	for _, rec := range days {
		_, _, err := svc.LogDay("yoel", rec)
		require.NoError(t, err)
	}
}

func TestLogDayAndRead(t *testing.T) {
	svc, _ := newTestService(t, Options{})

	e, warnings, err := svc.LogDay("yoel", models.Record{
		Date: "2025/01/13", TrainingDone: "Push Day - Moderate", Energy: "8", StressLevel: "eleven",
	})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "stress_level", warnings[0].Field)
	assert.Equal(t, models.SplitPush, e.Split)

	got, err := svc.Entry("yoel", "2025-01-13T07:00:00Z")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, e.ID, got.ID)

	missing, err := svc.Entry("yoel", "2025-01-14")
	require.NoError(t, err)
	assert.Nil(t, missing)

	deleted, err := svc.DeleteDay("yoel", "2025-01-13")
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestLogDayValidationError(t *testing.T) {
	svc, _ := newTestService(t, Options{})

	_, _, err := svc.LogDay("yoel", models.Record{Date: "someday"})
	var verr *validate.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "date", verr.Field)

	_, err = svc.Entries(" ", "")
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "user_id", verr.Field)
}

func TestWritesInvalidateCachedAggregates(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	seedWeek(t, svc)

	recent, err := svc.Recent("yoel")
	require.NoError(t, err)
	assert.Equal(t, 3, recent.EntryCount)

	_, _, err = svc.LogDay("yoel", models.Record{Date: "2025-01-14", TrainingDone: "rest"})
	require.NoError(t, err)

	recent, err = svc.Recent("yoel")
	require.NoError(t, err)
	assert.Equal(t, 4, recent.EntryCount)
	assert.Equal(t, 3, recent.TrainingDays)

	_, err = svc.DeleteDay("yoel", "2025-01-14")
	require.NoError(t, err)
	entries, err := svc.Entries("yoel", "")
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestEntriesReturnsCopies(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	seedWeek(t, svc)

	first, err := svc.Entries("yoel", "")
	require.NoError(t, err)
	first[0].Notes = "scribbled"

	second, err := svc.Entries("yoel", "")
	require.NoError(t, err)
	assert.Empty(t, second[0].Notes)
}

func TestWeeklyAndTrends(t *testing.T) {
	svc, _ := newTestService(t, Options{})

	_, err := svc.Weekly("yoel")
	assert.ErrorIs(t, err, aggregate.ErrInsufficientData)

	seedWeek(t, svc)

	summary, err := svc.Weekly("yoel")
	require.NoError(t, err)
	require.NotNil(t, summary.AvgEnergy)
	assert.Equal(t, 6.0, *summary.AvgEnergy)
	assert.Equal(t, 3, summary.TrainingDays)

	balance, err := svc.Balance("yoel")
	require.NoError(t, err)
	assert.Equal(t, 1, balance.Counts[models.SplitPush])
	assert.False(t, balance.Imbalanced)

	imbalanced, err := svc.Imbalance("yoel")
	require.NoError(t, err)
	assert.False(t, imbalanced)

	progression, err := svc.Progression("yoel")
	require.NoError(t, err)
	assert.Equal(t, aggregate.ProgressionDays, progression.Days)

	nutrition, err := svc.Nutrition("yoel")
	require.NoError(t, err)
	assert.False(t, nutrition.NoData)

	_, err = svc.Plateau("yoel")
	require.NoError(t, err)

	stats, err := svc.Stats("yoel")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCount)
}

func TestSaveProfileValidates(t *testing.T) {
	svc, _ := newTestService(t, Options{})

	p, err := svc.Profile("yoel")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTrainingSplit, p.TrainingSplit)

	p.DaysPerWeek = 12
	var verr *validate.ValidationError
	require.True(t, errors.As(svc.SaveProfile(p), &verr))

	p.DaysPerWeek = 5
	p.InjuryNotes = "shoulder"
	require.NoError(t, svc.SaveProfile(p))

	got, err := svc.Profile("yoel")
	require.NoError(t, err)
	assert.Equal(t, "shoulder", got.InjuryNotes)
}

func TestBuildContext(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	seedWeek(t, svc)
	_, _, err := svc.LogDay("yoel", models.Record{Date: "2025-01-10", TrainingDone: "yoga"})
	require.NoError(t, err)

	c, err := svc.BuildContext("yoel")
	require.NoError(t, err)
	require.Len(t, c.RecentEntries, ContextEntries)
	assert.Equal(t, "2025-01-13", c.RecentEntries[0].Date)
	assert.Equal(t, "yoel", c.Profile.UserID)
	assert.Contains(t, c.AnalysisText, "4 entries")
}

func TestReplyUsesGenerator(t *testing.T) {
	gen := &stubGenerator{reply: "  Deload this week.  "}
	svc, _ := newTestService(t, Options{Generator: gen})
	seedWeek(t, svc)

	got := svc.Reply(context.Background(), "yoel", "how am I doing?")
	assert.Equal(t, "Deload this week.", got)
	assert.Equal(t, 1, gen.calls)
	require.NotNil(t, gen.last)
	assert.Len(t, gen.last.RecentEntries, 3)
}

func TestReplyFallsBack(t *testing.T) {
	tests := []struct {
		name string
		gen  Generator
	}{
		{"no generator", nil},
		{"generator error", &stubGenerator{err: ErrGenerationUnavailable}},
		{"empty reply", &stubGenerator{reply: "   "}},
		{"timeout", &stubGenerator{block: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, Options{Generator: tt.gen, Timeout: 20 * time.Millisecond})
			got := svc.Reply(context.Background(), "yoel", "I'm tired")
			assert.Equal(t, FallbackReply("I'm tired", models.NewProfile("yoel"), nil), got)
		})
	}
}

func TestReplyWithStoreDown(t *testing.T) {
	svc, db := newTestService(t, Options{Generator: &stubGenerator{reply: "unused"}})
	require.NoError(t, db.Close())

	got := svc.Reply(context.Background(), "yoel", "hello")
	assert.Equal(t, GenericReply, got)
}

func TestReadsFallBackToSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	svc, db := newTestService(t, Options{Snapshot: interchange.NewSnapshotReader(path)})
	seedWeek(t, svc)

	_, err := interchange.NewSyncer(svc.Repo(), path).ExportFile("yoel", path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	entries, err := svc.Entries("yoel", "")
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	e, err := svc.Entry("yoel", "2025-01-12")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, models.SplitLegs, e.Split)

	summary, err := svc.Weekly("yoel")
	require.NoError(t, err)
	assert.Equal(t, 6.0, *summary.AvgEnergy)

	p, err := svc.Profile("yoel")
	require.NoError(t, err)
	assert.Equal(t, "yoel", p.UserID)

	_, _, err = svc.LogDay("yoel", models.Record{Date: "2025-01-14"})
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable, "writes never go to the snapshot")
	assert.Zero(t, svc.cache.Len(), "snapshot reads are not cached")
}

func TestStatsFallBackToSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	svc, db := newTestService(t, Options{Snapshot: interchange.NewSnapshotReader(path)})
	seedWeek(t, svc)

	_, err := interchange.NewSyncer(svc.Repo(), path).ExportFile("yoel", path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	stats, err := svc.Stats("yoel")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCount)
	assert.Equal(t, "2025-01-11", stats.MinDate)
	assert.Equal(t, "2025-01-13", stats.MaxDate)
}

func TestServiceOverOfflineStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	live, _ := newTestService(t, Options{})
	seedWeek(t, live)
	_, err := interchange.NewSyncer(live.Repo(), path).ExportFile("yoel", path)
	require.NoError(t, err)

	svc, err := NewService(storage.Offline(errors.New("file is not a database")), Options{
		Snapshot: interchange.NewSnapshotReader(path),
	})
	require.NoError(t, err)

	entries, err := svc.Entries("yoel", "")
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	stats, err := svc.Stats("yoel")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCount)

	_, err = svc.Recent("yoel")
	require.NoError(t, err)

	_, _, err = svc.LogDay("yoel", models.Record{Date: "2025-01-14"})
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
	assert.ErrorIs(t, svc.SaveProfile(models.NewProfile("yoel")), storage.ErrStorageUnavailable)
	assert.NoError(t, svc.Close())
}

func TestStatsCountsTodayInLocalTime(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	_, _, err := svc.LogDay("yoel", models.Record{Date: models.Today(), TrainingDone: "Push"})
	require.NoError(t, err)

	stats, err := svc.Stats("yoel")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CountLast7Days)
}
