// ABOUTME: Coaching service composing the store, aggregate cache, snapshot fallback, and generator.
// ABOUTME: Every surface (CLI, MCP, webhook) goes through Service rather than the store directly.
package coach

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/coach/internal/aggregate"
	"github.com/harperreed/coach/internal/interchange"
	"github.com/harperreed/coach/internal/logging"
	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/storage"
	"github.com/harperreed/coach/internal/validate"
)

// Options configures a Service. Every field is optional.
type Options struct {
	// Snapshot serves reads while the store is unavailable.
	Snapshot *interchange.SnapshotReader
	// Generator produces replies; nil means fallback replies only.
	Generator Generator
	// Timeout bounds one Generate call. Zero means DefaultTimeout.
	Timeout   time.Duration
	Logger    *log.Logger
	CacheSize int
}

// Service is the coaching façade.
type Service struct {
	repo     storage.Repository
	cache    *aggregate.Cache
	snapshot *interchange.SnapshotReader
	gen      Generator
	timeout  time.Duration
	logger   *log.Logger
}

// Balance is the split distribution over the last week.
type Balance struct {
	Counts     map[models.Split]int `json:"counts"`
	Imbalanced bool                 `json:"imbalanced"`
}

// NewService wraps repo so that every write invalidates the user's cached results.
func NewService(repo storage.Repository, opts Options) (*Service, error) {
	cache, err := aggregate.NewCache(opts.CacheSize)
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Service{
		repo:     storage.Notify(repo, cache.Invalidate),
		cache:    cache,
		snapshot: opts.Snapshot,
		gen:      opts.Generator,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
	}, nil
}

// Repo returns the cache-invalidating repository. Writes made through it
// (imports, migrations) keep cached results consistent.
func (s *Service) Repo() storage.Repository {
	return s.repo
}

// Close closes the underlying store.
func (s *Service) Close() error {
	return s.repo.Close()
}

// LogDay validates a record and stores it, replacing any entry for the same date.
func (s *Service) LogDay(userID string, rec models.Record) (*models.Entry, []validate.Warning, error) {
	e, warnings, err := validate.Validate(userID, rec)
	if err != nil {
		return nil, nil, err
	}
	if err := s.repo.UpsertEntry(e); err != nil {
		return nil, warnings, err
	}
	return e, warnings, nil
}

// Entry returns the entry for a date, or nil when none was logged.
func (s *Service) Entry(userID, date string) (*models.Entry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	day, err := validate.ParseDate(date)
	if err != nil {
		return nil, err
	}
	e, err := s.repo.GetEntry(userID, day)
	if s.degraded(err) {
		s.logger.Warn("store unavailable, reading snapshot", "op", "entry", "user", userID, "err", err)
		if fe, ferr := s.snapshot.GetEntry(userID, day); ferr == nil {
			return fe, nil
		}
	}
	return e, err
}

// Entries returns entries on or after since, newest first.
// The result is a private copy the caller may modify.
func (s *Service) Entries(userID, since string) ([]*models.Entry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if since != "" {
		day, err := validate.ParseDate(since)
		if err != nil {
			return nil, err
		}
		since = day
	}
	entries, err := s.entries(userID, since)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out, nil
}

// entries returns the shared cached list; callers must not modify it.
func (s *Service) entries(userID, since string) ([]*models.Entry, error) {
	entries, err := s.storedEntries(userID, since)
	if s.degraded(err) {
		s.logger.Warn("store unavailable, reading snapshot", "op", "entries", "user", userID, "err", err)
		if fe, ferr := s.snapshot.ListEntries(userID, since); ferr == nil {
			return fe, nil
		}
	}
	return entries, err
}

func (s *Service) storedEntries(userID, since string) ([]*models.Entry, error) {
	return aggregate.Cached(s.cache, userID, "entries:"+since, func() ([]*models.Entry, error) {
		return s.repo.ListEntries(userID, since)
	})
}

// DeleteDay removes the entry for a date. It reports whether one existed.
func (s *Service) DeleteDay(userID, date string) (bool, error) {
	if err := requireUser(userID); err != nil {
		return false, err
	}
	day, err := validate.ParseDate(date)
	if err != nil {
		return false, err
	}
	return s.repo.DeleteEntry(userID, day)
}

// Stats returns entry counts and the logged date range. Results are cached
// per local date so the 7-day count rolls over at midnight.
func (s *Service) Stats(userID string) (*models.EntryStats, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	today := models.Today()
	stats, err := aggregate.Cached(s.cache, userID, "stats:"+today, func() (*models.EntryStats, error) {
		return s.repo.EntryStats(userID)
	})
	if s.degraded(err) {
		s.logger.Warn("store unavailable, reading snapshot", "op", "stats", "user", userID, "err", err)
		if fe, ferr := s.snapshot.ListEntries(userID, ""); ferr == nil {
			return models.StatsOf(fe, today), nil
		}
	}
	return stats, err
}

// Profile returns the user's profile, creating defaults on first access.
func (s *Service) Profile(userID string) (*models.Profile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	p, err := s.repo.GetProfile(userID)
	if s.degraded(err) {
		s.logger.Warn("store unavailable, reading snapshot", "op", "profile", "user", userID, "err", err)
		if fp, ferr := s.snapshot.GetProfile(userID); ferr == nil {
			return fp, nil
		}
	}
	return p, err
}

// SaveProfile validates and replaces the user's profile.
func (s *Service) SaveProfile(p *models.Profile) error {
	if err := validate.Profile(p); err != nil {
		return err
	}
	return s.repo.SaveProfile(p)
}

// Recent analyses the last RecentDays of entries.
func (s *Service) Recent(userID string) (aggregate.RecentAnalysis, error) {
	return cachedAggregate(s, userID, "recent", func(entries []*models.Entry) (aggregate.RecentAnalysis, error) {
		return aggregate.AnalyzeRecent(entries, aggregate.RecentDays), nil
	})
}

// Weekly summarises the last week. It returns aggregate.ErrInsufficientData
// when fewer than aggregate.MinWeeklyEntries days were logged.
func (s *Service) Weekly(userID string) (*aggregate.WeeklySummary, error) {
	return cachedAggregate(s, userID, "weekly", aggregate.Weekly)
}

// Progression compares recent and earlier training over two weeks.
func (s *Service) Progression(userID string) (aggregate.ProgressionReport, error) {
	return cachedAggregate(s, userID, "progression", func(entries []*models.Entry) (aggregate.ProgressionReport, error) {
		return aggregate.DetectProgression(entries, aggregate.ProgressionDays), nil
	})
}

// Balance reports the last week's split counts and whether they are lopsided.
func (s *Service) Balance(userID string) (*Balance, error) {
	return cachedAggregate(s, userID, "balance", func(entries []*models.Entry) (*Balance, error) {
		return &Balance{
			Counts:     aggregate.SplitCounts(aggregate.Window(entries, aggregate.WeekDays)),
			Imbalanced: aggregate.DetectSplitImbalance(entries),
		}, nil
	})
}

// Imbalance reports whether Push, Pull, and Legs days drifted apart this week.
func (s *Service) Imbalance(userID string) (bool, error) {
	b, err := s.Balance(userID)
	if err != nil {
		return false, err
	}
	return b.Imbalanced, nil
}

// Plateau checks the last week for unchanged volume and low quality.
func (s *Service) Plateau(userID string) (aggregate.PlateauReport, error) {
	return cachedAggregate(s, userID, "plateau", func(entries []*models.Entry) (aggregate.PlateauReport, error) {
		return aggregate.DetectPlateau(entries, aggregate.WeekDays), nil
	})
}

// Nutrition reports the last week's food patterns.
func (s *Service) Nutrition(userID string) (aggregate.NutritionReport, error) {
	return cachedAggregate(s, userID, "nutrition", func(entries []*models.Entry) (aggregate.NutritionReport, error) {
		return aggregate.NutritionPatterns(entries, aggregate.WeekDays), nil
	})
}

// BuildContext gathers the profile, the newest entries, and the recent analysis.
func (s *Service) BuildContext(userID string) (*Context, error) {
	profile, err := s.Profile(userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.Entries(userID, "")
	if err != nil {
		return nil, err
	}
	analysis, err := s.Recent(userID)
	if err != nil {
		return nil, err
	}
	if len(entries) > ContextEntries {
		entries = entries[:ContextEntries]
	}
	return &Context{
		Profile:       profile,
		RecentEntries: entries,
		AnalysisText:  analysis.Text(),
	}, nil
}

// Reply answers a free-text message. It never fails: when the context or
// the generator is unavailable it answers with FallbackReply.
func (s *Service) Reply(ctx context.Context, userID, text string) string {
	c, err := s.BuildContext(userID)
	if err != nil {
		s.logger.Warn("build context failed", "user", userID, "err", err)
		return FallbackReply(text, nil, nil)
	}
	if s.gen == nil {
		return FallbackReply(text, c.Profile, c.RecentEntries)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	reply, err := s.gen.Generate(ctx, c, text)
	if err != nil {
		s.logger.Warn("generation failed", "user", userID, "err", err)
		return FallbackReply(text, c.Profile, c.RecentEntries)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		s.logger.Warn("generation returned empty reply", "user", userID)
		return FallbackReply(text, c.Profile, c.RecentEntries)
	}
	s.logger.Debug("generated reply", "user", userID, "elapsed", time.Since(start))
	return reply
}

// cachedAggregate memoises compute over the user's full entry history.
// While the store is down it computes from the snapshot without caching.
func cachedAggregate[T any](s *Service, userID, name string, compute func([]*models.Entry) (T, error)) (T, error) {
	if err := requireUser(userID); err != nil {
		var zero T
		return zero, err
	}
	v, err := aggregate.Cached(s.cache, userID, name, func() (T, error) {
		entries, err := s.storedEntries(userID, "")
		if err != nil {
			var zero T
			return zero, err
		}
		return compute(entries)
	})
	if !s.degraded(err) {
		return v, err
	}
	s.logger.Warn("store unavailable, reading snapshot", "op", name, "user", userID, "err", err)
	entries, ferr := s.snapshot.ListEntries(userID, "")
	if ferr != nil {
		return v, err
	}
	return compute(entries)
}

// degraded reports whether err should be answered from the snapshot.
func (s *Service) degraded(err error) bool {
	return s.snapshot != nil && errors.Is(err, storage.ErrStorageUnavailable)
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return &validate.ValidationError{Field: "user_id", Message: "required"}
	}
	return nil
}
