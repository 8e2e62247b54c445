package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/internal/spaced_repetition"
	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/pkg/models"
)

// Service-level policy constants. Interval and ease tuning lives in
// spaced_repetition.Params; these govern queries and reporting.
const (
	// Records due before now minus this grace period count as overdue
	OverdueGracePeriod = 24 * time.Hour
	// A priority toggle on an interval above this many days reschedules immediately
	PriorityToggleThreshold = 3
	// Retention bands for the distribution report
	WeakRetentionCeiling = 60
	StrongRetentionFloor = 80
	// Priority items at or above this retention count as deadline-ready
	PriorityReadyRetention = 85
	// More than this many reviews on one day triggers a heavy-day warning
	HeavyDayThreshold = 20
	// Content needs this many distinct learners before difficulty classification
	MinLearnersForAnalysis = 2
	// Rows rewritten per chunk during bulk updates
	BulkChunkSize = 100
)

// Service orchestrates the interval engine and the schedule store to answer
// all review-scheduling operations. It is invoked synchronously per request;
// concurrent writers to the same record are serialized by a per-key lock.
type Service struct {
	store  ScheduleStore
	stats  StatisticsStore
	engine *spaced_repetition.Engine
	logger *zap.Logger
	now    func() time.Time

	locks keyedLocks
}

// NewService creates a scheduler service. The clock defaults to time.Now and
// can be overridden with WithClock for deterministic tests.
func NewService(store ScheduleStore, stats StatisticsStore, engine *spaced_repetition.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		stats:  stats,
		engine: engine,
		logger: logger,
		now:    time.Now,
		locks:  keyedLocks{locks: make(map[models.ScheduleKey]*sync.Mutex)},
	}
}

// WithClock replaces the service clock and returns the service.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RecordReview records a single review outcome: it loads or lazily creates
// the schedule record, runs the interval policy and persists the result.
// retentionOverride, when non-nil, replaces the stored retention score.
func (s *Service) RecordReview(ctx context.Context, userID, contentID int64, contentType string, performanceRating int, retentionOverride *int) (*models.ScheduleRecord, error) {
	key, err := validateKey(userID, contentID, contentType)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(key)
	defer unlock()

	now := s.now()
	rec, err := s.store.GetOrCreate(ctx, key, now)
	if err != nil {
		return nil, err
	}

	updated := s.engine.Review(*rec, performanceRating, retentionOverride, now)
	updated.UpdatedAt = now
	if err := s.store.Save(ctx, &updated); err != nil {
		return nil, err
	}

	s.logger.Debug("review recorded",
		zap.Int64("user_id", userID),
		zap.Int64("content_id", contentID),
		zap.String("content_type", contentType),
		zap.Int("rating", performanceRating),
		zap.Int("interval_days", updated.RepetitionInterval),
		zap.Time("next_review", updated.NextReviewDate),
	)
	return &updated, nil
}

// GetDueReviews returns all records due as of now, soonest first.
func (s *Service) GetDueReviews(ctx context.Context, userID int64) ([]models.ScheduleRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id must be positive", ErrInvalidInput)
	}
	return s.store.FindDue(ctx, userID, s.now())
}

// GetOverdueReviews returns records due before now minus the overdue grace
// period. Always a subset of the due set.
func (s *Service) GetOverdueReviews(ctx context.Context, userID int64) ([]models.ScheduleRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id must be positive", ErrInvalidInput)
	}
	return s.store.FindOverdue(ctx, userID, s.now().Add(-OverdueGracePeriod))
}

// GetNextReviews returns the count soonest-due records regardless of whether
// they are due yet. Used for look-ahead planning.
func (s *Service) GetNextReviews(ctx context.Context, userID int64, count int) ([]models.ScheduleRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id must be positive", ErrInvalidInput)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive", ErrInvalidInput)
	}
	return s.store.FindUpcoming(ctx, userID, count)
}

// GetPriorityReviews returns the deadline-critical records ordered by due
// date, soonest first.
func (s *Service) GetPriorityReviews(ctx context.Context, userID int64) ([]models.ScheduleRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id must be positive", ErrInvalidInput)
	}
	return s.store.FindPriority(ctx, userID)
}

// SetPriority toggles the deadline-critical flag. Turning it on while the
// current interval exceeds the toggle threshold halves the interval and
// reschedules from now, so the item is front-loaded instead of waiting out
// the old schedule.
func (s *Service) SetPriority(ctx context.Context, userID, contentID int64, contentType string, flag bool) (*models.ScheduleRecord, error) {
	key, err := validateKey(userID, contentID, contentType)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(key)
	defer unlock()

	now := s.now()
	rec, err := s.store.GetOrCreate(ctx, key, now)
	if err != nil {
		return nil, err
	}

	if flag && !rec.AmazonInterviewPriority && rec.RepetitionInterval > PriorityToggleThreshold {
		rec.RepetitionInterval = spaced_repetition.HalveInterval(rec.RepetitionInterval)
		rec.Reschedule(now)
	}
	rec.AmazonInterviewPriority = flag
	rec.UpdatedAt = now

	if err := s.store.Save(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("priority flag updated",
		zap.Int64("user_id", userID),
		zap.Int64("content_id", contentID),
		zap.Bool("priority", flag),
		zap.Int("interval_days", rec.RepetitionInterval),
	)
	return rec, nil
}

// GetDailySchedule buckets the records due within the next days into
// calendar dates, with per-day load totals for planning.
func (s *Service) GetDailySchedule(ctx context.Context, userID int64, days int) (*models.DailySchedule, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id must be positive", ErrInvalidInput)
	}
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", ErrInvalidInput)
	}

	now := s.now()
	records, err := s.store.FindInDateRange(ctx, userID, now, now.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}

	buckets := make(map[string][]models.ScheduleRecord)
	var order []string
	priorityCount := 0
	for _, rec := range records {
		date := rec.NextReviewDate.Format("2006-01-02")
		if _, seen := buckets[date]; !seen {
			order = append(order, date)
		}
		buckets[date] = append(buckets[date], rec)
		if rec.AmazonInterviewPriority {
			priorityCount++
		}
	}

	schedule := &models.DailySchedule{
		TotalReviews:  len(records),
		AveragePerDay: float64(len(records)) / float64(days),
		PriorityCount: priorityCount,
	}
	for _, date := range order {
		schedule.ByDate = append(schedule.ByDate, models.DailyBucket{
			Date:    date,
			Reviews: buckets[date],
		})
	}
	return schedule, nil
}

// validateKey rejects identifiers the store cannot key on.
func validateKey(userID, contentID int64, contentType string) (models.ScheduleKey, error) {
	if userID <= 0 {
		return models.ScheduleKey{}, fmt.Errorf("%w: user id must be positive", ErrInvalidInput)
	}
	if contentID <= 0 {
		return models.ScheduleKey{}, fmt.Errorf("%w: content id must be positive", ErrInvalidInput)
	}
	if contentType == "" {
		return models.ScheduleKey{}, fmt.Errorf("%w: content type is required", ErrInvalidInput)
	}
	return models.ScheduleKey{UserID: userID, ContentID: contentID, ContentType: contentType}, nil
}

// keyedLocks serializes read-modify-write cycles per schedule key. Lock
// entries are kept for the life of the process; the key space is bounded by
// the records a deployment actually touches.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[models.ScheduleKey]*sync.Mutex
}

// lock acquires the mutex for a key and returns its release func.
func (k *keyedLocks) lock(key models.ScheduleKey) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
