package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/internal/database"
	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/internal/spaced_repetition"
	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/pkg/models"
)

var frozenNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (*Service, *database.ScheduleRepository) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "service-test.db"))
	require.NoError(t, database.Connect())
	t.Cleanup(func() { database.Close() })

	repo := database.NewScheduleRepository()
	engine := spaced_repetition.NewEngine(spaced_repetition.DefaultParams())
	svc := NewService(repo, database.NewStatisticsRepository(), engine, zap.NewNop()).
		WithClock(func() time.Time { return frozenNow })
	return svc, repo
}

// seedRecord creates a record and applies the given mutation before saving.
func seedRecord(t *testing.T, repo *database.ScheduleRepository, userID, contentID int64, mutate func(*models.ScheduleRecord)) *models.ScheduleRecord {
	t.Helper()
	key := models.ScheduleKey{UserID: userID, ContentID: contentID, ContentType: "question"}
	rec, err := repo.GetOrCreate(context.Background(), key, frozenNow)
	require.NoError(t, err)
	if mutate != nil {
		mutate(rec)
		rec.UpdatedAt = frozenNow
		require.NoError(t, repo.Save(context.Background(), rec))
	}
	return rec
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

func TestRecordReviewCreatesAndPersists(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	rec, err := svc.RecordReview(ctx, 1, 100, "question", 5, intPtr(90))
	require.NoError(t, err)
	assert.Equal(t, 2, rec.RepetitionInterval)
	assert.Equal(t, 1, rec.RepetitionCount)
	assert.Equal(t, 90, rec.RetentionScore)
	assert.Equal(t, frozenNow.AddDate(0, 0, 2), rec.NextReviewDate)

	// The new state is what the store now holds
	key := models.ScheduleKey{UserID: 1, ContentID: 100, ContentType: "question"}
	loaded, err := repo.GetOrCreate(ctx, key, frozenNow)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, loaded.ID)
	assert.Equal(t, 2, loaded.RepetitionInterval)
	assert.Equal(t, 90, loaded.RetentionScore)
}

func TestRecordReviewValidatesKey(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.RecordReview(ctx, 0, 100, "question", 5, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.RecordReview(ctx, 1, 0, "question", 5, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.RecordReview(ctx, 1, 100, "", 5, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDueAndOverdueSets(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	seedRecord(t, repo, 1, 1, func(r *models.ScheduleRecord) {
		r.NextReviewDate = frozenNow.AddDate(0, 0, -3)
	})
	seedRecord(t, repo, 1, 2, func(r *models.ScheduleRecord) {
		r.NextReviewDate = frozenNow.Add(-time.Hour)
	})
	seedRecord(t, repo, 1, 3, func(r *models.ScheduleRecord) {
		r.NextReviewDate = frozenNow.AddDate(0, 0, 5)
	})

	due, err := svc.GetDueReviews(ctx, 1)
	require.NoError(t, err)
	require.Len(t, due, 2)
	for _, rec := range due {
		assert.True(t, rec.IsDue(frozenNow))
	}

	overdue, err := svc.GetOverdueReviews(ctx, 1)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, int64(1), overdue[0].ContentID)
}

func TestGetNextReviewsLookAhead(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	seedRecord(t, repo, 1, 1, func(r *models.ScheduleRecord) {
		r.NextReviewDate = frozenNow.AddDate(0, 0, 9)
	})
	seedRecord(t, repo, 1, 2, func(r *models.ScheduleRecord) {
		r.NextReviewDate = frozenNow.AddDate(0, 0, 2)
	})
	seedRecord(t, repo, 1, 3, func(r *models.ScheduleRecord) {
		r.NextReviewDate = frozenNow.AddDate(0, 0, 5)
	})

	next, err := svc.GetNextReviews(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, int64(2), next[0].ContentID, "soonest first, due or not")
	assert.Equal(t, int64(3), next[1].ContentID)

	_, err = svc.GetNextReviews(ctx, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSetPriorityFrontLoadsLongIntervals(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	seedRecord(t, repo, 1, 1, func(r *models.ScheduleRecord) {
		r.RepetitionInterval = 8
		r.NextReviewDate = frozenNow.AddDate(0, 0, 6)
	})

	rec, err := svc.SetPriority(ctx, 1, 1, "question", true)
	require.NoError(t, err)
	assert.True(t, rec.AmazonInterviewPriority)
	assert.Equal(t, 4, rec.RepetitionInterval)
	assert.Equal(t, frozenNow.AddDate(0, 0, 4), rec.NextReviewDate, "rescheduled from now, not the old review date")

	// Toggling again must not halve a second time
	rec, err = svc.SetPriority(ctx, 1, 1, "question", true)
	require.NoError(t, err)
	assert.Equal(t, 4, rec.RepetitionInterval)
}

func TestSetPriorityShortIntervalUntouched(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	seedRecord(t, repo, 1, 1, func(r *models.ScheduleRecord) {
		r.RepetitionInterval = 2
		r.NextReviewDate = frozenNow.AddDate(0, 0, 2)
	})

	rec, err := svc.SetPriority(ctx, 1, 1, "question", true)
	require.NoError(t, err)
	assert.True(t, rec.AmazonInterviewPriority)
	assert.Equal(t, 2, rec.RepetitionInterval)
	assert.Equal(t, frozenNow.AddDate(0, 0, 2), rec.NextReviewDate.UTC())

	rec, err = svc.SetPriority(ctx, 1, 1, "question", false)
	require.NoError(t, err)
	assert.False(t, rec.AmazonInterviewPriority)
	assert.Equal(t, 2, rec.RepetitionInterval)
}

func TestBulkUpdateContentTypeRescale(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	seedRecord(t, repo, 1, 1, func(r *models.ScheduleRecord) {
		r.RepetitionInterval = 10
		r.NextReviewDate = frozenNow.AddDate(0, 0, 10)
	})
	seedRecord(t, repo, 2, 2, func(r *models.ScheduleRecord) {
		r.RepetitionInterval = 1
	})

	updated, err := svc.BulkUpdateContentType(ctx, "question", floatPtr(0.5), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	records, err := repo.FindByContentType(ctx, "question")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 5, records[0].RepetitionInterval, "10 x 0.5 = 5")
	assert.Equal(t, frozenNow.AddDate(0, 0, 5), records[0].NextReviewDate.UTC())
	assert.False(t, records[0].AmazonInterviewPriority, "priority flag untouched")
	assert.Equal(t, 1, records[1].RepetitionInterval, "floor of one day")
}

func TestBulkUpdateContentTypePriorityOnly(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	seedRecord(t, repo, 1, 1, func(r *models.ScheduleRecord) {
		r.RepetitionInterval = 7
		r.NextReviewDate = frozenNow.AddDate(0, 0, 7)
	})

	_, err := svc.BulkUpdateContentType(ctx, "question", nil, boolPtr(true))
	require.NoError(t, err)

	records, err := repo.FindByContentType(ctx, "question")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].AmazonInterviewPriority)
	assert.Equal(t, 7, records[0].RepetitionInterval, "interval untouched")
}

func TestBulkUpdateContentTypeValidation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.BulkUpdateContentType(ctx, "", floatPtr(0.5), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.BulkUpdateContentType(ctx, "question", floatPtr(-1), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	updated, err := svc.BulkUpdateContentType(ctx, "question", nil, nil)
	require.NoError(t, err)
	assert.Zero(t, updated, "no-op when nothing to change")
}

func TestGetDailyScheduleBuckets(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	seedRecord(t, repo, 1, 1, func(r *models.ScheduleRecord) {
		r.NextReviewDate = frozenNow.AddDate(0, 0, 1)
	})
	seedRecord(t, repo, 1, 2, func(r *models.ScheduleRecord) {
		r.NextReviewDate = frozenNow.AddDate(0, 0, 1).Add(time.Hour)
		r.AmazonInterviewPriority = true
	})
	seedRecord(t, repo, 1, 3, func(r *models.ScheduleRecord) {
		r.NextReviewDate = frozenNow.AddDate(0, 0, 3)
	})
	seedRecord(t, repo, 1, 4, func(r *models.ScheduleRecord) {
		r.NextReviewDate = frozenNow.AddDate(0, 0, 30) // outside the window
	})

	schedule, err := svc.GetDailySchedule(ctx, 1, 7)
	require.NoError(t, err)

	assert.Equal(t, 3, schedule.TotalReviews)
	assert.InDelta(t, 3.0/7.0, schedule.AveragePerDay, 1e-9)
	assert.Equal(t, 1, schedule.PriorityCount)
	require.Len(t, schedule.ByDate, 2)
	assert.Equal(t, frozenNow.AddDate(0, 0, 1).Format("2006-01-02"), schedule.ByDate[0].Date)
	assert.Len(t, schedule.ByDate[0].Reviews, 2)
	assert.Len(t, schedule.ByDate[1].Reviews, 1)
}

func TestGetDailyScheduleRejectsBadDays(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.GetDailySchedule(context.Background(), 1, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.GetDailySchedule(context.Background(), 1, -5)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLearningAnalyticsEmptyUser(t *testing.T) {
	svc, _ := setupService(t)

	analytics, err := svc.GetLearningAnalytics(context.Background(), 42)
	require.NoError(t, err)
	assert.Zero(t, analytics.TotalSchedules)
	assert.Zero(t, analytics.Retention.Average)
	assert.Zero(t, analytics.LearningEfficiency, "no records never divides by zero")
	assert.Equal(t, 0, analytics.RetentionDistribution[BandLabelWeak])
}

func TestLearningAnalytics(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	seedRecord(t, repo, 1, 1, func(r *models.ScheduleRecord) {
		r.RetentionScore = 40
		r.RepetitionCount = 2
		r.NextReviewDate = frozenNow.AddDate(0, 0, -2) // overdue
	})
	seedRecord(t, repo, 1, 2, func(r *models.ScheduleRecord) {
		r.RetentionScore = 70
		r.RepetitionCount = 4
		r.NextReviewDate = frozenNow.AddDate(0, 0, 3)
	})
	seedRecord(t, repo, 1, 3, func(r *models.ScheduleRecord) {
		r.RetentionScore = 95
		r.RepetitionCount = 6
		r.AmazonInterviewPriority = true
		r.NextReviewDate = frozenNow.AddDate(0, 0, 5)
	})

	analytics, err := svc.GetLearningAnalytics(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, analytics.TotalSchedules)
	assert.InDelta(t, (40.0+70.0+95.0)/3.0, analytics.Retention.Average, 1e-9)
	assert.Equal(t, 40, analytics.Retention.Min)
	assert.Equal(t, 95, analytics.Retention.Max)
	assert.InDelta(t, 4.0, analytics.AverageRepetitions, 1e-9)
	assert.Equal(t, 1, analytics.DueCount)
	assert.Equal(t, 1, analytics.OverdueCount)
	assert.Equal(t, 1, analytics.PriorityCount)
	// Records were created just now, so each contributes count/1 elapsed day
	assert.InDelta(t, (2.0+4.0+6.0)/3.0, analytics.LearningEfficiency, 1e-9)
	assert.Equal(t, 1, analytics.RetentionDistribution[BandLabelWeak])
	assert.Equal(t, 1, analytics.RetentionDistribution[BandLabelDeveloping])
	assert.Equal(t, 1, analytics.RetentionDistribution[BandLabelStrong])
}

func TestGenerateRecommendationsRules(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	seedRecord(t, repo, 1, 1, func(r *models.ScheduleRecord) {
		r.RetentionScore = 30
		r.NextReviewDate = frozenNow.AddDate(0, 0, -2) // overdue
	})
	seedRecord(t, repo, 1, 2, func(r *models.ScheduleRecord) {
		r.RetentionScore = 90
		r.AmazonInterviewPriority = true
		r.NextReviewDate = frozenNow.AddDate(0, 0, 4)
	})

	recommendations, err := svc.GenerateRecommendations(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, recommendations)

	joined := ""
	for _, rec := range recommendations {
		joined += rec + "\n"
	}
	assert.Contains(t, joined, "1 overdue reviews")
	assert.Contains(t, joined, "weak retention")
	assert.Contains(t, joined, "readiness: 100%")
}

func TestGenerateRecommendationsQuietWhenCaughtUp(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	seedRecord(t, repo, 1, 1, func(r *models.ScheduleRecord) {
		r.RetentionScore = 92
		r.NextReviewDate = frozenNow.AddDate(0, 0, 4)
	})

	recommendations, err := svc.GenerateRecommendations(ctx, 1)
	require.NoError(t, err)
	for _, rec := range recommendations {
		assert.NotContains(t, rec, "overdue")
	}
}

func TestOptimizeForDeadline(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	solid := seedRecord(t, repo, 1, 1, func(r *models.ScheduleRecord) {
		r.AmazonInterviewPriority = true
		r.RetentionScore = 92
		r.RepetitionInterval = 8
		r.DifficultyAdjustment = 1.5
		r.NextReviewDate = frozenNow.AddDate(0, 0, 8)
	})
	shaky := seedRecord(t, repo, 1, 2, func(r *models.ScheduleRecord) {
		r.AmazonInterviewPriority = true
		r.RetentionScore = 70
		r.RepetitionInterval = 8
		r.DifficultyAdjustment = 1.5
		r.NextReviewDate = frozenNow.AddDate(0, 0, 8)
	})
	bystander := seedRecord(t, repo, 1, 3, func(r *models.ScheduleRecord) {
		r.RetentionScore = 50
		r.RepetitionInterval = 8
		r.DifficultyAdjustment = 1.5
		r.NextReviewDate = frozenNow.AddDate(0, 0, 8)
	})

	// 20 days out: the urgent ease cap applies
	require.NoError(t, svc.OptimizeForDeadline(ctx, 1, frozenNow.AddDate(0, 0, 20)))

	key := models.ScheduleKey{UserID: 1, ContentID: solid.ContentID, ContentType: "question"}
	solidAfter, err := repo.GetOrCreate(ctx, key, frozenNow)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, solidAfter.DifficultyAdjustment, 1e-9)
	assert.Equal(t, 8, solidAfter.RepetitionInterval, "retention above the floor keeps its interval")

	key.ContentID = shaky.ContentID
	shakyAfter, err := repo.GetOrCreate(ctx, key, frozenNow)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, shakyAfter.DifficultyAdjustment, 1e-9)
	assert.Equal(t, 4, shakyAfter.RepetitionInterval, "below the floor halves the interval")
	assert.Equal(t, frozenNow.AddDate(0, 0, 4), shakyAfter.NextReviewDate.UTC(), "rescheduled from now")

	key.ContentID = bystander.ContentID
	bystanderAfter, err := repo.GetOrCreate(ctx, key, frozenNow)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, bystanderAfter.DifficultyAdjustment, 1e-9, "non-priority records are untouched")
	assert.Equal(t, 8, bystanderAfter.RepetitionInterval)
}

func TestOptimizeForDeadlineNearWindow(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	seedRecord(t, repo, 1, 1, func(r *models.ScheduleRecord) {
		r.AmazonInterviewPriority = true
		r.RetentionScore = 92
		r.DifficultyAdjustment = 1.5
		r.RepetitionInterval = 8
		r.NextReviewDate = frozenNow.AddDate(0, 0, 8)
	})

	// 45 days out: the milder cap applies
	require.NoError(t, svc.OptimizeForDeadline(ctx, 1, frozenNow.AddDate(0, 0, 45)))

	key := models.ScheduleKey{UserID: 1, ContentID: 1, ContentType: "question"}
	rec, err := repo.GetOrCreate(ctx, key, frozenNow)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, rec.DifficultyAdjustment, 1e-9)
}

func TestOptimizeForDeadlineRejectsPastDate(t *testing.T) {
	svc, _ := setupService(t)

	err := svc.OptimizeForDeadline(context.Background(), 1, frozenNow.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetSystemStatistics(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	seedRecord(t, repo, 1, 1, func(r *models.ScheduleRecord) {
		r.RepetitionCount = 5
		r.NextReviewDate = frozenNow.AddDate(0, 0, -2) // due and overdue
	})
	seedRecord(t, repo, 2, 1, func(r *models.ScheduleRecord) {
		r.RepetitionCount = 3
		r.AmazonInterviewPriority = true
		r.RetentionScore = 90
		r.NextReviewDate = frozenNow.AddDate(0, 0, 4)
	})

	stats, err := svc.GetSystemStatistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalSchedules)
	assert.Equal(t, 1, stats.DueReviews)
	assert.Equal(t, 1, stats.OverdueReviews)
	assert.InDelta(t, 0.5, stats.CompletionRate, 1e-9)
	require.NotEmpty(t, stats.MostReviewedContent)
	assert.Equal(t, int64(1), stats.MostReviewedContent[0].ContentID)
	assert.Equal(t, 8, stats.MostReviewedContent[0].ReviewCount)
	assert.Equal(t, 1, stats.PriorityReadyUserCount, "user 2's priority average is above the floor")
}

func TestGetContentDifficultyAnalysis(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	// Content 1: retained well by two learners. Content 2: poorly by two.
	// Content 3: one learner only, excluded from classification.
	seedRecord(t, repo, 1, 1, func(r *models.ScheduleRecord) { r.RetentionScore = 90 })
	seedRecord(t, repo, 2, 1, func(r *models.ScheduleRecord) { r.RetentionScore = 85 })
	seedRecord(t, repo, 1, 2, func(r *models.ScheduleRecord) { r.RetentionScore = 30 })
	seedRecord(t, repo, 2, 2, func(r *models.ScheduleRecord) { r.RetentionScore = 50 })
	seedRecord(t, repo, 1, 3, func(r *models.ScheduleRecord) { r.RetentionScore = 10 })

	analysis, err := svc.GetContentDifficultyAnalysis(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, analysis.TotalAnalyzed)
	require.Len(t, analysis.EasyContent, 1)
	assert.Equal(t, int64(1), analysis.EasyContent[0].ContentID)
	assert.InDelta(t, 87.5, analysis.EasyContent[0].AverageRetention, 1e-9)
	require.Len(t, analysis.DifficultContent, 1)
	assert.Equal(t, int64(2), analysis.DifficultContent[0].ContentID)
}

func TestBuildDigest(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	seedRecord(t, repo, 1, 1, func(r *models.ScheduleRecord) {
		r.NextReviewDate = frozenNow.AddDate(0, 0, -2)
	})
	seedRecord(t, repo, 1, 2, func(r *models.ScheduleRecord) {
		r.AmazonInterviewPriority = true
		r.NextReviewDate = frozenNow.Add(-time.Hour)
	})

	summary, err := svc.BuildDigest(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.UserID)
	assert.Equal(t, 2, summary.DueCount)
	assert.Equal(t, 1, summary.OverdueCount)
	assert.Equal(t, 1, summary.PriorityCount)
	assert.Equal(t, frozenNow, summary.GeneratedAt)
}

func TestRecordReviewSameKeySequence(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	// Strong, strong, poor: grows twice, then resets to relearning
	first, err := svc.RecordReview(ctx, 1, 100, "question", 5, intPtr(80))
	require.NoError(t, err)
	second, err := svc.RecordReview(ctx, 1, 100, "question", 5, nil)
	require.NoError(t, err)
	assert.Greater(t, second.RepetitionInterval, first.RepetitionInterval)

	third, err := svc.RecordReview(ctx, 1, 100, "question", 0, intPtr(30))
	require.NoError(t, err)
	assert.Equal(t, 1, third.RepetitionInterval)
	assert.Equal(t, 30, third.RetentionScore)
	assert.Equal(t, second.RepetitionCount, third.RepetitionCount, "lapse keeps the cycle count")
}

// hookedStore wraps a ScheduleStore and fires a callback right after a bulk
// listing query, to interleave writes with an in-flight bulk pass.
type hookedStore struct {
	ScheduleStore
	afterFindPriority      func()
	afterFindByContentType func()
}

func (h *hookedStore) FindPriority(ctx context.Context, userID int64) ([]models.ScheduleRecord, error) {
	recs, err := h.ScheduleStore.FindPriority(ctx, userID)
	if h.afterFindPriority != nil {
		h.afterFindPriority()
	}
	return recs, err
}

func (h *hookedStore) FindByContentType(ctx context.Context, contentType string) ([]models.ScheduleRecord, error) {
	recs, err := h.ScheduleStore.FindByContentType(ctx, contentType)
	if h.afterFindByContentType != nil {
		h.afterFindByContentType()
	}
	return recs, err
}

func TestOptimizeForDeadlineKeepsReviewLandedMidPass(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	seedRecord(t, repo, 1, 100, func(r *models.ScheduleRecord) {
		r.AmazonInterviewPriority = true
		r.RetentionScore = 70
		r.RepetitionInterval = 8
		r.RepetitionCount = 3
	})

	hooked := &hookedStore{ScheduleStore: repo}
	hooked.afterFindPriority = func() {
		_, err := svc.RecordReview(ctx, 1, 100, "question", 5, intPtr(90))
		require.NoError(t, err)
	}
	svc.store = hooked

	require.NoError(t, svc.OptimizeForDeadline(ctx, 1, frozenNow.AddDate(0, 0, 45)))

	key := models.ScheduleKey{UserID: 1, ContentID: 100, ContentType: "question"}
	loaded, err := repo.GetOrCreate(ctx, key, frozenNow)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.RepetitionCount, "review completed mid-pass must survive")
	assert.Equal(t, 90, loaded.RetentionScore)
	// Escalation still applies on top of the fresh state: ease capped at the
	// near-window value, no interval halving since retention is now solid.
	assert.Equal(t, 0.9, loaded.DifficultyAdjustment)
	assert.Equal(t, 8, loaded.RepetitionInterval)
}

func TestBulkUpdateKeepsReviewLandedMidPass(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	seedRecord(t, repo, 1, 100, func(r *models.ScheduleRecord) {
		r.RetentionScore = 60
		r.RepetitionInterval = 10
		r.RepetitionCount = 2
	})

	hooked := &hookedStore{ScheduleStore: repo}
	hooked.afterFindByContentType = func() {
		_, err := svc.RecordReview(ctx, 1, 100, "question", 5, intPtr(90))
		require.NoError(t, err)
	}
	svc.store = hooked

	updated, err := svc.BulkUpdateContentType(ctx, "question", floatPtr(0.5), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	key := models.ScheduleKey{UserID: 1, ContentID: 100, ContentType: "question"}
	loaded, err := repo.GetOrCreate(ctx, key, frozenNow)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.RepetitionCount, "review completed mid-pass must survive")
	assert.Equal(t, 90, loaded.RetentionScore)
	// Rescale applies to the post-review interval of 20 days, not the stale one
	assert.Equal(t, 10, loaded.RepetitionInterval)
}
