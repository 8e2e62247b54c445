package scheduler

import (
	"context"
	"time"

	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/pkg/models"
)

// ScheduleStore is the persistence contract the service depends on. All
// lookups keyed by (user, content, content type) are idempotent creators.
type ScheduleStore interface {
	GetOrCreate(ctx context.Context, key models.ScheduleKey, now time.Time) (*models.ScheduleRecord, error)
	Save(ctx context.Context, rec *models.ScheduleRecord) error

	FindDue(ctx context.Context, userID int64, asOf time.Time) ([]models.ScheduleRecord, error)
	FindOverdue(ctx context.Context, userID int64, threshold time.Time) ([]models.ScheduleRecord, error)
	FindPriority(ctx context.Context, userID int64) ([]models.ScheduleRecord, error)
	FindInDateRange(ctx context.Context, userID int64, start, end time.Time) ([]models.ScheduleRecord, error)
	FindByContentType(ctx context.Context, contentType string) ([]models.ScheduleRecord, error)
	FindUpcoming(ctx context.Context, userID int64, limit int) ([]models.ScheduleRecord, error)
	FindAllByUser(ctx context.Context, userID int64) ([]models.ScheduleRecord, error)

	CountDue(ctx context.Context, userID int64, asOf time.Time) (int, error)
	CountOverdue(ctx context.Context, userID int64, threshold time.Time) (int, error)
	CountPriority(ctx context.Context, userID int64) (int, error)
	CountAll(ctx context.Context) (int, error)
	CountDueAll(ctx context.Context, asOf time.Time) (int, error)
	CountOverdueAll(ctx context.Context, threshold time.Time) (int, error)

	ListUserIDs(ctx context.Context) ([]int64, error)
}

// StatisticsStore provides the aggregate queries behind analytics and
// system-level reporting.
type StatisticsStore interface {
	UserRetentionStats(ctx context.Context, userID int64) (models.RetentionStats, error)
	UserAverageRepetitions(ctx context.Context, userID int64) (float64, error)
	MostReviewedContent(ctx context.Context, limit int) ([]models.ContentReviewCount, error)
	ContentRetention(ctx context.Context, minLearners int) ([]models.ContentRetention, error)
	PriorityReadyUserCount(ctx context.Context, retentionFloor int) (int, error)
}
