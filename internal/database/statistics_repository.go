package database

import (
	"context"

	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/pkg/models"
)

// StatisticsRepository handles aggregate queries over schedule records
type StatisticsRepository struct{}

// NewStatisticsRepository creates a new repository instance
func NewStatisticsRepository() *StatisticsRepository {
	return &StatisticsRepository{}
}

// UserRetentionStats returns mean, min and max retention across a user's
// records. Empty sets yield zeroes rather than an error.
func (r *StatisticsRepository) UserRetentionStats(ctx context.Context, userID int64) (models.RetentionStats, error) {
	query := DB.Rebind(`
		SELECT
			COALESCE(AVG(retention_score), 0) AS avg_retention,
			COALESCE(MIN(retention_score), 0) AS min_retention,
			COALESCE(MAX(retention_score), 0) AS max_retention
		FROM schedules
		WHERE user_id = ?
	`)
	var stats models.RetentionStats
	if err := DB.GetContext(ctx, &stats, query, userID); err != nil {
		return models.RetentionStats{}, storeErr("get retention stats", err)
	}
	return stats, nil
}

// UserAverageRepetitions returns the mean completed review cycles per record.
func (r *StatisticsRepository) UserAverageRepetitions(ctx context.Context, userID int64) (float64, error) {
	query := DB.Rebind(`
		SELECT COALESCE(AVG(repetition_count), 0)
		FROM schedules
		WHERE user_id = ?
	`)
	var avg float64
	if err := DB.GetContext(ctx, &avg, query, userID); err != nil {
		return 0, storeErr("get average repetitions", err)
	}
	return avg, nil
}

// MostReviewedContent returns the content items with the most completed
// review cycles across all users.
func (r *StatisticsRepository) MostReviewedContent(ctx context.Context, limit int) ([]models.ContentReviewCount, error) {
	query := DB.Rebind(`
		SELECT content_id, content_type, SUM(repetition_count) AS review_count
		FROM schedules
		GROUP BY content_id, content_type
		ORDER BY review_count DESC
		LIMIT ?
	`)
	var counts []models.ContentReviewCount
	if err := DB.SelectContext(ctx, &counts, query, limit); err != nil {
		return nil, storeErr("get most reviewed content", err)
	}
	return counts, nil
}

// ContentRetention returns per-content average retention restricted to
// content reviewed by at least minLearners distinct users, so one-sample
// items don't skew difficulty classification.
func (r *StatisticsRepository) ContentRetention(ctx context.Context, minLearners int) ([]models.ContentRetention, error) {
	query := DB.Rebind(`
		SELECT
			content_id,
			content_type,
			AVG(retention_score) AS avg_retention,
			COUNT(DISTINCT user_id) AS learner_count
		FROM schedules
		GROUP BY content_id, content_type
		HAVING COUNT(DISTINCT user_id) >= ?
		ORDER BY avg_retention DESC
	`)
	var retention []models.ContentRetention
	if err := DB.SelectContext(ctx, &retention, query, minLearners); err != nil {
		return nil, storeErr("get content retention", err)
	}
	return retention, nil
}

// PriorityReadyUserCount counts the users whose priority-flagged records
// average at least the given retention floor.
func (r *StatisticsRepository) PriorityReadyUserCount(ctx context.Context, retentionFloor int) (int, error) {
	query := DB.Rebind(`
		SELECT COUNT(*) FROM (
			SELECT user_id
			FROM schedules
			WHERE amazon_interview_priority = ?
			GROUP BY user_id
			HAVING AVG(retention_score) >= ?
		) AS ready
	`)
	var count int
	if err := DB.GetContext(ctx, &count, query, true, retentionFloor); err != nil {
		return 0, storeErr("count priority-ready users", err)
	}
	return count, nil
}
