package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/pkg/models"
)

// ScheduleRepository handles database operations for schedule records
type ScheduleRepository struct{}

// NewScheduleRepository creates a new repository instance
func NewScheduleRepository() *ScheduleRepository {
	return &ScheduleRepository{}
}

// GetOrCreate returns the schedule record for the given key, lazily creating
// one with default values on first access. It never fails on "not found".
func (r *ScheduleRepository) GetOrCreate(ctx context.Context, key models.ScheduleKey, now time.Time) (*models.ScheduleRecord, error) {
	rec, err := r.getByKey(ctx, key)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrRecordNotFound) {
		return nil, err
	}

	fresh := models.ScheduleRecord{
		ID:                   uuid.New().String(),
		UserID:               key.UserID,
		ContentID:            key.ContentID,
		ContentType:          key.ContentType,
		RetentionScore:       models.DefaultRetentionScore,
		RepetitionInterval:   models.DefaultRepetitionInterval,
		RepetitionCount:      models.DefaultRepetitionCount,
		DifficultyAdjustment: models.DefaultDifficultyAdjustment,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	fresh.Reschedule(now)

	query := DB.Rebind(`
		INSERT INTO schedules (
			id, user_id, content_id, content_type,
			retention_score, repetition_interval, repetition_count,
			difficulty_adjustment, amazon_interview_priority,
			next_review_date, last_reviewed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = DB.ExecContext(ctx, query,
		fresh.ID,
		fresh.UserID,
		fresh.ContentID,
		fresh.ContentType,
		fresh.RetentionScore,
		fresh.RepetitionInterval,
		fresh.RepetitionCount,
		fresh.DifficultyAdjustment,
		fresh.AmazonInterviewPriority,
		fresh.NextReviewDate,
		fresh.LastReviewedAt,
		fresh.CreatedAt,
		fresh.UpdatedAt,
	)
	if err != nil {
		// A concurrent creator may have won the unique constraint race;
		// the existing row is the correct answer in that case.
		if existing, selErr := r.getByKey(ctx, key); selErr == nil {
			return existing, nil
		}
		return nil, storeErr("create schedule record", err)
	}

	return &fresh, nil
}

// getByKey returns the record for a key, or ErrRecordNotFound.
func (r *ScheduleRepository) getByKey(ctx context.Context, key models.ScheduleKey) (*models.ScheduleRecord, error) {
	query := DB.Rebind(`
		SELECT * FROM schedules
		WHERE user_id = ? AND content_id = ? AND content_type = ?
	`)
	var rec models.ScheduleRecord
	err := DB.GetContext(ctx, &rec, query, key.UserID, key.ContentID, key.ContentType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, storeErr("get schedule record", err)
	}
	return &rec, nil
}

// Save upserts a fully-computed record. Callers are responsible for the
// record satisfying its invariants before the write.
func (r *ScheduleRepository) Save(ctx context.Context, rec *models.ScheduleRecord) error {
	query := DB.Rebind(`
		UPDATE schedules SET
			retention_score = ?,
			repetition_interval = ?,
			repetition_count = ?,
			difficulty_adjustment = ?,
			amazon_interview_priority = ?,
			next_review_date = ?,
			last_reviewed_at = ?,
			updated_at = ?
		WHERE id = ?
	`)
	result, err := DB.ExecContext(ctx, query,
		rec.RetentionScore,
		rec.RepetitionInterval,
		rec.RepetitionCount,
		rec.DifficultyAdjustment,
		rec.AmazonInterviewPriority,
		rec.NextReviewDate,
		rec.LastReviewedAt,
		rec.UpdatedAt,
		rec.ID,
	)
	if err != nil {
		return storeErr("save schedule record", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("get rows affected", err)
	}
	if rows == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// FindDue returns all of a user's records due as of the given time, soonest
// first.
func (r *ScheduleRepository) FindDue(ctx context.Context, userID int64, asOf time.Time) ([]models.ScheduleRecord, error) {
	query := DB.Rebind(`
		SELECT * FROM schedules
		WHERE user_id = ? AND next_review_date <= ?
		ORDER BY next_review_date ASC
	`)
	var records []models.ScheduleRecord
	if err := DB.SelectContext(ctx, &records, query, userID, asOf); err != nil {
		return nil, storeErr("get due reviews", err)
	}
	return records, nil
}

// FindOverdue returns records due strictly before the overdue threshold,
// which sits further in the past than "now".
func (r *ScheduleRepository) FindOverdue(ctx context.Context, userID int64, threshold time.Time) ([]models.ScheduleRecord, error) {
	query := DB.Rebind(`
		SELECT * FROM schedules
		WHERE user_id = ? AND next_review_date < ?
		ORDER BY next_review_date ASC
	`)
	var records []models.ScheduleRecord
	if err := DB.SelectContext(ctx, &records, query, userID, threshold); err != nil {
		return nil, storeErr("get overdue reviews", err)
	}
	return records, nil
}

// FindPriority returns a user's deadline-critical records ordered by due date.
func (r *ScheduleRepository) FindPriority(ctx context.Context, userID int64) ([]models.ScheduleRecord, error) {
	query := DB.Rebind(`
		SELECT * FROM schedules
		WHERE user_id = ? AND amazon_interview_priority = ?
		ORDER BY next_review_date ASC
	`)
	var records []models.ScheduleRecord
	if err := DB.SelectContext(ctx, &records, query, userID, true); err != nil {
		return nil, storeErr("get priority reviews", err)
	}
	return records, nil
}

// FindInDateRange returns records whose next review falls inside [start, end].
func (r *ScheduleRepository) FindInDateRange(ctx context.Context, userID int64, start, end time.Time) ([]models.ScheduleRecord, error) {
	query := DB.Rebind(`
		SELECT * FROM schedules
		WHERE user_id = ? AND next_review_date >= ? AND next_review_date <= ?
		ORDER BY next_review_date ASC
	`)
	var records []models.ScheduleRecord
	if err := DB.SelectContext(ctx, &records, query, userID, start, end); err != nil {
		return nil, storeErr("get reviews in date range", err)
	}
	return records, nil
}

// FindByContentType returns all records of a content type across users.
func (r *ScheduleRepository) FindByContentType(ctx context.Context, contentType string) ([]models.ScheduleRecord, error) {
	query := DB.Rebind(`
		SELECT * FROM schedules
		WHERE content_type = ?
		ORDER BY user_id ASC, content_id ASC
	`)
	var records []models.ScheduleRecord
	if err := DB.SelectContext(ctx, &records, query, contentType); err != nil {
		return nil, storeErr("get reviews by content type", err)
	}
	return records, nil
}

// FindUpcoming returns the soonest-due records for a user regardless of
// whether they are due yet. Used for look-ahead planning.
func (r *ScheduleRepository) FindUpcoming(ctx context.Context, userID int64, limit int) ([]models.ScheduleRecord, error) {
	query := DB.Rebind(`
		SELECT * FROM schedules
		WHERE user_id = ?
		ORDER BY next_review_date ASC
		LIMIT ?
	`)
	var records []models.ScheduleRecord
	if err := DB.SelectContext(ctx, &records, query, userID, limit); err != nil {
		return nil, storeErr("get upcoming reviews", err)
	}
	return records, nil
}

// FindAllByUser returns every schedule record a user owns.
func (r *ScheduleRepository) FindAllByUser(ctx context.Context, userID int64) ([]models.ScheduleRecord, error) {
	query := DB.Rebind(`
		SELECT * FROM schedules
		WHERE user_id = ?
		ORDER BY next_review_date ASC
	`)
	var records []models.ScheduleRecord
	if err := DB.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, storeErr("get user schedules", err)
	}
	return records, nil
}

// CountDue returns how many of a user's records are due as of the given time.
func (r *ScheduleRepository) CountDue(ctx context.Context, userID int64, asOf time.Time) (int, error) {
	query := DB.Rebind(`
		SELECT COUNT(*) FROM schedules
		WHERE user_id = ? AND next_review_date <= ?
	`)
	var count int
	if err := DB.GetContext(ctx, &count, query, userID, asOf); err != nil {
		return 0, storeErr("count due reviews", err)
	}
	return count, nil
}

// CountOverdue returns how many records are due before the overdue threshold.
func (r *ScheduleRepository) CountOverdue(ctx context.Context, userID int64, threshold time.Time) (int, error) {
	query := DB.Rebind(`
		SELECT COUNT(*) FROM schedules
		WHERE user_id = ? AND next_review_date < ?
	`)
	var count int
	if err := DB.GetContext(ctx, &count, query, userID, threshold); err != nil {
		return 0, storeErr("count overdue reviews", err)
	}
	return count, nil
}

// CountPriority returns how many deadline-critical records a user has.
func (r *ScheduleRepository) CountPriority(ctx context.Context, userID int64) (int, error) {
	query := DB.Rebind(`
		SELECT COUNT(*) FROM schedules
		WHERE user_id = ? AND amazon_interview_priority = ?
	`)
	var count int
	if err := DB.GetContext(ctx, &count, query, userID, true); err != nil {
		return 0, storeErr("count priority reviews", err)
	}
	return count, nil
}

// CountAll returns the total number of schedule records across all users.
func (r *ScheduleRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := DB.GetContext(ctx, &count, "SELECT COUNT(*) FROM schedules"); err != nil {
		return 0, storeErr("count schedules", err)
	}
	return count, nil
}

// CountDueAll returns how many records are due across all users.
func (r *ScheduleRepository) CountDueAll(ctx context.Context, asOf time.Time) (int, error) {
	query := DB.Rebind("SELECT COUNT(*) FROM schedules WHERE next_review_date <= ?")
	var count int
	if err := DB.GetContext(ctx, &count, query, asOf); err != nil {
		return 0, storeErr("count due reviews", err)
	}
	return count, nil
}

// CountOverdueAll returns how many records are overdue across all users.
func (r *ScheduleRepository) CountOverdueAll(ctx context.Context, threshold time.Time) (int, error) {
	query := DB.Rebind("SELECT COUNT(*) FROM schedules WHERE next_review_date < ?")
	var count int
	if err := DB.GetContext(ctx, &count, query, threshold); err != nil {
		return 0, storeErr("count overdue reviews", err)
	}
	return count, nil
}

// ListUserIDs returns the distinct users that own at least one schedule.
func (r *ScheduleRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := DB.SelectContext(ctx, &ids, "SELECT DISTINCT user_id FROM schedules ORDER BY user_id ASC")
	if err != nil {
		return nil, storeErr("list user ids", err)
	}
	return ids, nil
}
