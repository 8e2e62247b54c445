package scheduler

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/internal/spaced_repetition"
	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/pkg/models"
)

// Deadline escalation thresholds: as the target date approaches, the ease
// factor is capped at progressively smaller values so intervals stop growing.
const (
	deadlineNearDays   = 60
	deadlineUrgentDays = 30
	deadlineNearEase   = 0.9
	deadlineUrgentEase = 0.7
)

// OptimizeForDeadline re-applies the priority-escalation policy across all
// of a user's priority records for an approaching target date. Ease factors
// are tightened at the 60 and 30 day marks, and any record holding below the
// ready retention level has its interval halved and rescheduled from now.
// The pass is idempotent; re-running it is safe.
func (s *Service) OptimizeForDeadline(ctx context.Context, userID int64, targetDate time.Time) error {
	if userID <= 0 {
		return fmt.Errorf("%w: user id must be positive", ErrInvalidInput)
	}

	now := s.now()
	if targetDate.Before(now) {
		return fmt.Errorf("%w: target date is in the past", ErrInvalidInput)
	}
	daysUntilDeadline := int(targetDate.Sub(now).Hours() / 24)

	easeCap := 0.0
	switch {
	case daysUntilDeadline <= deadlineUrgentDays:
		easeCap = deadlineUrgentEase
	case daysUntilDeadline <= deadlineNearDays:
		easeCap = deadlineNearEase
	}

	// The listing only enumerates keys; each record is re-read under its
	// lock before it is rewritten, so reviews landing mid-pass are kept.
	records, err := s.store.FindPriority(ctx, userID)
	if err != nil {
		return err
	}

	updated := 0
	for i := range records {
		changed, err := s.escalateUnderLock(ctx, records[i].Key(), easeCap, now)
		if err != nil {
			return err
		}
		if changed {
			updated++
		}
	}

	s.logger.Info("deadline optimization applied",
		zap.Int64("user_id", userID),
		zap.Int("days_until_deadline", daysUntilDeadline),
		zap.Int("records_updated", updated),
	)
	return nil
}

// escalateUnderLock applies the deadline policy to one record. The record is
// re-read under its key lock so the write never clobbers a concurrent review.
func (s *Service) escalateUnderLock(ctx context.Context, key models.ScheduleKey, easeCap float64, now time.Time) (bool, error) {
	unlock := s.locks.lock(key)
	defer unlock()

	rec, err := s.store.GetOrCreate(ctx, key, now)
	if err != nil {
		return false, err
	}
	if !rec.AmazonInterviewPriority {
		// Flag was dropped between the listing and now; nothing to escalate.
		return false, nil
	}

	changed := false
	if easeCap > 0 && rec.DifficultyAdjustment > easeCap {
		rec.DifficultyAdjustment = easeCap
		changed = true
	}
	if rec.RetentionScore < PriorityReadyRetention {
		rec.RepetitionInterval = spaced_repetition.HalveInterval(rec.RepetitionInterval)
		rec.Reschedule(now)
		changed = true
	}
	if !changed {
		return false, nil
	}

	rec.UpdatedAt = now
	if err := s.store.Save(ctx, rec); err != nil {
		return false, err
	}
	return true, nil
}

// BulkUpdateContentType applies a uniform interval rescale and/or priority
// flag across every record of a content type. Nil arguments leave the
// corresponding field untouched. Rows are rewritten in chunks; the operation
// is not atomic as a whole and partial application followed by a retry is
// acceptable.
func (s *Service) BulkUpdateContentType(ctx context.Context, contentType string, difficultyAdjustment *float64, priorityFlag *bool) (int, error) {
	if contentType == "" {
		return 0, fmt.Errorf("%w: content type is required", ErrInvalidInput)
	}
	if difficultyAdjustment != nil && *difficultyAdjustment <= 0 {
		return 0, fmt.Errorf("%w: difficulty adjustment must be positive", ErrInvalidInput)
	}
	if difficultyAdjustment == nil && priorityFlag == nil {
		return 0, nil
	}

	// As in OptimizeForDeadline, the listing only enumerates keys.
	records, err := s.store.FindByContentType(ctx, contentType)
	if err != nil {
		return 0, err
	}

	now := s.now()
	updated := 0
	for start := 0; start < len(records); start += BulkChunkSize {
		end := start + BulkChunkSize
		if end > len(records) {
			end = len(records)
		}
		for i := start; i < end; i++ {
			if err := s.rescaleUnderLock(ctx, records[i].Key(), difficultyAdjustment, priorityFlag, now); err != nil {
				return updated, err
			}
			updated++
		}
	}

	s.logger.Info("bulk content-type update applied",
		zap.String("content_type", contentType),
		zap.Int("records_updated", updated),
	)
	return updated, nil
}

// rescaleUnderLock rewrites one record with the bulk changes, re-reading it
// under its key lock first.
func (s *Service) rescaleUnderLock(ctx context.Context, key models.ScheduleKey, difficultyAdjustment *float64, priorityFlag *bool, now time.Time) error {
	unlock := s.locks.lock(key)
	defer unlock()

	rec, err := s.store.GetOrCreate(ctx, key, now)
	if err != nil {
		return err
	}

	if difficultyAdjustment != nil {
		rescaled := int(math.Round(float64(rec.RepetitionInterval) * *difficultyAdjustment))
		if rescaled < 1 {
			rescaled = 1
		}
		rec.RepetitionInterval = rescaled
		rec.Reschedule(now)
	}
	if priorityFlag != nil {
		rec.AmazonInterviewPriority = *priorityFlag
	}
	rec.UpdatedAt = now
	return s.store.Save(ctx, rec)
}
