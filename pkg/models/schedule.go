package models

import "time"

// Default values for a freshly created schedule record.
const (
	DefaultRepetitionInterval   = 1
	DefaultRetentionScore       = 0
	DefaultRepetitionCount      = 0
	DefaultDifficultyAdjustment = 1.0
)

// ScheduleRecord tracks when a learner should next review a single content
// item. Exactly one record exists per (user, content, content type) triple.
type ScheduleRecord struct {
	ID                      string     `json:"id" db:"id"`
	UserID                  int64      `json:"user_id" db:"user_id"`
	ContentID               int64      `json:"content_id" db:"content_id"`
	ContentType             string     `json:"content_type" db:"content_type"`                           // e.g., "question", "topic"
	RetentionScore          int        `json:"retention_score" db:"retention_score"`                     // 0-100 recall strength
	RepetitionInterval      int        `json:"repetition_interval" db:"repetition_interval"`             // Days until next review
	RepetitionCount         int        `json:"repetition_count" db:"repetition_count"`                   // Completed review cycles
	DifficultyAdjustment    float64    `json:"difficulty_adjustment" db:"difficulty_adjustment"`         // Ease factor, 1.0 = neutral
	AmazonInterviewPriority bool       `json:"amazon_interview_priority" db:"amazon_interview_priority"` // Deadline-critical flag
	NextReviewDate          time.Time  `json:"next_review_date" db:"next_review_date"`
	LastReviewedAt          *time.Time `json:"last_reviewed_at" db:"last_reviewed_at"`
	CreatedAt               time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at" db:"updated_at"`
}

// ScheduleKey identifies the unique schedule record for a user and item.
type ScheduleKey struct {
	UserID      int64
	ContentID   int64
	ContentType string
}

// Key returns the unique (user, content, content type) identity of the record.
func (r *ScheduleRecord) Key() ScheduleKey {
	return ScheduleKey{UserID: r.UserID, ContentID: r.ContentID, ContentType: r.ContentType}
}

// Clamp enforces the record's range invariants: interval at least one day,
// retention in [0,100] and a positive ease factor.
func (r *ScheduleRecord) Clamp() {
	if r.RepetitionInterval < 1 {
		r.RepetitionInterval = 1
	}
	r.RetentionScore = ClampRetention(r.RetentionScore)
	if r.DifficultyAdjustment <= 0 {
		r.DifficultyAdjustment = DefaultDifficultyAdjustment
	}
}

// Reschedule recomputes NextReviewDate from the given reference time and the
// current interval. Callers must use the same reference they stored in
// LastReviewedAt so the date never goes stale.
func (r *ScheduleRecord) Reschedule(from time.Time) {
	r.NextReviewDate = from.AddDate(0, 0, r.RepetitionInterval)
}

// IsDue reports whether the record should be reviewed as of the given time.
func (r *ScheduleRecord) IsDue(asOf time.Time) bool {
	return !r.NextReviewDate.After(asOf)
}

// ClampRetention bounds a retention score to the valid 0-100 range.
func ClampRetention(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
