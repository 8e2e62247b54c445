package models

import "time"

// DailyBucket groups the reviews falling on one calendar date.
type DailyBucket struct {
	Date    string           `json:"date"` // YYYY-MM-DD
	Reviews []ScheduleRecord `json:"reviews"`
}

// DailySchedule is the review plan for the next N days.
type DailySchedule struct {
	ByDate        []DailyBucket `json:"by_date"`
	TotalReviews  int           `json:"total_reviews"`
	AveragePerDay float64       `json:"average_per_day"`
	PriorityCount int           `json:"priority_count"`
}

// RetentionStats aggregates retention scores across a user's records.
type RetentionStats struct {
	Average float64 `json:"average" db:"avg_retention"`
	Min     int     `json:"min" db:"min_retention"`
	Max     int     `json:"max" db:"max_retention"`
}

// LearningAnalytics summarizes a user's review state and throughput.
type LearningAnalytics struct {
	TotalSchedules        int            `json:"total_schedules"`
	Retention             RetentionStats `json:"retention"`
	AverageRepetitions    float64        `json:"average_repetitions"`
	DueCount              int            `json:"due_count"`
	OverdueCount          int            `json:"overdue_count"`
	PriorityCount         int            `json:"priority_count"`
	LearningEfficiency    float64        `json:"learning_efficiency"` // Mean repetitions per elapsed day
	RetentionDistribution map[string]int `json:"retention_distribution"`
}

// ContentRetention is the average retention for one content item together
// with how many distinct learners have reviewed it.
type ContentRetention struct {
	ContentID        int64   `json:"content_id" db:"content_id"`
	ContentType      string  `json:"content_type" db:"content_type"`
	AverageRetention float64 `json:"average_retention" db:"avg_retention"`
	LearnerCount     int     `json:"learner_count" db:"learner_count"`
}

// ContentReviewCount is the total number of completed review cycles one
// content item has accumulated across all learners.
type ContentReviewCount struct {
	ContentID   int64  `json:"content_id" db:"content_id"`
	ContentType string `json:"content_type" db:"content_type"`
	ReviewCount int    `json:"review_count" db:"review_count"`
}

// ContentDifficultyAnalysis classifies content by how well learners retain it.
type ContentDifficultyAnalysis struct {
	EasyContent      []ContentRetention `json:"easy_content"`
	DifficultContent []ContentRetention `json:"difficult_content"`
	TotalAnalyzed    int                `json:"total_analyzed"`
}

// SystemStatistics is the cross-user operational snapshot.
type SystemStatistics struct {
	TotalSchedules         int                  `json:"total_schedules"`
	DueReviews             int                  `json:"due_reviews"`
	OverdueReviews         int                  `json:"overdue_reviews"`
	CompletionRate         float64              `json:"completion_rate"`
	MostReviewedContent    []ContentReviewCount `json:"most_reviewed_content"`
	PriorityReadyUserCount int                  `json:"priority_ready_user_count"`
}

// DigestSummary is what the periodic digest job computes per user. Delivery
// of the digest is a collaborator concern.
type DigestSummary struct {
	UserID        int64     `json:"user_id"`
	DueCount      int       `json:"due_count"`
	OverdueCount  int       `json:"overdue_count"`
	PriorityCount int       `json:"priority_count"`
	GeneratedAt   time.Time `json:"generated_at"`
}
