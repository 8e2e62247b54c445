package scheduler

import (
	"context"
	"fmt"

	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/pkg/models"
)

// Retention distribution band labels.
const (
	BandLabelWeak       = "weak"       // retention < 60
	BandLabelDeveloping = "developing" // retention 60-79
	BandLabelStrong     = "strong"     // retention 80-100
)

// Number of items reported by system-level most-reviewed ranking.
const mostReviewedLimit = 5

// GetLearningAnalytics summarizes a user's review state: retention and
// repetition aggregates, due/overdue/priority counts, the learning
// efficiency throughput proxy and the retention distribution.
func (s *Service) GetLearningAnalytics(ctx context.Context, userID int64) (*models.LearningAnalytics, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id must be positive", ErrInvalidInput)
	}

	now := s.now()
	records, err := s.store.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	retention, err := s.stats.UserRetentionStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	avgReps, err := s.stats.UserAverageRepetitions(ctx, userID)
	if err != nil {
		return nil, err
	}
	dueCount, err := s.store.CountDue(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	overdueCount, err := s.store.CountOverdue(ctx, userID, now.Add(-OverdueGracePeriod))
	if err != nil {
		return nil, err
	}
	priorityCount, err := s.store.CountPriority(ctx, userID)
	if err != nil {
		return nil, err
	}

	distribution := map[string]int{
		BandLabelWeak:       0,
		BandLabelDeveloping: 0,
		BandLabelStrong:     0,
	}
	efficiencySum := 0.0
	for _, rec := range records {
		distribution[retentionBand(rec.RetentionScore)]++

		// Reviews completed per day since the record was created. A record
		// younger than a day counts one elapsed day, never zero.
		elapsedDays := int(now.Sub(rec.CreatedAt).Hours() / 24)
		if elapsedDays < 1 {
			elapsedDays = 1
		}
		efficiencySum += float64(rec.RepetitionCount) / float64(elapsedDays)
	}

	efficiency := 0.0
	if len(records) > 0 {
		efficiency = efficiencySum / float64(len(records))
	}

	return &models.LearningAnalytics{
		TotalSchedules:        len(records),
		Retention:             retention,
		AverageRepetitions:    avgReps,
		DueCount:              dueCount,
		OverdueCount:          overdueCount,
		PriorityCount:         priorityCount,
		LearningEfficiency:    efficiency,
		RetentionDistribution: distribution,
	}, nil
}

// retentionBand maps a retention score onto its qualitative label.
func retentionBand(score int) string {
	switch {
	case score < WeakRetentionCeiling:
		return BandLabelWeak
	case score < StrongRetentionFloor:
		return BandLabelDeveloping
	default:
		return BandLabelStrong
	}
}

// GenerateRecommendations produces a deterministic set of study suggestions
// from the user's analytics. The rules are ordered from most to least urgent.
func (s *Service) GenerateRecommendations(ctx context.Context, userID int64) ([]string, error) {
	analytics, err := s.GetLearningAnalytics(ctx, userID)
	if err != nil {
		return nil, err
	}

	recommendations := []string{}

	if analytics.OverdueCount > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("You have %d overdue reviews. Clear them first before taking on new material.", analytics.OverdueCount))
	}
	if analytics.DueCount > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("%d reviews are due today.", analytics.DueCount))
	}
	if weak := analytics.RetentionDistribution[BandLabelWeak]; weak > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("%d items have weak retention (below %d). Consider focused sessions on them.", weak, WeakRetentionCeiling))
	}

	if analytics.PriorityCount > 0 {
		ready, err := s.priorityReadyCount(ctx, userID)
		if err != nil {
			return nil, err
		}
		readyPct := float64(ready) / float64(analytics.PriorityCount) * 100
		recommendations = append(recommendations,
			fmt.Sprintf("Interview prep readiness: %.0f%% of priority items at %d+ retention.", readyPct, PriorityReadyRetention))
	}

	switch {
	case analytics.LearningEfficiency >= 0.5:
		recommendations = append(recommendations,
			"Review throughput is high. Current pace is sustainable.")
	case analytics.LearningEfficiency > 0 && analytics.LearningEfficiency < 0.1:
		recommendations = append(recommendations,
			"Review throughput is low. Shorter, more frequent sessions tend to help.")
	}

	if todayDue, err := s.store.CountDue(ctx, userID, s.now()); err == nil && todayDue > HeavyDayThreshold {
		recommendations = append(recommendations,
			fmt.Sprintf("Heavy day ahead: %d reviews due. Split the session if needed.", todayDue))
	}

	return recommendations, nil
}

// priorityReadyCount counts a user's priority records at or above the
// deadline-ready retention level.
func (s *Service) priorityReadyCount(ctx context.Context, userID int64) (int, error) {
	records, err := s.store.FindPriority(ctx, userID)
	if err != nil {
		return 0, err
	}
	ready := 0
	for _, rec := range records {
		if rec.RetentionScore >= PriorityReadyRetention {
			ready++
		}
	}
	return ready, nil
}

// Content difficulty cutoffs by mean retention across learners.
const (
	easyContentFloor        = 80
	difficultContentCeiling = 60
)

// GetContentDifficultyAnalysis classifies content by how well the learner
// population retains it. Content seen by fewer than the minimum distinct
// learners is excluded so single samples don't drive classification.
func (s *Service) GetContentDifficultyAnalysis(ctx context.Context) (*models.ContentDifficultyAnalysis, error) {
	retention, err := s.stats.ContentRetention(ctx, MinLearnersForAnalysis)
	if err != nil {
		return nil, err
	}

	analysis := &models.ContentDifficultyAnalysis{
		EasyContent:      []models.ContentRetention{},
		DifficultContent: []models.ContentRetention{},
		TotalAnalyzed:    len(retention),
	}
	for _, content := range retention {
		switch {
		case content.AverageRetention >= easyContentFloor:
			analysis.EasyContent = append(analysis.EasyContent, content)
		case content.AverageRetention < difficultContentCeiling:
			analysis.DifficultContent = append(analysis.DifficultContent, content)
		}
	}
	return analysis, nil
}

// GetSystemStatistics returns the cross-user operational snapshot.
func (s *Service) GetSystemStatistics(ctx context.Context) (*models.SystemStatistics, error) {
	now := s.now()

	total, err := s.store.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	due, err := s.store.CountDueAll(ctx, now)
	if err != nil {
		return nil, err
	}
	overdue, err := s.store.CountOverdueAll(ctx, now.Add(-OverdueGracePeriod))
	if err != nil {
		return nil, err
	}
	mostReviewed, err := s.stats.MostReviewedContent(ctx, mostReviewedLimit)
	if err != nil {
		return nil, err
	}
	readyUsers, err := s.stats.PriorityReadyUserCount(ctx, PriorityReadyRetention)
	if err != nil {
		return nil, err
	}

	// Share of schedules currently on track, i.e. not yet due again
	completionRate := 0.0
	if total > 0 {
		completionRate = float64(total-due) / float64(total)
	}

	return &models.SystemStatistics{
		TotalSchedules:         total,
		DueReviews:             due,
		OverdueReviews:         overdue,
		CompletionRate:         completionRate,
		MostReviewedContent:    mostReviewed,
		PriorityReadyUserCount: readyUsers,
	}, nil
}
