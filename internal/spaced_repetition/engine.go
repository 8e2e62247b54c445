package spaced_repetition

import (
	"math"
	"time"

	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/pkg/models"
)

// Engine implements the interval-growth policy for spaced repetition. It is a
// pure transition function: Review takes a record snapshot and returns a new
// one, so the algorithm can be tested without any storage.
type Engine struct {
	params Params
}

// NewEngine creates an engine with the given policy parameters.
func NewEngine(params Params) *Engine {
	return &Engine{params: params}
}

// PerformanceBand classifies a review outcome.
type PerformanceBand int

const (
	// Recall failed or was very weak
	BandPoor PerformanceBand = iota
	// Recalled with effort
	BandAdequate
	// Recalled easily
	BandStrong
)

// Classify maps a 0-5 performance rating onto its band. Out-of-range ratings
// are treated as the nearest valid band rather than rejected.
func (e *Engine) Classify(rating int) PerformanceBand {
	switch {
	case rating < e.params.PassThreshold:
		return BandPoor
	case rating >= e.params.StrongThreshold:
		return BandStrong
	default:
		return BandAdequate
	}
}

// Review applies a single review outcome to the record and returns the
// updated snapshot. retentionOverride, when non-nil, replaces the stored
// retention score (clamped to 0-100) before the priority policy runs.
//
// The interval grows from the pre-update ease factor; the ease step earned
// by this review only affects future intervals.
func (e *Engine) Review(rec models.ScheduleRecord, rating int, retentionOverride *int, now time.Time) models.ScheduleRecord {
	if retentionOverride != nil {
		rec.RetentionScore = models.ClampRetention(*retentionOverride)
	}

	switch e.Classify(rating) {
	case BandPoor:
		// Relearn from scratch; the cycle counter stays, it feeds analytics
		rec.RepetitionInterval = 1
		rec.DifficultyAdjustment -= e.params.EaseStep
	case BandAdequate:
		rec.RepetitionInterval = e.grow(rec.RepetitionInterval, e.params.AdequateMultiplier, rec.DifficultyAdjustment)
	case BandStrong:
		rec.RepetitionInterval = e.grow(rec.RepetitionInterval, e.params.StrongMultiplier, rec.DifficultyAdjustment)
		rec.DifficultyAdjustment += e.params.EaseStep
		rec.RepetitionCount++
	}

	if rec.DifficultyAdjustment < e.params.MinEase {
		rec.DifficultyAdjustment = e.params.MinEase
	}
	if rec.DifficultyAdjustment > e.params.MaxEase {
		rec.DifficultyAdjustment = e.params.MaxEase
	}

	if rec.AmazonInterviewPriority {
		rec.RepetitionInterval = e.compress(rec.RepetitionInterval, rec.RetentionScore)
	}

	rec.LastReviewedAt = &now
	rec.Reschedule(now)
	rec.Clamp()
	return rec
}

// grow computes the next interval from the current one, scaled by the ease
// factor and rounded up to the next whole day.
func (e *Engine) grow(interval int, multiplier, ease float64) int {
	next := int(math.Ceil(float64(interval) * multiplier * ease))
	if next < 1 {
		next = 1
	}
	if next > e.params.MaxInterval {
		next = e.params.MaxInterval
	}
	return next
}

// compress applies the deadline-critical policy: priority items get at most
// half the normal interval, and another halving when retention sits below
// the configured floor.
func (e *Engine) compress(interval, retention int) int {
	interval = interval / e.params.PriorityDivisor
	if retention < e.params.RetentionFloor {
		interval = interval / 2
	}
	if interval < 1 {
		interval = 1
	}
	return interval
}

// HalveInterval halves an interval with a floor of one day. Used by the
// priority toggle and deadline optimization paths, which reschedule outside
// of a review.
func HalveInterval(interval int) int {
	half := interval / 2
	if half < 1 {
		half = 1
	}
	return half
}
