package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/internal/excel"
	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/pkg/models"
)

// Default hour window for digest runs
const (
	DefaultDigestStartHour = 8
	DefaultDigestEndHour   = 22
)

// DigestSink receives computed digests. Delivery (push notification, email,
// whatever the deployment wires up) is a collaborator concern; this
// subsystem only decides what is due.
type DigestSink interface {
	DeliverDigest(summary models.DigestSummary) error
}

// Digest periodically computes per-user due summaries and hands them to the
// sink. When a report directory is configured it also exports a per-user
// xlsx analytics report.
type Digest struct {
	scheduler *gocron.Scheduler
	service   *Service
	sink      DigestSink
	logger    *zap.Logger
	reportDir string
}

// NewDigest creates a digest runner. reportDir may be empty to disable
// report export.
func NewDigest(service *Service, sink DigestSink, logger *zap.Logger, reportDir string) *Digest {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Digest{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		sink:      sink,
		logger:    logger,
		reportDir: reportDir,
	}
}

// Start begins the hourly digest job in a non-blocking manner.
func (d *Digest) Start() {
	d.scheduler.Every(1).Hour().Do(d.run)
	d.scheduler.StartAsync()
}

// Stop terminates the digest job.
func (d *Digest) Stop() {
	d.scheduler.Stop()
}

// run computes and delivers digests for every known user, skipping hours
// outside the configured window.
func (d *Digest) run() {
	currentHour := d.service.now().Hour()

	startHour := envHour("DIGEST_START_HOUR", DefaultDigestStartHour)
	endHour := envHour("DIGEST_END_HOUR", DefaultDigestEndHour)
	if currentHour < startHour || currentHour > endHour {
		d.logger.Debug("current hour outside digest window, skipping",
			zap.Int("hour", currentHour),
			zap.Int("start_hour", startHour),
			zap.Int("end_hour", endHour),
		)
		return
	}

	ctx := context.Background()
	userIDs, err := d.service.store.ListUserIDs(ctx)
	if err != nil {
		d.logger.Error("failed to list users for digest", zap.Error(err))
		return
	}

	for _, userID := range userIDs {
		if err := d.RunManualCheck(ctx, userID); err != nil {
			d.logger.Error("digest failed for user", zap.Int64("user_id", userID), zap.Error(err))
			continue
		}
		if d.reportDir != "" {
			if err := d.exportReport(ctx, userID); err != nil {
				d.logger.Error("report export failed", zap.Int64("user_id", userID), zap.Error(err))
			}
		}
	}
}

// RunManualCheck computes and delivers the digest for one user. Users with
// nothing due get no digest.
func (d *Digest) RunManualCheck(ctx context.Context, userID int64) error {
	summary, err := d.service.BuildDigest(ctx, userID)
	if err != nil {
		return err
	}
	if summary.DueCount == 0 && summary.OverdueCount == 0 {
		return nil
	}
	return d.sink.DeliverDigest(summary)
}

// exportReport writes the user's analytics report workbook into the
// configured report directory.
func (d *Digest) exportReport(ctx context.Context, userID int64) error {
	analytics, err := d.service.GetLearningAnalytics(ctx, userID)
	if err != nil {
		return err
	}
	schedule, err := d.service.GetDailySchedule(ctx, userID, 7)
	if err != nil {
		return err
	}
	recommendations, err := d.service.GenerateRecommendations(ctx, userID)
	if err != nil {
		return err
	}

	path := filepath.Join(d.reportDir, reportFileName(userID, d.service.now()))
	return excel.ExportUserReport(path, userID, analytics, schedule, recommendations)
}

// reportFileName builds a stable per-user per-day report name, so hourly
// runs overwrite the same day's file instead of piling up.
func reportFileName(userID int64, now time.Time) string {
	return "review-report-" + strconv.FormatInt(userID, 10) + "-" + now.Format("2006-01-02") + ".xlsx"
}

// BuildDigest computes the due/overdue/priority counts for one user.
func (s *Service) BuildDigest(ctx context.Context, userID int64) (models.DigestSummary, error) {
	now := s.now()
	due, err := s.store.CountDue(ctx, userID, now)
	if err != nil {
		return models.DigestSummary{}, err
	}
	overdue, err := s.store.CountOverdue(ctx, userID, now.Add(-OverdueGracePeriod))
	if err != nil {
		return models.DigestSummary{}, err
	}
	priority, err := s.store.CountPriority(ctx, userID)
	if err != nil {
		return models.DigestSummary{}, err
	}
	return models.DigestSummary{
		UserID:        userID,
		DueCount:      due,
		OverdueCount:  overdue,
		PriorityCount: priority,
		GeneratedAt:   now,
	}, nil
}

// envHour reads an hour-of-day from the environment, falling back to the
// default for missing or out-of-range values.
func envHour(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			return h
		}
	}
	return fallback
}
