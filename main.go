package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/internal/database"
	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/internal/scheduler"
	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/internal/spaced_repetition"
	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/pkg/models"
)

// logSink delivers digests to the process log. Real delivery surfaces plug
// in their own DigestSink.
type logSink struct {
	logger *zap.Logger
}

func (s *logSink) DeliverDigest(summary models.DigestSummary) error {
	s.logger.Info("review digest",
		zap.Int64("user_id", summary.UserID),
		zap.Int("due", summary.DueCount),
		zap.Int("overdue", summary.OverdueCount),
		zap.Int("priority", summary.PriorityCount),
	)
	return nil
}

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := database.Connect(); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	engine := spaced_repetition.NewEngine(spaced_repetition.DefaultParams())
	service := scheduler.NewService(
		database.NewScheduleRepository(),
		database.NewStatisticsRepository(),
		engine,
		logger,
	)

	digest := scheduler.NewDigest(service, &logSink{logger: logger}, logger, os.Getenv("REPORT_DIR"))
	digest.Start()
	defer digest.Stop()

	logger.Info("review scheduler started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info("shutting down", zap.String("signal", sig.String()))
}
