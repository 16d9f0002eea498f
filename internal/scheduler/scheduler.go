package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/timeutil"
)

// DefaultSchedule runs at 09:00 on the first day of every month.
const DefaultSchedule = "0 9 1 * *"

const runTimeout = 2 * time.Minute

// ReportRunner sends the report for the month before the current one.
type ReportRunner interface {
	RunPreviousMonth(ctx context.Context) (*models.MonthlyReportResult, error)
}

// Scheduler runs the monthly report job in Istanbul time.
type Scheduler struct {
	cron     *cron.Cron
	runner   ReportRunner
	schedule string
	logger   *zap.Logger
}

func NewScheduler(runner ReportRunner, schedule string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(timeutil.Istanbul)),
		runner:   runner,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the job and starts the cron loop. An invalid schedule is
// returned as an error and nothing is started.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sendMonthlyReport); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("monthly_report", s.schedule))
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Next returns the next run time of the report job, or the zero time.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) sendMonthlyReport() {
	s.logger.Info("generating monthly report")
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	res, err := s.runner.RunPreviousMonth(ctx)
	if err != nil {
		s.logger.Error("monthly report failed", zap.Error(err))
		return
	}
	s.logger.Info("monthly report sent",
		zap.Int("month", res.Month),
		zap.Int("year", res.Year),
		zap.Int("orders", res.OrderCount))
}
