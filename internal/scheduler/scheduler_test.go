package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/timeutil"
)

type fakeRunner struct {
	calls    int
	err      error
	deadline bool
}

func (f *fakeRunner) RunPreviousMonth(ctx context.Context) (*models.MonthlyReportResult, error) {
	f.calls++
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return &models.MonthlyReportResult{Month: 2, Year: 2025}, nil
}

func TestSchedulerNextRun(t *testing.T) {
	s := NewScheduler(&fakeRunner{}, "", nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	next := s.Next().In(timeutil.Istanbul)
	if next.Day() != 1 || next.Hour() != 9 || next.Minute() != 0 {
		t.Errorf("Expected 1st of month at 09:00 Istanbul, got %s", next)
	}
	if !next.After(time.Now()) {
		t.Errorf("Next run %s is not in the future", next)
	}
}

func TestSchedulerInvalidSchedule(t *testing.T) {
	s := NewScheduler(&fakeRunner{}, "not a cron", nil)
	if err := s.Start(); err == nil {
		t.Error("Expected error for an invalid schedule")
	}
}

func TestSendMonthlyReport(t *testing.T) {
	r := &fakeRunner{}
	s := NewScheduler(r, "", nil)
	s.sendMonthlyReport()
	if r.calls != 1 || !r.deadline {
		t.Errorf("Expected one call with a deadline, got calls=%d deadline=%v", r.calls, r.deadline)
	}

	r.err = errors.New("smtp down")
	s.sendMonthlyReport()
	if r.calls != 2 {
		t.Errorf("Expected failures to be logged, not retried: calls=%d", r.calls)
	}
}
