package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/realtime"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/repositories"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/timeutil"
)

// maxGapSearch is the highest order number reused by NextOrderNumber.
const maxGapSearch = 9999

type WorkOrderService struct {
	Repo     *repositories.WorkOrderRepository
	Notifier ChangeNotifier
	logger   *zap.Logger
}

func NewWorkOrderService(repo *repositories.WorkOrderRepository, notifier ChangeNotifier, logger *zap.Logger) *WorkOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkOrderService{Repo: repo, Notifier: notifier, logger: logger}
}

// Validate checks the required fields and fills in defaults: today's date,
// and the line total when the order has lines but no total.
func (s *WorkOrderService) Validate(in *models.WorkOrderInput) error {
	in.CustomerTitle = strings.TrimSpace(in.CustomerTitle)
	if in.CustomerTitle == "" {
		return invalid("Müşteri ünvanı zorunludur")
	}
	if strings.TrimSpace(in.Date) == "" {
		in.Date = timeutil.Now().Format(timeutil.DateLayout)
	}
	if in.TotalAmount.IsZero() && len(in.UsedProducts) > 0 {
		in.TotalAmount = in.UsedProducts.Total()
	}
	return nil
}

// Create persists an order. A missing order number is allocated.
func (s *WorkOrderService) Create(ctx context.Context, in *models.WorkOrderInput) (int, error) {
	if err := s.Validate(in); err != nil {
		return 0, err
	}
	if in.OrderNo <= 0 {
		no, err := s.NextOrderNumber(ctx)
		if err != nil {
			return 0, err
		}
		in.OrderNo = no
	}

	id, err := s.Repo.Create(ctx, in)
	if err != nil {
		s.logger.Error("work order create failed", zap.Error(err))
		return 0, err
	}
	notify(s.Notifier, realtime.ResourceWorkOrder, "create", id)
	return id, nil
}

func (s *WorkOrderService) Get(ctx context.Context, id int) (*models.WorkOrder, error) {
	return s.Repo.Get(ctx, id)
}

func (s *WorkOrderService) List(ctx context.Context) ([]*models.WorkOrder, error) {
	return s.Repo.List(ctx)
}

func (s *WorkOrderService) Update(ctx context.Context, id int, in *models.WorkOrderInput) error {
	if err := s.Validate(in); err != nil {
		return err
	}
	if err := s.Repo.Update(ctx, id, in); err != nil {
		return err
	}
	notify(s.Notifier, realtime.ResourceWorkOrder, "update", id)
	return nil
}

func (s *WorkOrderService) Delete(ctx context.Context, id int) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	notify(s.Notifier, realtime.ResourceWorkOrder, "delete", id)
	return nil
}

// NextOrderNumber returns the smallest unused number in 1..9999, or the
// largest used number plus one when that range is full. Two concurrent
// callers can receive the same number; is_emri_no is not unique.
func (s *WorkOrderService) NextOrderNumber(ctx context.Context) (int, error) {
	numbers, err := s.Repo.OrderNumbers(ctx)
	if err != nil {
		return 0, err
	}
	return nextFreeNumber(numbers), nil
}

func nextFreeNumber(used []int) int {
	seen := make(map[int]bool, len(used))
	max := 0
	for _, n := range used {
		seen[n] = true
		if n > max {
			max = n
		}
	}
	for n := 1; n <= maxGapSearch; n++ {
		if !seen[n] {
			return n
		}
	}
	return max + 1
}
