package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/realtime"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/repositories"
)

type WorkProcessService struct {
	Repo     *repositories.WorkProcessRepository
	Notifier ChangeNotifier
	logger   *zap.Logger
}

func NewWorkProcessService(repo *repositories.WorkProcessRepository, notifier ChangeNotifier, logger *zap.Logger) *WorkProcessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkProcessService{Repo: repo, Notifier: notifier, logger: logger}
}

func validateProcess(in *models.WorkProcessInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("Proses adı zorunludur")
	}
	if !in.Type.Valid() {
		return invalid("Geçersiz proses tipi: %s", in.Type)
	}
	for i := range in.Items {
		if err := validateItem(&in.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateItem(in *models.ProcessItemInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("Madde adı zorunludur")
	}
	return nil
}

// Create stores the process and its items together. Items without a
// sequence number are numbered in the order given.
func (s *WorkProcessService) Create(ctx context.Context, in *models.WorkProcessInput) (int, error) {
	if err := validateProcess(in); err != nil {
		return 0, err
	}
	for i := range in.Items {
		if in.Items[i].Sequence == 0 {
			in.Items[i].Sequence = i + 1
		}
	}

	id, err := s.Repo.Create(ctx, in)
	if err != nil {
		s.logger.Error("work process create failed", zap.Error(err))
		return 0, err
	}
	notify(s.Notifier, realtime.ResourceProcess, "create", id)
	return id, nil
}

// Get returns the process with its items.
func (s *WorkProcessService) Get(ctx context.Context, id int) (*models.WorkProcess, error) {
	p, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Items, err = s.Repo.ListItems(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *WorkProcessService) List(ctx context.Context) ([]*models.WorkProcess, error) {
	return s.Repo.List(ctx)
}

// Update changes the header only; items are edited through the item calls.
func (s *WorkProcessService) Update(ctx context.Context, id int, in *models.WorkProcessInput) error {
	in.Items = nil
	if err := validateProcess(in); err != nil {
		return err
	}
	if err := s.Repo.Update(ctx, id, in); err != nil {
		return err
	}
	notify(s.Notifier, realtime.ResourceProcess, "update", id)
	return nil
}

func (s *WorkProcessService) Delete(ctx context.Context, id int) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	notify(s.Notifier, realtime.ResourceProcess, "delete", id)
	return nil
}

func (s *WorkProcessService) ListItems(ctx context.Context, processID int) ([]models.ProcessItem, error) {
	if _, err := s.Repo.Get(ctx, processID); err != nil {
		return nil, err
	}
	return s.Repo.ListItems(ctx, processID)
}

func (s *WorkProcessService) AddItem(ctx context.Context, processID int, in *models.ProcessItemInput) (int, error) {
	if err := validateItem(in); err != nil {
		return 0, err
	}
	id, err := s.Repo.AddItem(ctx, processID, in)
	if err != nil {
		return 0, err
	}
	notify(s.Notifier, realtime.ResourceProcess, "update", processID)
	return id, nil
}

// UpdateItem edits the text fields and applies the completion flag when it
// differs from the stored one.
func (s *WorkProcessService) UpdateItem(ctx context.Context, itemID int, in *models.ProcessItemInput) error {
	if err := validateItem(in); err != nil {
		return err
	}
	current, err := s.Repo.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdateItem(ctx, itemID, in); err != nil {
		return err
	}
	if current.Completed != in.Completed {
		if err := s.Repo.MarkItemComplete(ctx, itemID, in.Completed); err != nil {
			return err
		}
	}
	notify(s.Notifier, realtime.ResourceProcess, "update", current.ProcessID)
	return nil
}

func (s *WorkProcessService) DeleteItem(ctx context.Context, itemID int) error {
	current, err := s.Repo.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteItem(ctx, itemID); err != nil {
		return err
	}
	notify(s.Notifier, realtime.ResourceProcess, "update", current.ProcessID)
	return nil
}

func (s *WorkProcessService) MarkItemComplete(ctx context.Context, itemID int, done bool) error {
	current, err := s.Repo.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.Repo.MarkItemComplete(ctx, itemID, done); err != nil {
		return err
	}
	notify(s.Notifier, realtime.ResourceProcess, "update", current.ProcessID)
	return nil
}
