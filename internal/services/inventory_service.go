package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/cache"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/metrics"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/realtime"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/repositories"
)

type InventoryService struct {
	Repo     *repositories.StockRepository
	Notifier ChangeNotifier
	logger   *zap.Logger
}

func NewInventoryService(repo *repositories.StockRepository, notifier ChangeNotifier, logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{Repo: repo, Notifier: notifier, logger: logger}
}

func validateStock(in *models.StockInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Code = strings.TrimSpace(in.Code)
	if in.Name == "" {
		return invalid("Ürün adı zorunludur")
	}
	return nil
}

func (s *InventoryService) changed(ctx context.Context, action string, id any) {
	cache.InvalidateStockCaches(ctx)
	notify(s.Notifier, realtime.ResourceStock, action, id)
}

func (s *InventoryService) Create(ctx context.Context, in *models.StockInput) (int, error) {
	if err := validateStock(in); err != nil {
		return 0, err
	}
	id, ok, err := s.Repo.Create(ctx, in)
	if err != nil {
		s.logger.Error("stock create failed", zap.Error(err))
		return 0, err
	}
	if !ok {
		return 0, invalid("Ürün kodu zaten kullanılıyor")
	}
	s.changed(ctx, "create", id)
	return id, nil
}

func (s *InventoryService) Get(ctx context.Context, id int) (*models.StockItem, error) {
	return s.Repo.Get(ctx, id)
}

func (s *InventoryService) GetByCode(ctx context.Context, code string) (*models.StockItem, error) {
	return s.Repo.GetByCode(ctx, code)
}

func (s *InventoryService) List(ctx context.Context, search string) ([]*models.StockItem, error) {
	return s.Repo.List(ctx, search)
}

func (s *InventoryService) SearchByName(ctx context.Context, name string) ([]*models.StockItem, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalid("Ürün adı zorunludur")
	}
	return s.Repo.SearchByName(ctx, name)
}

func (s *InventoryService) Update(ctx context.Context, id int, in *models.StockInput) error {
	if err := validateStock(in); err != nil {
		return err
	}
	ok, err := s.Repo.Update(ctx, id, in)
	if err != nil {
		return err
	}
	if !ok {
		return invalid("Ürün kodu zaten kullanılıyor")
	}
	s.changed(ctx, "update", id)
	return nil
}

func (s *InventoryService) Delete(ctx context.Context, id int) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "delete", id)
	return nil
}

// Decrement removes qty from the item with the given code. Business
// failures come back as ok=false with a message; err is only set for
// storage failures.
func (s *InventoryService) Decrement(ctx context.Context, code string, qty decimal.Decimal) (bool, string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		metrics.StockDecrementsTotal.WithLabelValues("invalid").Inc()
		return false, "Ürün kodu boş olamaz", nil
	}
	if !qty.IsPositive() {
		metrics.StockDecrementsTotal.WithLabelValues("invalid").Inc()
		return false, "Miktar 0'dan büyük olmalıdır", nil
	}

	item, err := s.Repo.GetByCode(ctx, code)
	if errors.Is(err, repositories.ErrStockNotFound) {
		metrics.StockDecrementsTotal.WithLabelValues("not_found").Inc()
		return false, fmt.Sprintf("Ürün kodu '%s' stokta bulunamadı", code), nil
	}
	if err != nil {
		return false, "", err
	}

	if item.Quantity.LessThan(qty) {
		metrics.StockDecrementsTotal.WithLabelValues("insufficient").Inc()
		return false, fmt.Sprintf("Yetersiz stok! Mevcut: %s, İstenen: %s (Ürün: %s)",
			item.Quantity, qty, item.Name), nil
	}

	remaining := item.Quantity.Sub(qty)
	if err := s.Repo.SetQuantity(ctx, code, remaining); err != nil {
		s.logger.Error("stock decrement failed", zap.String("code", code), zap.Error(err))
		return false, "", err
	}

	metrics.StockDecrementsTotal.WithLabelValues("ok").Inc()
	s.changed(ctx, "update", item.ID)
	return true, fmt.Sprintf("Stok güncellendi: %s (Kalan: %s)", item.Name, remaining), nil
}

// DecrementBatch validates every line before writing anything. Lines that
// repeat a code are checked against the balance left by the earlier lines.
// When no line is valid nothing is written; otherwise the valid lines are
// written in one transaction and the invalid ones are reported.
func (s *InventoryService) DecrementBatch(ctx context.Context, lines []models.DecrementLine) (successes, failures []string, err error) {
	type applied struct {
		id        int
		code      string
		name      string
		remaining decimal.Decimal
	}

	balances := make(map[string]*models.StockItem)
	var valid []applied

	for _, line := range lines {
		code := strings.TrimSpace(line.Code)
		name := line.Name

		if code == "" {
			if name == "" {
				name = "Bilinmeyen"
			}
			failures = append(failures, fmt.Sprintf("%s: Ürün kodu boş", name))
			metrics.StockDecrementsTotal.WithLabelValues("invalid").Inc()
			continue
		}
		if !line.Quantity.IsPositive() {
			failures = append(failures, fmt.Sprintf("%s (%s): Miktar 0'dan büyük olmalıdır", name, code))
			metrics.StockDecrementsTotal.WithLabelValues("invalid").Inc()
			continue
		}

		item, ok := balances[code]
		if !ok {
			item, err = s.Repo.GetByCode(ctx, code)
			if errors.Is(err, repositories.ErrStockNotFound) {
				failures = append(failures, fmt.Sprintf("%s (%s): Stokta bulunamadı", name, code))
				metrics.StockDecrementsTotal.WithLabelValues("not_found").Inc()
				continue
			}
			if err != nil {
				return nil, nil, err
			}
			balances[code] = item
		}

		if item.Quantity.LessThan(line.Quantity) {
			failures = append(failures, fmt.Sprintf("%s (%s): Yetersiz stok! Mevcut: %s, İstenen: %s",
				item.Name, code, item.Quantity, line.Quantity))
			metrics.StockDecrementsTotal.WithLabelValues("insufficient").Inc()
			continue
		}

		item.Quantity = item.Quantity.Sub(line.Quantity)
		valid = append(valid, applied{id: item.ID, code: code, name: item.Name, remaining: item.Quantity})
	}

	if len(valid) == 0 {
		return nil, failures, nil
	}

	writes := make(map[string]decimal.Decimal, len(valid))
	for _, v := range valid {
		writes[v.code] = balances[v.code].Quantity
	}
	if err := s.Repo.DecrementBatchTx(ctx, writes); err != nil {
		s.logger.Error("batch decrement failed", zap.Int("lines", len(valid)), zap.Error(err))
		return nil, append(failures, fmt.Sprintf("Toplu stok azaltma hatası: %v", err)), err
	}

	for _, v := range valid {
		successes = append(successes, fmt.Sprintf("%s (%s): Stok güncellendi (Kalan: %s)", v.name, v.code, v.remaining))
		metrics.StockDecrementsTotal.WithLabelValues("ok").Inc()
	}

	cache.InvalidateStockCaches(ctx)
	notified := make(map[int]bool)
	for _, v := range valid {
		if !notified[v.id] {
			notify(s.Notifier, realtime.ResourceStock, "update", v.id)
			notified[v.id] = true
		}
	}
	return successes, failures, nil
}
