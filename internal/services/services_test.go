package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/database"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/db"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/repositories"
)

type testServices struct {
	db        *db.Provider
	inventory *InventoryService
	accounts  *AccountService
	orders    *WorkOrderService
	processes *WorkProcessService
	sheets    *SpreadsheetService
	notifier  *recordingNotifier
}

func setupServices(t *testing.T) *testServices {
	t.Helper()
	ctx := context.Background()
	p, err := db.Open(ctx, "sqlite://:memory:")
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(p.Close)
	if err := database.NewSchemaManager(p, nil).InitSchema(ctx); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	n := &recordingNotifier{}
	stock := repositories.NewStockRepository(p)
	return &testServices{
		db:        p,
		inventory: NewInventoryService(stock, n, nil),
		accounts:  NewAccountService(repositories.NewAccountRepository(p), n, nil),
		orders:    NewWorkOrderService(repositories.NewWorkOrderRepository(p), n, nil),
		processes: NewWorkProcessService(repositories.NewWorkProcessRepository(p), n, nil),
		sheets:    NewSpreadsheetService(stock, n, nil),
		notifier:  n,
	}
}

func (s *testServices) addStock(t *testing.T, code, name string, qty int64) int {
	t.Helper()
	id, err := s.inventory.Create(context.Background(), &models.StockInput{
		Code:      code,
		Name:      name,
		Quantity:  decimal.NewFromInt(qty),
		UnitPrice: decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("Failed to create stock item %s: %v", code, err)
	}
	return id
}

func (s *testServices) quantity(t *testing.T, code string) decimal.Decimal {
	t.Helper()
	item, err := s.inventory.GetByCode(context.Background(), code)
	if err != nil {
		t.Fatalf("Failed to load %s: %v", code, err)
	}
	return item.Quantity
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) BroadcastChange(resource, action string, id any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, resource+"_"+action)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

// fakeRenderer writes an empty file per document into dir.
type fakeRenderer struct {
	dir     string
	err     error
	orders  []*models.WorkOrderDocument
	reports []*models.MonthlyReport
}

func (r *fakeRenderer) write(name string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	path := filepath.Join(r.dir, name)
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (r *fakeRenderer) RenderWorkOrder(ctx context.Context, doc *models.WorkOrderDocument) (string, error) {
	r.orders = append(r.orders, doc)
	return r.write("order.pdf")
}

func (r *fakeRenderer) RenderMonthlyReport(ctx context.Context, report *models.MonthlyReport) (string, error) {
	r.reports = append(r.reports, report)
	return r.write("report.pdf")
}

type fakeMailer struct {
	err     error
	orders  []*models.WorkOrderDocument
	reports []*models.MonthlyReport
	paths   []string
}

func (m *fakeMailer) SendWorkOrder(ctx context.Context, doc *models.WorkOrderDocument, pdfPath string) error {
	if m.err != nil {
		return m.err
	}
	m.orders = append(m.orders, doc)
	m.paths = append(m.paths, pdfPath)
	return nil
}

func (m *fakeMailer) SendMonthlyReport(ctx context.Context, report *models.MonthlyReport, pdfPath string) error {
	if m.err != nil {
		return m.err
	}
	m.reports = append(m.reports, report)
	m.paths = append(m.paths, pdfPath)
	return nil
}

type fakeArchiver struct {
	keys []string
}

func (a *fakeArchiver) Archive(ctx context.Context, key, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	a.keys = append(a.keys, key)
	return nil
}

var errBackend = errors.New("backend unavailable")
