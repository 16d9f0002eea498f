package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/repositories"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/timeutil"
)

func line(code, name string, qty, total int64) models.UsedProduct {
	return models.UsedProduct{Code: code, Name: name, Quantity: decimal.NewFromInt(qty), LineTotal: decimal.NewFromInt(total)}
}

func TestSummarize(t *testing.T) {
	orders := []*models.WorkOrder{
		{CustomerTitle: "Usta Oto", TotalAmount: decimal.NewFromInt(500), UsedProducts: models.UsedProducts{
			line("P1", "Balata", 2, 200),
			line("", "İşçilik", 1, 300),
		}},
		{CustomerTitle: " Usta Oto ", TotalAmount: decimal.RequireFromString("150.5"), UsedProducts: models.UsedProducts{
			line("P1", "Balata", 1, 100),
		}},
		{CustomerTitle: "Kaya Nakliyat", TotalAmount: decimal.NewFromInt(50), UsedProducts: models.UsedProducts{
			line("P2", "Filtre", 1, 50),
		}},
		{CustomerTitle: "", TotalAmount: decimal.Zero},
	}

	r := summarize(3, 2025, orders)
	if r.OrderCount != 4 {
		t.Errorf("Expected 4 orders, got %d", r.OrderCount)
	}
	if r.CustomerCount != 2 {
		t.Errorf("Expected 2 distinct customers, got %d", r.CustomerCount)
	}
	if !r.Revenue.Equal(decimal.RequireFromString("700.5")) {
		t.Errorf("Expected revenue 700.5, got %s", r.Revenue)
	}

	want := []struct {
		code, name string
		qty, total int64
	}{
		{"P1", "Balata", 3, 300},
		{"-", "İşçilik", 1, 300},
		{"P2", "Filtre", 1, 50},
	}
	if len(r.Products) != len(want) {
		t.Fatalf("Expected %d products, got %+v", len(want), r.Products)
	}
	for i, w := range want {
		p := r.Products[i]
		if p.Code != w.code || p.Name != w.name || !p.TotalQuantity.Equal(decimal.NewFromInt(w.qty)) || !p.TotalAmount.Equal(decimal.NewFromInt(w.total)) {
			t.Errorf("Product %d: expected %+v, got %+v", i, w, p)
		}
	}
}

func TestSummarizeEmptyMonth(t *testing.T) {
	r := summarize(1, 2024, nil)
	if r.OrderCount != 0 || r.CustomerCount != 0 || !r.Revenue.IsZero() || len(r.Products) != 0 {
		t.Errorf("Expected empty report, got %+v", r)
	}
}

func TestMonthlyReportValidate(t *testing.T) {
	s := &MonthlyReportService{}
	for _, tt := range []struct{ month, year int }{{0, 2025}, {13, 2025}, {5, 1999}, {5, 2101}} {
		if err := s.Validate(tt.month, tt.year); !IsValidation(err) {
			t.Errorf("Validate(%d, %d) expected validation error, got %v", tt.month, tt.year, err)
		}
	}
	if err := s.Validate(12, 2025); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestMonthlyReportPreviousMonth(t *testing.T) {
	s := &MonthlyReportService{}
	month, year := s.PreviousMonth(time.Date(2025, time.January, 1, 9, 0, 0, 0, timeutil.Istanbul))
	if month != 12 || year != 2024 {
		t.Errorf("Expected 12/2024, got %d/%d", month, year)
	}
}

func TestMonthlyReportRun(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	for _, title := range []string{"Usta Oto", "Kaya Nakliyat"} {
		if _, err := s.orders.Create(ctx, &models.WorkOrderInput{
			CustomerTitle: title,
			UsedProducts:  models.UsedProducts{line("P1", "Balata", 1, 100)},
		}); err != nil {
			t.Fatalf("Create order failed: %v", err)
		}
	}

	renderer := &fakeRenderer{dir: t.TempDir()}
	mailer := &fakeMailer{}
	archiver := &fakeArchiver{}
	svc := NewMonthlyReportService(repositories.NewWorkOrderRepository(s.db), renderer, mailer, archiver,
		[]string{"a@example.com", "b@example.com"}, nil)

	now := timeutil.Now()
	res, err := svc.Run(ctx, int(now.Month()), now.Year())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.OrderCount != 2 || res.CustomerCount != 2 {
		t.Errorf("Unexpected counts: %+v", res)
	}
	if !res.Revenue.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected revenue 200, got %s", res.Revenue)
	}
	if !strings.HasSuffix(res.Message, "aylık rapor PDF olarak a@example.com,b@example.com adresine gönderildi.") {
		t.Errorf("Unexpected message %q", res.Message)
	}
	if len(mailer.reports) != 1 || len(archiver.keys) != 1 || archiver.keys[0] != "raporlar/report.pdf" {
		t.Errorf("Expected one mail and one archive, got %d / %v", len(mailer.reports), archiver.keys)
	}

	mailer.err = errBackend
	if _, err := svc.Run(ctx, int(now.Month()), now.Year()); err == nil {
		t.Error("Expected mail failure to fail the run")
	}
	if _, err := svc.Run(ctx, 13, 2025); !IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}
