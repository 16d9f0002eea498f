package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/timeutil"
)

var fixedNow = time.Date(2025, time.March, 14, 10, 30, 0, 0, timeutil.Istanbul)

func sampleDocument() *models.WorkOrderDocument {
	return &models.WorkOrderDocument{
		Order: models.WorkOrderInput{
			OrderNo:       42,
			Date:          "2025-03-14",
			CustomerTitle: "Şükrü Çağlar",
			Phone:         "0555 111 22 33",
			Plate:         "20 ABC 123",
			RequestedWork: "Fren balatası değişimi",
			Complaint:     "Frenler ses yapıyor <sert>",
			UsedProducts: models.UsedProducts{
				{Code: "P1", Name: "Fren Balatası", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(150), LineTotal: decimal.NewFromInt(300)},
				{Name: "İşçilik", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("250.5"), LineTotal: decimal.RequireFromString("250.5")},
			},
		},
		CustomerEmail: "sukru@example.com",
	}
}

func sampleReport() *models.MonthlyReport {
	return &models.MonthlyReport{
		Month:         3,
		Year:          2025,
		CustomerCount: 2,
		Revenue:       decimal.RequireFromString("1250.5"),
		OrderCount:    3,
		Products: []models.ProductUsage{
			{Code: "P1", Name: "Fren Balatası", TotalQuantity: decimal.NewFromInt(4), TotalAmount: decimal.NewFromInt(600)},
		},
	}
}

func TestWorkOrderFileName(t *testing.T) {
	doc := sampleDocument()
	got := WorkOrderFileName(&doc.Order, fixedNow)
	want := "Is_Emri_No_42_20_ABC_123_Sukru_Caglar_20250314.pdf"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	doc.Order.Plate = "  "
	got = WorkOrderFileName(&doc.Order, fixedNow)
	if !strings.Contains(got, "_plaka_yok_") {
		t.Errorf("Expected plaka_yok placeholder, got %q", got)
	}
}

func TestMonthlyReportNames(t *testing.T) {
	if got := MonthlyReportFileName(3, 2025); got != "Aylik_Rapor_2025_03.pdf" {
		t.Errorf("Unexpected file name %q", got)
	}
	if got := ReportTitle(8, 2024); got != "Aylık İş Evrakı Raporu - Ağustos 2024" {
		t.Errorf("Unexpected title %q", got)
	}
}

func TestOrderView(t *testing.T) {
	v := newOrderView(sampleDocument(), fixedNow)
	if v.Phone != "05551112233" {
		t.Errorf("Expected phone without spaces, got %q", v.Phone)
	}
	if v.TrailerInfo != "-" || v.StartTime != "-" {
		t.Errorf("Expected dash placeholders, got %q / %q", v.TrailerInfo, v.StartTime)
	}
	if v.Total != "550.50 ₺" {
		t.Errorf("Unexpected total %q", v.Total)
	}
	if v.Lines[1].Code != "-" {
		t.Errorf("Expected dash for a line without code, got %q", v.Lines[1].Code)
	}
	if v.CreatedDate != "14.03.2025" {
		t.Errorf("Unexpected created date %q", v.CreatedDate)
	}
}

func TestPDFRenderer(t *testing.T) {
	dir := t.TempDir()
	r := NewPDFRenderer(dir, nil)
	r.now = func() time.Time { return fixedNow }

	path, err := r.RenderWorkOrder(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("RenderWorkOrder failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("Expected file in %s, got %s", dir, path)
	}
	assertPDF(t, path)

	path, err = r.RenderMonthlyReport(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("RenderMonthlyReport failed: %v", err)
	}
	if filepath.Base(path) != "Aylik_Rapor_2025_03.pdf" {
		t.Errorf("Unexpected report file %s", path)
	}
	assertPDF(t, path)
}

func assertPDF(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("Expected a PDF file, got %q", data[:min(len(data), 16)])
	}
}

func TestHTMLRenderer(t *testing.T) {
	var got convertRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Bad payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.7 fake"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	r := NewHTMLRenderer("key-123", srv.URL, dir, nil)
	r.now = func() time.Time { return fixedNow }

	path, err := r.RenderWorkOrder(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("RenderWorkOrder failed: %v", err)
	}
	assertPDF(t, path)

	if got.APIKey != "key-123" || got.Format != "A4" || got.Landscape {
		t.Errorf("Unexpected request options %+v", got)
	}
	if !strings.Contains(got.HTML, "Şükrü Çağlar") || !strings.Contains(got.HTML, "550.50 ₺") {
		t.Error("Expected customer title and total in the HTML")
	}
	if strings.Contains(got.HTML, "<sert>") {
		t.Error("Expected user text to be escaped")
	}

	if _, err := r.RenderMonthlyReport(context.Background(), sampleReport()); err != nil {
		t.Fatalf("RenderMonthlyReport failed: %v", err)
	}
	if !strings.Contains(got.HTML, "Aylık İş Evrakı Raporu - Mart 2025") {
		t.Error("Expected report title in the HTML")
	}
}

func TestHTMLRendererErrors(t *testing.T) {
	r := NewHTMLRenderer("", "http://127.0.0.1:1", t.TempDir(), nil)
	if _, err := r.RenderWorkOrder(context.Background(), sampleDocument()); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	r = NewHTMLRenderer("bad", srv.URL, t.TempDir(), nil)
	_, err := r.RenderWorkOrder(context.Background(), sampleDocument())
	if err == nil || !strings.Contains(err.Error(), "status=401") {
		t.Errorf("Expected upstream status in error, got %v", err)
	}
}
