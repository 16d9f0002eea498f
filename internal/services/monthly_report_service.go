package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/metrics"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/repositories"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/timeutil"
)

// MonthlyReportService compiles the monthly work-order summary. It is shared
// by the scheduler and the HTTP trigger.
type MonthlyReportService struct {
	Orders     *repositories.WorkOrderRepository
	Renderer   DocumentRenderer
	Mailer     Mailer
	Archiver   Archiver
	Recipients []string
	logger     *zap.Logger
}

func NewMonthlyReportService(orders *repositories.WorkOrderRepository, renderer DocumentRenderer, mailer Mailer,
	archiver Archiver, recipients []string, logger *zap.Logger) *MonthlyReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonthlyReportService{
		Orders:     orders,
		Renderer:   renderer,
		Mailer:     mailer,
		Archiver:   archiver,
		Recipients: recipients,
		logger:     logger,
	}
}

// PreviousMonth returns the month before now in Istanbul time.
func (s *MonthlyReportService) PreviousMonth(now time.Time) (month, year int) {
	m, y := timeutil.PreviousMonth(now)
	return int(m), y
}

// Validate accepts months 1..12 of the years 2000..2100.
func (s *MonthlyReportService) Validate(month, year int) error {
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return invalid("Geçersiz ay veya yıl.")
	}
	return nil
}

// Build aggregates the orders created during the month.
func (s *MonthlyReportService) Build(ctx context.Context, month, year int) (*models.MonthlyReport, error) {
	if err := s.Validate(month, year); err != nil {
		return nil, err
	}

	from, to := timeutil.MonthBounds(year, time.Month(month))
	orders, err := s.Orders.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return summarize(month, year, orders), nil
}

type productKey struct {
	code string
	name string
}

func summarize(month, year int, orders []*models.WorkOrder) *models.MonthlyReport {
	report := &models.MonthlyReport{
		Month:      month,
		Year:       year,
		Revenue:    decimal.Zero,
		OrderCount: len(orders),
		Products:   []models.ProductUsage{},
	}

	customers := make(map[string]struct{})
	usage := make(map[productKey]*models.ProductUsage)
	for _, o := range orders {
		if title := strings.TrimSpace(o.CustomerTitle); title != "" {
			customers[title] = struct{}{}
		}
		report.Revenue = report.Revenue.Add(o.TotalAmount)

		for _, p := range o.UsedProducts {
			key := productKey{code: orDash(p.Code), name: orDash(p.Name)}
			u, ok := usage[key]
			if !ok {
				u = &models.ProductUsage{Code: key.code, Name: key.name}
				usage[key] = u
			}
			u.TotalQuantity = u.TotalQuantity.Add(p.Quantity)
			u.TotalAmount = u.TotalAmount.Add(p.LineTotal)
		}
	}
	report.CustomerCount = len(customers)

	for _, u := range usage {
		report.Products = append(report.Products, *u)
	}
	sort.Slice(report.Products, func(i, j int) bool {
		a, b := report.Products[i], report.Products[j]
		if !a.TotalAmount.Equal(b.TotalAmount) {
			return a.TotalAmount.GreaterThan(b.TotalAmount)
		}
		return a.Name < b.Name
	})
	return report
}

func orDash(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "-"
	}
	return s
}

// Run builds the report for the month, renders it, mails it to the
// configured recipients and archives the PDF when an archiver is set.
func (s *MonthlyReportService) Run(ctx context.Context, month, year int) (*models.MonthlyReportResult, error) {
	report, err := s.Build(ctx, month, year)
	if err != nil {
		metrics.MonthlyReportsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	path, err := s.Renderer.RenderMonthlyReport(ctx, report)
	if err != nil {
		metrics.MonthlyReportsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("PDF oluşturulamadı: %w", err)
	}
	defer os.Remove(path)

	if err := s.Mailer.SendMonthlyReport(ctx, report, path); err != nil {
		metrics.EmailsSentTotal.WithLabelValues("monthly_report", "error").Inc()
		metrics.MonthlyReportsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.EmailsSentTotal.WithLabelValues("monthly_report", "ok").Inc()

	if s.Archiver != nil {
		if err := s.Archiver.Archive(ctx, "raporlar/"+filepath.Base(path), path); err != nil {
			s.logger.Warn("report archive failed", zap.Error(err))
		}
	}

	metrics.MonthlyReportsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("monthly report sent",
		zap.Int("month", month), zap.Int("year", year), zap.Int("orders", report.OrderCount))

	return &models.MonthlyReportResult{
		Success: true,
		Message: fmt.Sprintf("%s %d aylık rapor PDF olarak %s adresine gönderildi.",
			timeutil.MonthName(time.Month(month)), year, strings.Join(s.Recipients, ",")),
		Month:         month,
		Year:          year,
		CustomerCount: report.CustomerCount,
		Revenue:       report.Revenue.Round(2),
		OrderCount:    report.OrderCount,
		EmailSent:     true,
	}, nil
}

// RunPreviousMonth is the scheduled entry point.
func (s *MonthlyReportService) RunPreviousMonth(ctx context.Context) (*models.MonthlyReportResult, error) {
	month, year := s.PreviousMonth(time.Now())
	return s.Run(ctx, month, year)
}
