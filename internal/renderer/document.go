package renderer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/textutil"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/timeutil"
)

// Shop details printed on every work order.
const (
	ShopName    = "Ali Usta Ağır Vasıta Fren Servisi"
	ShopAddress = "Sevindik Mah. 2292/1 Sokak No:11 Merkezefendi - Denizli"
	ShopPhone   = "+90 507 794 38 19"
)

// Notes is the fixed terms block at the bottom of a work order.
var Notes = []string{
	"İş emrinde belirtilen fiyatlar KDV hariçtir.",
	"Sadece iş emrinde belirtilen işlemler yapılmış olup, diğer mekanik ve elektronik aksamlar bu kapsam dışında bırakılmıştır.",
	"Bu iş emrinde belirtilen işlemler müşteri onayı ile yapılmıştır.",
	"Kontrol edilmeyen aksamlar, gizli arızalar, kullanım hataları ve çevresel şartlardan kaynaklanan sorunlardan servisimiz sorumlu değildir.",
	"Kullanılan parçaların garanti şartları üretici firma koşullarıyla sınırlıdır.",
	"Fren ve yürüyen aksamlar, aracın kullanım koşullarına doğrudan bağlı sistemlerdir. Aşırı yük, uygunsuz kullanım ve ihmal edilen bakım durumlarında servis sorumluluğu kabul edilmez.",
}

// WorkOrderFileName is Is_Emri_No_{no}_{plate}_{title}_{YYYYMMDD}.pdf with
// Turkish letters folded and spaces replaced.
func WorkOrderFileName(order *models.WorkOrderInput, now time.Time) string {
	plate := textutil.FileSafe(order.Plate)
	if plate == "" {
		plate = "plaka_yok"
	}
	return fmt.Sprintf("Is_Emri_No_%d_%s_%s_%s.pdf",
		order.OrderNo, plate, textutil.FileSafe(order.CustomerTitle), timeutil.FormatLocal(now, timeutil.CompactDate))
}

// MonthlyReportFileName is Aylik_Rapor_{YYYY}_{MM}.pdf.
func MonthlyReportFileName(month, year int) string {
	return fmt.Sprintf("Aylik_Rapor_%d_%02d.pdf", year, month)
}

// ReportTitle is used for the report heading and the mail subject.
func ReportTitle(month, year int) string {
	return fmt.Sprintf("Aylık İş Evrakı Raporu - %s %d", timeutil.MonthName(time.Month(month)), year)
}

// Money formats an amount with two decimals and the lira sign.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2) + " ₺"
}

func dash(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "-"
	}
	return s
}

type lineView struct {
	Code      string
	Name      string
	Quantity  string
	UnitPrice string
	Total     string
}

// orderView is the display form of a work order shared by both renderers.
type orderView struct {
	ShopName      string
	ShopAddress   string
	ShopPhone     string
	CreatedDate   string
	CreatedTime   string
	OrderNo       int
	Date          string
	CustomerTitle string
	Phone         string
	Plate         string
	TrailerInfo   string
	MakeModel     string
	RequestedWork string
	Complaint     string
	WorkDone      string
	StartTime     string
	EndTime       string
	Email         string
	Address       string
	TaxOffice     string
	Lines         []lineView
	Total         string
	Notes         []string
}

func newOrderView(doc *models.WorkOrderDocument, now time.Time) *orderView {
	o := doc.Order
	v := &orderView{
		ShopName:      ShopName,
		ShopAddress:   ShopAddress,
		ShopPhone:     ShopPhone,
		CreatedDate:   timeutil.FormatLocal(now, timeutil.DisplayDate),
		CreatedTime:   timeutil.FormatLocal(now, "15:04"),
		OrderNo:       o.OrderNo,
		Date:          o.Date,
		CustomerTitle: strings.TrimSpace(o.CustomerTitle),
		Phone:         dash(strings.ReplaceAll(o.Phone, " ", "")),
		Plate:         dash(o.Plate),
		TrailerInfo:   dash(o.TrailerInfo),
		MakeModel:     dash(o.MakeModel),
		RequestedWork: strings.TrimSpace(o.RequestedWork),
		Complaint:     strings.TrimSpace(o.Complaint),
		WorkDone:      strings.TrimSpace(o.WorkDone),
		StartTime:     dash(o.StartTime),
		EndTime:       dash(o.EndTime),
		Email:         strings.TrimSpace(doc.CustomerEmail),
		Address:       strings.TrimSpace(doc.CustomerAddress),
		TaxOffice:     strings.TrimSpace(doc.TaxOffice),
		Notes:         Notes,
	}
	for _, p := range o.UsedProducts {
		v.Lines = append(v.Lines, lineView{
			Code:      dash(p.Code),
			Name:      p.Name,
			Quantity:  p.Quantity.String(),
			UnitPrice: Money(p.UnitPrice),
			Total:     Money(p.LineTotal),
		})
	}
	v.Total = Money(o.UsedProducts.Total())
	return v
}

type productView struct {
	Code     string
	Name     string
	Quantity string
	Total    string
}

type reportView struct {
	Title         string
	CreatedDate   string
	CustomerCount int
	Revenue       string
	OrderCount    int
	Products      []productView
}

func newReportView(r *models.MonthlyReport, now time.Time) *reportView {
	v := &reportView{
		Title:         ReportTitle(r.Month, r.Year),
		CreatedDate:   timeutil.FormatLocal(now, timeutil.DisplayDate),
		CustomerCount: r.CustomerCount,
		Revenue:       Money(r.Revenue),
		OrderCount:    r.OrderCount,
	}
	for _, p := range r.Products {
		v.Products = append(v.Products, productView{
			Code:     p.Code,
			Name:     p.Name,
			Quantity: p.TotalQuantity.String(),
			Total:    Money(p.TotalAmount),
		})
	}
	return v
}

// writeFile stores data under dir/name and returns the path.
func writeFile(dir, name string, data []byte) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}
