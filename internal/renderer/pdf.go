package renderer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"
	"go.uber.org/zap"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
)

// The core fonts are cp1252, which has ü, ö and ç but not the other
// Turkish letters.
var cp1252Gaps = strings.NewReplacer(
	"ğ", "g", "Ğ", "G",
	"ı", "i", "İ", "I",
	"ş", "s", "Ş", "S",
	"₺", "TL",
)

var brandBlue = [3]int{31, 83, 141}

// PDFRenderer draws documents locally with gofpdf.
type PDFRenderer struct {
	TempDir string
	now     func() time.Time
	logger  *zap.Logger
}

func NewPDFRenderer(tempDir string, logger *zap.Logger) *PDFRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFRenderer{TempDir: tempDir, now: time.Now, logger: logger}
}

type pdfDoc struct {
	*gofpdf.Fpdf
	tr func(string) string
}

func newPDFDoc() *pdfDoc {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	return &pdfDoc{
		Fpdf: pdf,
		tr:   func(s string) string { return tr(cp1252Gaps.Replace(s)) },
	}
}

func (d *pdfDoc) cell(w, h float64, text, border string, ln int, align string, fill bool) {
	d.CellFormat(w, h, d.tr(text), border, ln, align, fill, 0, "")
}

func (d *pdfDoc) heading(text string) {
	d.SetFont("Arial", "B", 12)
	d.SetTextColor(brandBlue[0], brandBlue[1], brandBlue[2])
	d.cell(180, 8, text, "", 1, "L", false)
	d.SetTextColor(51, 51, 51)
}

// field prints a numbered label and value on one row; long values wrap.
func (d *pdfDoc) field(label, value string) {
	d.SetFont("Arial", "B", 9)
	d.cell(50, 6, label, "1", 0, "L", true)
	d.SetFont("Arial", "", 9)
	d.MultiCell(130, 6, d.tr(value), "1", "L", false)
}

func (d *pdfDoc) pair(label1, value1, label2, value2 string) {
	d.SetFont("Arial", "B", 9)
	d.cell(40, 6, label1, "1", 0, "L", true)
	d.SetFont("Arial", "", 9)
	d.cell(50, 6, value1, "1", 0, "L", false)
	d.SetFont("Arial", "B", 9)
	d.cell(40, 6, label2, "1", 0, "L", true)
	d.SetFont("Arial", "", 9)
	d.cell(50, 6, value2, "1", 1, "L", false)
}

func (d *pdfDoc) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderWorkOrder writes the work order PDF to the temp dir.
func (r *PDFRenderer) RenderWorkOrder(ctx context.Context, doc *models.WorkOrderDocument) (string, error) {
	now := r.now()
	v := newOrderView(doc, now)
	d := newPDFDoc()

	// Header
	d.SetFont("Arial", "B", 18)
	d.SetTextColor(brandBlue[0], brandBlue[1], brandBlue[2])
	d.cell(180, 10, "İŞ EVRAKI", "", 1, "C", false)
	d.SetFont("Arial", "B", 12)
	d.cell(180, 6, v.ShopName, "", 1, "C", false)
	d.SetFont("Arial", "", 9)
	d.SetTextColor(85, 85, 85)
	d.cell(180, 5, "Adres: "+v.ShopAddress, "", 1, "C", false)
	d.cell(180, 5, "Telefon: "+v.ShopPhone, "", 1, "C", false)
	d.SetFont("Arial", "", 8)
	d.cell(180, 6, fmt.Sprintf("Belge Oluşturma: %s %s", v.CreatedDate, v.CreatedTime), "B", 1, "R", false)
	d.Ln(4)
	d.SetTextColor(51, 51, 51)

	d.SetFillColor(240, 240, 240)
	d.pair("1. İş Emri No:", fmt.Sprintf("%d", v.OrderNo), "2. Tarih:", v.Date)
	d.field("3. Müşteri Ünvanı:", v.CustomerTitle)
	d.pair("4. Telefon:", v.Phone, "5. Araç Plakası:", v.Plate)
	d.pair("6. Çekici / Dorse:", v.TrailerInfo, "7. Marka / Model:", v.MakeModel)
	d.field("8. Talep Edilen İşler:", v.RequestedWork)
	if v.Complaint != "" {
		d.field("9. Müşteri Şikayeti:", v.Complaint)
	}
	if v.WorkDone != "" {
		d.field("10. Yapılan İş Açıklaması:", v.WorkDone)
	}
	d.pair("11. İşe Başlama Saati:", v.StartTime, "12. İş Bitiş Saati:", v.EndTime)
	if v.Address != "" || v.TaxOffice != "" {
		d.pair("Adres:", dash(v.Address), "Vergi Dairesi:", dash(v.TaxOffice))
	}
	d.Ln(4)

	if len(v.Lines) > 0 {
		d.heading("Kullanılan Ürünler")
		d.SetFont("Arial", "B", 8)
		d.SetFillColor(brandBlue[0], brandBlue[1], brandBlue[2])
		d.SetTextColor(255, 255, 255)
		d.cell(30, 6, "Ürün Kodu", "1", 0, "L", true)
		d.cell(70, 6, "Ürün Adı", "1", 0, "L", true)
		d.cell(20, 6, "Adet", "1", 0, "C", true)
		d.cell(30, 6, "Birim Fiyat", "1", 0, "R", true)
		d.cell(30, 6, "Toplam", "1", 1, "R", true)

		d.SetTextColor(51, 51, 51)
		d.SetFont("Arial", "", 8)
		for _, l := range v.Lines {
			d.cell(30, 5, l.Code, "1", 0, "L", false)
			d.cell(70, 5, l.Name, "1", 0, "L", false)
			d.cell(20, 5, l.Quantity, "1", 0, "C", false)
			d.cell(30, 5, l.UnitPrice, "1", 0, "R", false)
			d.cell(30, 5, l.Total, "1", 1, "R", false)
		}
		d.SetFont("Arial", "B", 8)
		d.SetFillColor(232, 240, 248)
		d.cell(150, 6, "TOPLAM:", "1", 0, "R", true)
		d.cell(30, 6, v.Total, "1", 1, "R", true)
		d.Ln(4)
	}

	d.heading("NOTLAR / UYARILAR")
	d.SetFont("Arial", "", 8)
	for _, n := range v.Notes {
		d.MultiCell(180, 4, d.tr("- "+n), "", "L", false)
	}
	d.Ln(10)
	d.SetFont("Arial", "", 9)
	d.cell(90, 6, "Müşterinin Adı Soyadı:", "", 0, "L", false)
	d.cell(90, 6, "İmza:", "", 1, "L", false)
	d.Ln(8)
	d.cell(80, 0, "", "T", 0, "L", false)
	d.cell(10, 0, "", "", 0, "L", false)
	d.cell(80, 0, "", "T", 1, "L", false)

	data, err := d.bytes()
	if err != nil {
		return "", fmt.Errorf("PDF oluşturma hatası: %w", err)
	}
	path, err := writeFile(r.TempDir, WorkOrderFileName(&doc.Order, now), data)
	if err != nil {
		return "", fmt.Errorf("PDF oluşturma hatası: %w", err)
	}
	r.logger.Debug("work order rendered", zap.String("path", path))
	return path, nil
}

// RenderMonthlyReport writes the monthly summary PDF to the temp dir.
func (r *PDFRenderer) RenderMonthlyReport(ctx context.Context, report *models.MonthlyReport) (string, error) {
	now := r.now()
	v := newReportView(report, now)
	d := newPDFDoc()

	d.SetFont("Arial", "B", 16)
	d.SetTextColor(brandBlue[0], brandBlue[1], brandBlue[2])
	d.cell(180, 10, v.Title, "", 1, "C", false)
	d.SetFont("Arial", "", 9)
	d.SetTextColor(85, 85, 85)
	d.cell(180, 6, ShopName+" - Oluşturma: "+v.CreatedDate, "B", 1, "C", false)
	d.Ln(5)

	d.SetTextColor(51, 51, 51)
	d.SetFillColor(240, 240, 240)
	d.SetFont("Arial", "B", 11)
	d.cell(60, 8, fmt.Sprintf("Müşteri Sayısı: %d", v.CustomerCount), "1", 0, "C", true)
	d.cell(60, 8, "Ciro: "+v.Revenue, "1", 0, "C", true)
	d.cell(60, 8, fmt.Sprintf("İş Evrakı Sayısı: %d", v.OrderCount), "1", 1, "C", true)
	d.Ln(5)

	d.heading("Ürün Bazlı Kullanım")
	if len(v.Products) == 0 {
		d.SetFont("Arial", "I", 9)
		d.cell(180, 6, "Bu ay kullanılan ürün kaydı yok.", "", 1, "L", false)
	} else {
		d.SetFont("Arial", "B", 9)
		d.SetFillColor(brandBlue[0], brandBlue[1], brandBlue[2])
		d.SetTextColor(255, 255, 255)
		d.cell(35, 7, "Ürün Kodu", "1", 0, "L", true)
		d.cell(85, 7, "Ürün Adı", "1", 0, "L", true)
		d.cell(25, 7, "Toplam Adet", "1", 0, "C", true)
		d.cell(35, 7, "Toplam Tutar", "1", 1, "R", true)

		d.SetTextColor(51, 51, 51)
		d.SetFont("Arial", "", 9)
		for _, p := range v.Products {
			d.cell(35, 6, p.Code, "1", 0, "L", false)
			d.cell(85, 6, p.Name, "1", 0, "L", false)
			d.cell(25, 6, p.Quantity, "1", 0, "C", false)
			d.cell(35, 6, p.Total, "1", 1, "R", false)
		}
	}

	data, err := d.bytes()
	if err != nil {
		return "", fmt.Errorf("PDF oluşturulamadı: %w", err)
	}
	return writeFile(r.TempDir, MonthlyReportFileName(report.Month, report.Year), data)
}
