package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
)

// DefaultAPIURL is the html2pdf conversion endpoint.
const DefaultAPIURL = "https://api.html2pdf.app/v1/generate"

var ErrMissingAPIKey = errors.New("PDF_API_KEY environment variable tanımlı değil")

// HTMLRenderer renders documents to HTML and converts them through the
// html2pdf API.
type HTMLRenderer struct {
	APIKey  string
	APIURL  string
	TempDir string

	client *resty.Client
	now    func() time.Time
	logger *zap.Logger
}

func NewHTMLRenderer(apiKey, apiURL, tempDir string, logger *zap.Logger) *HTMLRenderer {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New()
	client.
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &HTMLRenderer{
		APIKey:  apiKey,
		APIURL:  apiURL,
		TempDir: tempDir,
		client:  client,
		now:     time.Now,
		logger:  logger,
	}
}

type convertRequest struct {
	HTML      string `json:"html"`
	APIKey    string `json:"apiKey"`
	Format    string `json:"format"`
	Landscape bool   `json:"landscape"`
}

// convert posts the HTML and returns the PDF bytes. Any non-2xx answer is
// an error.
func (r *HTMLRenderer) convert(ctx context.Context, html string) ([]byte, error) {
	if r.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(convertRequest{HTML: html, APIKey: r.APIKey, Format: "A4"}).
		Post(r.APIURL)
	if err != nil {
		return nil, fmt.Errorf("html2pdf request: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("html2pdf api error: status=%d, body=%s", resp.StatusCode(), truncate(resp.String(), 200))
	}
	return resp.Body(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func (r *HTMLRenderer) RenderWorkOrder(ctx context.Context, doc *models.WorkOrderDocument) (string, error) {
	now := r.now()
	var html bytes.Buffer
	if err := workOrderTemplate.Execute(&html, newOrderView(doc, now)); err != nil {
		return "", fmt.Errorf("PDF oluşturma hatası: %w", err)
	}

	data, err := r.convert(ctx, html.String())
	if err != nil {
		return "", fmt.Errorf("PDF oluşturma hatası: %w", err)
	}
	path, err := writeFile(r.TempDir, WorkOrderFileName(&doc.Order, now), data)
	if err != nil {
		return "", fmt.Errorf("PDF oluşturma hatası: %w", err)
	}
	r.logger.Debug("work order rendered", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}

func (r *HTMLRenderer) RenderMonthlyReport(ctx context.Context, report *models.MonthlyReport) (string, error) {
	var html bytes.Buffer
	if err := monthlyReportTemplate.Execute(&html, newReportView(report, r.now())); err != nil {
		return "", fmt.Errorf("PDF oluşturulamadı: %w", err)
	}

	data, err := r.convert(ctx, html.String())
	if err != nil {
		return "", fmt.Errorf("PDF oluşturulamadı: %w", err)
	}
	return writeFile(r.TempDir, MonthlyReportFileName(report.Month, report.Year), data)
}

var workOrderTemplate = template.Must(template.New("work_order").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
@page { margin: 15mm; size: A4; }
body { font-family: Arial, sans-serif; margin: 0; color: #333; font-size: 10px; line-height: 1.3; }
h1 { color: #1f538d; text-align: center; font-size: 18px; margin: 0 0 8px; }
h2 { color: #1f538d; font-size: 13px; margin: 12px 0 8px; }
.company-info { text-align: center; margin-bottom: 12px; padding-bottom: 8px; border-bottom: 2px solid #1f538d; }
.company-name { font-size: 12px; font-weight: bold; color: #1f538d; margin-bottom: 4px; }
.company-details { font-size: 9px; color: #555; }
.document-info { text-align: right; font-size: 8px; color: #666; margin-bottom: 10px; border-bottom: 1px solid #ddd; }
table { width: 100%; border-collapse: collapse; margin-bottom: 12px; }
td, th { padding: 4px; border: 1px solid #ddd; }
td.label { background: #f0f0f0; font-weight: bold; width: 22%; }
.products th { background: #1f538d; color: white; font-size: 8px; }
.products td { font-size: 8px; }
.num { text-align: right; }
.total td { background: #e8f0f8; font-weight: bold; }
.notes li { font-size: 8px; margin-bottom: 2px; }
.signatures { display: flex; justify-content: space-between; margin-top: 30px; }
.signatures div { width: 45%; border-bottom: 1px solid #333; padding-bottom: 30px; }
</style>
</head>
<body>
<h1>İŞ EVRAKI</h1>
<div class="company-info">
  <div class="company-name">{{.ShopName}}</div>
  <div class="company-details">Adres: {{.ShopAddress}}<br>Telefon: {{.ShopPhone}}</div>
</div>
<div class="document-info">Belge Oluşturma: {{.CreatedDate}} {{.CreatedTime}}</div>
<table>
  <tr><td class="label">1. İş Emri No:</td><td>{{.OrderNo}}</td><td class="label">2. Tarih:</td><td>{{.Date}}</td></tr>
  <tr><td class="label">3. Müşteri Ünvanı:</td><td colspan="3">{{.CustomerTitle}}</td></tr>
  <tr><td class="label">4. Telefon:</td><td>{{.Phone}}</td><td class="label">5. Araç Plakası:</td><td>{{.Plate}}</td></tr>
  <tr><td class="label">6. Çekici / Dorse:</td><td>{{.TrailerInfo}}</td><td class="label">7. Marka / Model:</td><td>{{.MakeModel}}</td></tr>
  <tr><td class="label">8. Talep Edilen İşler:</td><td colspan="3">{{.RequestedWork}}</td></tr>
  {{- if .Complaint}}
  <tr><td class="label">9. Müşteri Şikayeti:</td><td colspan="3">{{.Complaint}}</td></tr>
  {{- end}}
  {{- if .WorkDone}}
  <tr><td class="label">10. Yapılan İş Açıklaması:</td><td colspan="3">{{.WorkDone}}</td></tr>
  {{- end}}
  <tr><td class="label">11. İşe Başlama Saati:</td><td>{{.StartTime}}</td><td class="label">12. İş Bitiş Saati:</td><td>{{.EndTime}}</td></tr>
  {{- if or .Address .TaxOffice}}
  <tr><td class="label">Adres:</td><td>{{.Address}}</td><td class="label">Vergi Dairesi:</td><td>{{.TaxOffice}}</td></tr>
  {{- end}}
</table>
{{- if .Lines}}
<h2>Kullanılan Ürünler</h2>
<table class="products">
  <thead><tr><th>Ürün Kodu</th><th>Ürün Adı</th><th>Adet</th><th class="num">Birim Fiyat</th><th class="num">Toplam</th></tr></thead>
  <tbody>
  {{- range .Lines}}
  <tr><td>{{.Code}}</td><td>{{.Name}}</td><td style="text-align:center">{{.Quantity}}</td><td class="num">{{.UnitPrice}}</td><td class="num">{{.Total}}</td></tr>
  {{- end}}
  <tr class="total"><td colspan="4" class="num">TOPLAM:</td><td class="num">{{.Total}}</td></tr>
  </tbody>
</table>
{{- end}}
<div class="notes">
  <h2>NOTLAR / UYARILAR</h2>
  <ul>
  {{- range .Notes}}
    <li>{{.}}</li>
  {{- end}}
  </ul>
</div>
<div class="signatures"><div>Müşterinin Adı Soyadı:</div><div>İmza:</div></div>
</body>
</html>`))

var monthlyReportTemplate = template.Must(template.New("monthly_report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
@page { margin: 15mm; size: A4; }
body { font-family: Arial, sans-serif; color: #333; font-size: 11px; }
h1 { color: #1f538d; text-align: center; font-size: 18px; }
.summary { display: flex; justify-content: space-between; margin: 16px 0; }
.summary div { width: 31%; background: #f0f0f0; padding: 10px; text-align: center; font-weight: bold; }
table { width: 100%; border-collapse: collapse; }
th { background: #1f538d; color: white; padding: 5px; }
td { border: 1px solid #ddd; padding: 4px; }
.num { text-align: right; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p style="text-align:center">Oluşturma: {{.CreatedDate}}</p>
<div class="summary">
  <div>Müşteri Sayısı: {{.CustomerCount}}</div>
  <div>Ciro: {{.Revenue}}</div>
  <div>İş Evrakı Sayısı: {{.OrderCount}}</div>
</div>
<h2>Ürün Bazlı Kullanım</h2>
{{- if .Products}}
<table>
  <thead><tr><th>Ürün Kodu</th><th>Ürün Adı</th><th>Toplam Adet</th><th class="num">Toplam Tutar</th></tr></thead>
  <tbody>
  {{- range .Products}}
  <tr><td>{{.Code}}</td><td>{{.Name}}</td><td style="text-align:center">{{.Quantity}}</td><td class="num">{{.Total}}</td></tr>
  {{- end}}
  </tbody>
</table>
{{- else}}
<p>Bu ay kullanılan ürün kaydı yok.</p>
{{- end}}
</body>
</html>`))
