package models

import "github.com/shopspring/decimal"

// ProductUsage is the monthly total for one (code, name) pair.
type ProductUsage struct {
	Code          string          `json:"urun_kodu"`
	Name          string          `json:"urun_adi"`
	TotalQuantity decimal.Decimal `json:"toplam_adet"`
	TotalAmount   decimal.Decimal `json:"toplam_tutar"`
}

type MonthlyReport struct {
	Month         int             `json:"ay"`
	Year          int             `json:"yil"`
	CustomerCount int             `json:"musteri_sayisi"`
	Revenue       decimal.Decimal `json:"ciro"`
	OrderCount    int             `json:"evrak_sayisi"`
	Products      []ProductUsage  `json:"urunler"`
}

// MonthlyReportResult is returned by the report trigger.
type MonthlyReportResult struct {
	Success       bool            `json:"success"`
	Message       string          `json:"message"`
	Month         int             `json:"ay"`
	Year          int             `json:"yil"`
	CustomerCount int             `json:"musteri_sayisi"`
	Revenue       decimal.Decimal `json:"ciro"`
	OrderCount    int             `json:"evrak_sayisi"`
	EmailSent     bool            `json:"email_sent"`
}
