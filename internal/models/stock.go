package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultUnit is used when a stock item is saved without a unit.
const DefaultUnit = "Adet"

type StockItem struct {
	ID        int             `json:"id"`
	Code      *string         `json:"urun_kodu"`
	Name      string          `json:"urun_adi"`
	Brand     string          `json:"marka"`
	Unit      string          `json:"birim"`
	Quantity  decimal.Decimal `json:"stok_miktari"`
	UnitPrice decimal.Decimal `json:"birim_fiyat"`
	Notes     string          `json:"aciklama"`
	CreatedAt time.Time       `json:"olusturma_tarihi"`
	UpdatedAt time.Time       `json:"guncelleme_tarihi"`
}

// CodeString returns the product code or an empty string for uncoded items.
func (s *StockItem) CodeString() string {
	if s.Code == nil {
		return ""
	}
	return *s.Code
}

// StockInput is the request body for creating or updating a stock item
type StockInput struct {
	Code      string          `json:"urun_kodu"`
	Name      string          `json:"urun_adi"`
	Brand     string          `json:"marka"`
	Unit      string          `json:"birim"`
	Quantity  decimal.Decimal `json:"stok_miktari"`
	UnitPrice decimal.Decimal `json:"birim_fiyat"`
	Notes     string          `json:"aciklama"`
}

// DecrementRequest is the request body for a single stock decrement
type DecrementRequest struct {
	Code     string          `json:"urun_kodu"`
	Quantity decimal.Decimal `json:"miktar"`
}

// DecrementLine is one line of a batch decrement. Name is only used in messages.
type DecrementLine struct {
	Code     string          `json:"urun_kodu"`
	Quantity decimal.Decimal `json:"miktar"`
	Name     string          `json:"urun_adi"`
}

type DecrementBatchRequest struct {
	Lines []DecrementLine `json:"urunler"`
}

// StockMessages groups the per-line outcome of a batch decrement.
type StockMessages struct {
	Succeeded []string `json:"basarili"`
	Failed    []string `json:"hatali"`
}

// StockImportResult summarises a spreadsheet import.
type StockImportResult struct {
	Inserted   int      `json:"eklenen"`
	Updated    int      `json:"guncellenen"`
	Errors     []string `json:"hatalar"`
	ErrorCount int      `json:"toplam_hata"`
}
