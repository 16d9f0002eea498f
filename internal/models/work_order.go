package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UsedProduct is one consumed product line on a work order.
type UsedProduct struct {
	Code      string          `json:"urun_kodu"`
	Name      string          `json:"urun_adi"`
	Quantity  decimal.Decimal `json:"adet"`
	UnitPrice decimal.Decimal `json:"birim_fiyat"`
	LineTotal decimal.Decimal `json:"toplam"`
}

// UsedProducts is the ordered product snapshot of a work order. It is stored
// as JSON text and is not linked to the stok table.
type UsedProducts []UsedProduct

// ParseUsedProducts decodes a JSON array. Blank or malformed input yields no lines.
func ParseUsedProducts(raw string) UsedProducts {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var lines []UsedProduct
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil
	}
	return lines
}

// UnmarshalJSON accepts an array or a string holding an array.
func (p *UsedProducts) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*p = nil
		return nil
	}

	if trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			*p = nil
			return nil
		}
		*p = ParseUsedProducts(raw)
		return nil
	}

	var lines []UsedProduct
	if err := json.Unmarshal(trimmed, &lines); err != nil {
		*p = nil
		return nil
	}
	*p = lines
	return nil
}

func (p UsedProducts) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal([]UsedProduct(p))
}

// Value serialises the lines for the kullanilan_urunler column.
func (p UsedProducts) Value() (driver.Value, error) {
	if len(p) == 0 {
		return "", nil
	}
	b, err := json.Marshal([]UsedProduct(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads the kullanilan_urunler column. Malformed text yields no lines.
func (p *UsedProducts) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = nil
	case string:
		*p = ParseUsedProducts(v)
	case []byte:
		*p = ParseUsedProducts(string(v))
	default:
		return fmt.Errorf("unsupported kullanilan_urunler type %T", src)
	}
	return nil
}

// Total sums the line totals.
func (p UsedProducts) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range p {
		total = total.Add(line.LineTotal)
	}
	return total
}

type WorkOrder struct {
	ID            int             `json:"id"`
	OrderNo       int             `json:"is_emri_no"`
	Date          string          `json:"tarih"`
	CustomerTitle string          `json:"musteri_unvan"`
	Phone         string          `json:"telefon"`
	Plate         string          `json:"arac_plakasi"`
	TrailerInfo   string          `json:"cekici_dorse"`
	MakeModel     string          `json:"marka_model"`
	RequestedWork string          `json:"talep_edilen_isler"`
	Complaint     string          `json:"musteri_sikayeti"`
	WorkDone      string          `json:"yapilan_is"`
	StartTime     string          `json:"baslama_saati"`
	EndTime       string          `json:"bitis_saati"`
	UsedProducts  UsedProducts    `json:"kullanilan_urunler"`
	TotalAmount   decimal.Decimal `json:"toplam_tutar"`
	NationalID    string          `json:"tc_kimlik_no"`
	CreatedAt     time.Time       `json:"olusturma_tarihi"`
}

// WorkOrderInput is the request body for creating or updating a work order
type WorkOrderInput struct {
	OrderNo       int             `json:"is_emri_no"`
	Date          string          `json:"tarih"`
	CustomerTitle string          `json:"musteri_unvan"`
	Phone         string          `json:"telefon"`
	Plate         string          `json:"arac_plakasi"`
	TrailerInfo   string          `json:"cekici_dorse"`
	MakeModel     string          `json:"marka_model"`
	RequestedWork string          `json:"talep_edilen_isler"`
	Complaint     string          `json:"musteri_sikayeti"`
	WorkDone      string          `json:"yapilan_is"`
	StartTime     string          `json:"baslama_saati"`
	EndTime       string          `json:"bitis_saati"`
	UsedProducts  UsedProducts    `json:"kullanilan_urunler"`
	TotalAmount   decimal.Decimal `json:"toplam_tutar"`
	NationalID    string          `json:"tc_kimlik_no"`
}

// NotifyWorkOrderRequest carries a work order plus the customer fields used
// by the account upsert and the outgoing mail.
type NotifyWorkOrderRequest struct {
	WorkOrderInput
	CustomerEmail   string    `json:"musteri_email"`
	CustomerAddress string    `json:"musteri_adres"`
	TaxOffice       string    `json:"vergi_dairesi"`
	LegalForm       LegalForm `json:"firma_tipi"`
	SendEmail       *bool     `json:"send_email"`
}

// ShouldSendEmail defaults to true when the flag is omitted.
func (r *NotifyWorkOrderRequest) ShouldSendEmail() bool {
	return r.SendEmail == nil || *r.SendEmail
}

// WorkOrderDocument is what the renderer and mailer receive.
type WorkOrderDocument struct {
	Order           WorkOrderInput
	CustomerEmail   string
	CustomerAddress string
	TaxOffice       string
}
