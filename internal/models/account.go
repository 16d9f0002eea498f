package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind is the role of an account. Stored as text and checked by the schema.
type AccountKind string

const (
	AccountKindCustomer AccountKind = "Müşteri"
	AccountKindSupplier AccountKind = "Tedarikçi"
)

func (k AccountKind) Valid() bool {
	switch k {
	case AccountKindCustomer, AccountKindSupplier:
		return true
	}
	return false
}

// LegalForm distinguishes private persons from companies.
type LegalForm string

const (
	LegalFormIndividual LegalForm = "Şahıs"
	LegalFormCompany    LegalForm = "Şirket"
)

func (f LegalForm) Valid() bool {
	switch f {
	case LegalFormIndividual, LegalFormCompany:
		return true
	}
	return false
}

// OrDefault returns the individual form for an empty value.
func (f LegalForm) OrDefault() LegalForm {
	if f == "" {
		return LegalFormIndividual
	}
	return f
}

type Account struct {
	ID         int             `json:"id"`
	Code       *string         `json:"cari_kodu"`
	Title      string          `json:"unvan"`
	Kind       AccountKind     `json:"tip"`
	Phone      string          `json:"telefon"`
	Email      string          `json:"email"`
	Address    string          `json:"adres"`
	NationalID *string         `json:"tc_kimlik_no"`
	TaxNumber  string          `json:"vergi_no"`
	TaxOffice  string          `json:"vergi_dairesi"`
	Balance    decimal.Decimal `json:"bakiye"`
	Notes      string          `json:"aciklama"`
	LegalForm  LegalForm       `json:"firma_tipi"`
	CreatedAt  time.Time       `json:"olusturma_tarihi"`
	UpdatedAt  time.Time       `json:"guncelleme_tarihi"`
}

// HasNationalID reports whether a national ID is on file.
func (a *Account) HasNationalID() bool {
	return a.NationalID != nil && *a.NationalID != ""
}

// AccountInput is the request body for creating or updating an account
type AccountInput struct {
	Code       string          `json:"cari_kodu"`
	Title      string          `json:"unvan"`
	Kind       AccountKind     `json:"tip"`
	Phone      string          `json:"telefon"`
	Email      string          `json:"email"`
	Address    string          `json:"adres"`
	NationalID string          `json:"tc_kimlik_no"`
	TaxNumber  string          `json:"vergi_no"`
	TaxOffice  string          `json:"vergi_dairesi"`
	Balance    decimal.Decimal `json:"bakiye"`
	Notes      string          `json:"aciklama"`
	LegalForm  LegalForm       `json:"firma_tipi"`
}

// CustomerContact holds the account fields copied onto a resent work order.
type CustomerContact struct {
	Email     string
	Address   string
	TaxOffice string
}
