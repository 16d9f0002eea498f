package repositories

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
)

func TestAccountRepositoryCreate(t *testing.T) {
	repo := NewAccountRepository(setupTestDB(t))
	ctx := context.Background()

	id, ok, err := repo.Create(ctx, &models.AccountInput{
		Code:       "1",
		Title:      "Yılmaz Nakliyat",
		Kind:       models.AccountKindCustomer,
		NationalID: "12345678901",
		Email:      "info@yilmaz.example",
	})
	if err != nil || !ok {
		t.Fatalf("Failed to create account: ok=%v err=%v", ok, err)
	}

	a, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Failed to get account: %v", err)
	}
	if a.LegalForm != models.LegalFormIndividual {
		t.Errorf("Expected default legal form, got %q", a.LegalForm)
	}
	if !a.HasNationalID() || *a.NationalID != "12345678901" {
		t.Errorf("Unexpected national id: %v", a.NationalID)
	}
	if !a.Balance.IsZero() {
		t.Errorf("Expected zero balance, got %s", a.Balance)
	}
}

func TestAccountRepositoryRejectsDuplicatesAndBadKind(t *testing.T) {
	repo := NewAccountRepository(setupTestDB(t))
	ctx := context.Background()

	if _, ok, err := repo.Create(ctx, &models.AccountInput{Code: "1", Title: "A", Kind: models.AccountKindCustomer, NationalID: "111"}); err != nil || !ok {
		t.Fatalf("Failed to create account: ok=%v err=%v", ok, err)
	}

	tests := []struct {
		name string
		in   models.AccountInput
	}{
		{"duplicate code", models.AccountInput{Code: "1", Title: "B", Kind: models.AccountKindCustomer}},
		{"duplicate national id", models.AccountInput{Code: "2", Title: "C", Kind: models.AccountKindCustomer, NationalID: "111"}},
		{"invalid kind", models.AccountInput{Code: "3", Title: "D", Kind: "Diğer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := repo.Create(ctx, &tt.in)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if ok {
				t.Error("Expected insert to be rejected")
			}
		})
	}

	// Blank national IDs are stored as NULL and never collide.
	for _, code := range []string{"10", "11"} {
		if _, ok, err := repo.Create(ctx, &models.AccountInput{Code: code, Title: "E" + code, Kind: models.AccountKindSupplier}); err != nil || !ok {
			t.Errorf("Expected account %s without national id to be created: ok=%v err=%v", code, ok, err)
		}
	}
}

func TestAccountRepositoryFinders(t *testing.T) {
	repo := NewAccountRepository(setupTestDB(t))
	ctx := context.Background()

	id, _, _ := repo.Create(ctx, &models.AccountInput{
		Code: "7", Title: "Demir Ltd", Kind: models.AccountKindCustomer,
		TaxNumber: "9990001112", Email: "demir@example.com", Address: "Konya",
	})

	if a, err := repo.FindByTaxNumber(ctx, "9990001112"); err != nil || a.ID != id {
		t.Errorf("FindByTaxNumber failed: %v", err)
	}
	if a, err := repo.FindByTitle(ctx, "  Demir Ltd "); err != nil || a.ID != id {
		t.Errorf("FindByTitle failed: %v", err)
	}

	for name, find := range map[string]func() (*models.Account, error){
		"blank national id": func() (*models.Account, error) { return repo.FindByNationalID(ctx, " ") },
		"blank tax number":  func() (*models.Account, error) { return repo.FindByTaxNumber(ctx, "") },
		"blank title":       func() (*models.Account, error) { return repo.FindByTitle(ctx, "") },
		"unknown id":        func() (*models.Account, error) { return repo.FindByNationalID(ctx, "000") },
	} {
		if _, err := find(); !errors.Is(err, ErrAccountNotFound) {
			t.Errorf("%s: expected ErrAccountNotFound, got %v", name, err)
		}
	}

	contact, err := repo.CustomerContactByTitle(ctx, "Demir Ltd")
	if err != nil {
		t.Fatalf("Failed to get contact: %v", err)
	}
	if contact.Email != "demir@example.com" || contact.Address != "Konya" {
		t.Errorf("Unexpected contact: %+v", contact)
	}
	if contact, _ := repo.CustomerContactByTitle(ctx, "Yok"); contact.Email != "" {
		t.Errorf("Expected empty contact, got %+v", contact)
	}
}

func TestAccountRepositoryNumericCodes(t *testing.T) {
	repo := NewAccountRepository(setupTestDB(t))
	ctx := context.Background()

	for i, code := range []string{"3", "C-12", "10", ""} {
		repo.Create(ctx, &models.AccountInput{Code: code, Title: string(rune('A' + i)), Kind: models.AccountKindCustomer})
	}

	codes, err := repo.NumericCodes(ctx)
	if err != nil {
		t.Fatalf("Failed to read codes: %v", err)
	}
	sort.Strings(codes)
	if len(codes) != 2 || codes[0] != "10" || codes[1] != "3" {
		t.Errorf("Expected [10 3], got %v", codes)
	}
}

func TestAccountRepositoryListFilters(t *testing.T) {
	repo := NewAccountRepository(setupTestDB(t))
	ctx := context.Background()

	repo.Create(ctx, &models.AccountInput{Code: "1", Title: "Alfa Oto", Kind: models.AccountKindCustomer, Phone: "5551112233"})
	repo.Create(ctx, &models.AccountInput{Code: "2", Title: "Beta Yedek Parça", Kind: models.AccountKindSupplier})

	all, _ := repo.List(ctx, "", "")
	if len(all) != 2 {
		t.Errorf("Expected 2 accounts, got %d", len(all))
	}
	suppliers, _ := repo.List(ctx, "", models.AccountKindSupplier)
	if len(suppliers) != 1 || suppliers[0].Title != "Beta Yedek Parça" {
		t.Errorf("Unexpected suppliers: %+v", suppliers)
	}
	byPhone, _ := repo.List(ctx, "555111", "")
	if len(byPhone) != 1 {
		t.Errorf("Expected phone search to match 1, got %d", len(byPhone))
	}
}
