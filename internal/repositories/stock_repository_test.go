package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
)

func TestStockRepositoryCreateAndGet(t *testing.T) {
	repo := NewStockRepository(setupTestDB(t))
	ctx := context.Background()

	id, ok, err := repo.Create(ctx, &models.StockInput{
		Code:      "P1",
		Name:      "Fren Balatası",
		Quantity:  decimal.NewFromInt(10),
		UnitPrice: decimal.RequireFromString("125.50"),
	})
	if err != nil || !ok {
		t.Fatalf("Failed to create stock item: ok=%v err=%v", ok, err)
	}

	item, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Failed to get stock item: %v", err)
	}
	if item.CodeString() != "P1" {
		t.Errorf("Expected code P1, got %q", item.CodeString())
	}
	if item.Unit != models.DefaultUnit {
		t.Errorf("Expected default unit %q, got %q", models.DefaultUnit, item.Unit)
	}
	if !item.Quantity.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected quantity 10, got %s", item.Quantity)
	}
	if !item.UnitPrice.Equal(decimal.RequireFromString("125.5")) {
		t.Errorf("Expected unit price 125.5, got %s", item.UnitPrice)
	}
}

func TestStockRepositoryDuplicateCode(t *testing.T) {
	repo := NewStockRepository(setupTestDB(t))
	ctx := context.Background()

	if _, ok, err := repo.Create(ctx, &models.StockInput{Code: "P1", Name: "A"}); err != nil || !ok {
		t.Fatalf("Failed to create first item: ok=%v err=%v", ok, err)
	}
	_, ok, err := repo.Create(ctx, &models.StockInput{Code: "P1", Name: "B"})
	if err != nil {
		t.Fatalf("Expected no error for duplicate, got %v", err)
	}
	if ok {
		t.Error("Expected duplicate code to be rejected")
	}
}

func TestStockRepositoryBlankCodesDoNotCollide(t *testing.T) {
	repo := NewStockRepository(setupTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"Vida", "Somun"} {
		if _, ok, err := repo.Create(ctx, &models.StockInput{Code: "  ", Name: name}); err != nil || !ok {
			t.Fatalf("Failed to create %s: ok=%v err=%v", name, ok, err)
		}
	}

	items, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	for _, it := range items {
		if it.Code != nil {
			t.Errorf("Expected NULL code for %s, got %q", it.Name, *it.Code)
		}
	}
}

func TestStockRepositoryListSearch(t *testing.T) {
	repo := NewStockRepository(setupTestDB(t))
	ctx := context.Background()

	repo.Create(ctx, &models.StockInput{Code: "YAG-01", Name: "Motor Yağı", Brand: "Castrol"})
	repo.Create(ctx, &models.StockInput{Code: "FLT-02", Name: "Hava Filtresi", Brand: "Bosch"})

	tests := []struct {
		search string
		want   int
	}{
		{"", 2},
		{"castrol", 1},
		{"flt", 1},
		{"filtre", 1},
		{"yok", 0},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			items, err := repo.List(ctx, tt.search)
			if err != nil {
				t.Fatalf("Failed to list: %v", err)
			}
			if len(items) != tt.want {
				t.Errorf("Expected %d items, got %d", tt.want, len(items))
			}
		})
	}

	byName, err := repo.SearchByName(ctx, "HAVA")
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Hava Filtresi" {
		t.Errorf("Unexpected search result: %+v", byName)
	}
}

func TestStockRepositoryUpdateDelete(t *testing.T) {
	repo := NewStockRepository(setupTestDB(t))
	ctx := context.Background()

	id, _, _ := repo.Create(ctx, &models.StockInput{Code: "P1", Name: "A"})
	repo.Create(ctx, &models.StockInput{Code: "P2", Name: "B"})

	ok, err := repo.Update(ctx, id, &models.StockInput{Code: "P2", Name: "A"})
	if err != nil || ok {
		t.Errorf("Expected duplicate code update to be rejected, ok=%v err=%v", ok, err)
	}

	ok, err = repo.Update(ctx, id, &models.StockInput{Code: "P1", Name: "A2", Unit: "Litre"})
	if err != nil || !ok {
		t.Fatalf("Failed to update: ok=%v err=%v", ok, err)
	}
	item, _ := repo.GetByCode(ctx, "P1")
	if item == nil || item.Name != "A2" || item.Unit != "Litre" {
		t.Errorf("Update not applied: %+v", item)
	}

	if _, err := repo.Update(ctx, 999, &models.StockInput{Name: "X"}); !errors.Is(err, ErrStockNotFound) {
		t.Errorf("Expected ErrStockNotFound, got %v", err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if err := repo.Delete(ctx, id); !errors.Is(err, ErrStockNotFound) {
		t.Errorf("Expected ErrStockNotFound on second delete, got %v", err)
	}
	if _, err := repo.GetByCode(ctx, ""); !errors.Is(err, ErrStockNotFound) {
		t.Errorf("Expected blank code to be not found, got %v", err)
	}
}

func TestStockRepositoryDecrementBatchTxRollsBack(t *testing.T) {
	repo := NewStockRepository(setupTestDB(t))
	ctx := context.Background()

	repo.Create(ctx, &models.StockInput{Code: "P1", Name: "A", Quantity: decimal.NewFromInt(10)})

	err := repo.DecrementBatchTx(ctx, map[string]decimal.Decimal{
		"P1":      decimal.NewFromInt(7),
		"MISSING": decimal.NewFromInt(1),
	})
	if !errors.Is(err, ErrStockNotFound) {
		t.Fatalf("Expected ErrStockNotFound, got %v", err)
	}

	item, _ := repo.GetByCode(ctx, "P1")
	if !item.Quantity.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected quantity to stay 10 after rollback, got %s", item.Quantity)
	}

	if err := repo.DecrementBatchTx(ctx, map[string]decimal.Decimal{"P1": decimal.NewFromInt(7)}); err != nil {
		t.Fatalf("Failed to apply batch: %v", err)
	}
	item, _ = repo.GetByCode(ctx, "P1")
	if !item.Quantity.Equal(decimal.NewFromInt(7)) {
		t.Errorf("Expected quantity 7, got %s", item.Quantity)
	}
}

func TestStockRepositoryUpsert(t *testing.T) {
	repo := NewStockRepository(setupTestDB(t))
	ctx := context.Background()

	inserted, err := repo.Upsert(ctx, &models.StockInput{Code: "P1", Name: "A", Quantity: decimal.NewFromInt(1)})
	if err != nil || !inserted {
		t.Fatalf("Expected insert, inserted=%v err=%v", inserted, err)
	}
	inserted, err = repo.Upsert(ctx, &models.StockInput{Code: "P1", Name: "A", Quantity: decimal.NewFromInt(5)})
	if err != nil || inserted {
		t.Fatalf("Expected update, inserted=%v err=%v", inserted, err)
	}
	item, _ := repo.GetByCode(ctx, "P1")
	if !item.Quantity.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected quantity 5, got %s", item.Quantity)
	}
}
