package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
)

func TestNextFreeNumber(t *testing.T) {
	full := make([]int, 0, maxGapSearch)
	for n := 1; n <= maxGapSearch; n++ {
		full = append(full, n)
	}

	tests := []struct {
		name string
		used []int
		want int
	}{
		{"empty", nil, 1},
		{"gap", []int{1, 2, 4}, 3},
		{"contiguous", []int{1, 2, 3}, 4},
		{"starts late", []int{5, 6}, 1},
		{"range full", append(full, 12000), 12001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextFreeNumber(tt.used); got != tt.want {
				t.Errorf("nextFreeNumber() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWorkOrderCreateDefaults(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	in := &models.WorkOrderInput{
		CustomerTitle: "Usta Oto",
		UsedProducts: models.UsedProducts{
			{Code: "P1", Name: "Balata", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50), LineTotal: decimal.NewFromInt(100)},
			{Code: "P2", Name: "Filtre", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(40), LineTotal: decimal.NewFromInt(40)},
		},
	}
	id, err := s.orders.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if order.OrderNo != 1 {
		t.Errorf("Expected order number 1, got %d", order.OrderNo)
	}
	if order.Date == "" {
		t.Error("Expected date to default to today")
	}
	if !order.TotalAmount.Equal(decimal.NewFromInt(140)) {
		t.Errorf("Expected total 140, got %s", order.TotalAmount)
	}

	_, err = s.orders.Create(ctx, &models.WorkOrderInput{CustomerTitle: "  "})
	if !IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestWorkOrderNextNumberFillsGaps(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	for _, no := range []int{1, 2, 4} {
		if _, err := s.orders.Create(ctx, &models.WorkOrderInput{OrderNo: no, CustomerTitle: "Müşteri"}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	no, err := s.orders.NextOrderNumber(ctx)
	if err != nil {
		t.Fatalf("NextOrderNumber failed: %v", err)
	}
	if no != 3 {
		t.Errorf("Expected 3, got %d", no)
	}
}

func TestWorkOrderUpdateMissing(t *testing.T) {
	s := setupServices(t)
	err := s.orders.Update(context.Background(), 999, &models.WorkOrderInput{CustomerTitle: "X"})
	if !IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
	if err := s.orders.Delete(context.Background(), 999); !IsNotFound(err) {
		t.Errorf("Expected not found on delete, got %v", err)
	}
}
