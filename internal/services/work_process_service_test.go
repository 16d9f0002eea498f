package services

import (
	"context"
	"testing"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
)

func TestWorkProcessLifecycle(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	id, err := s.processes.Create(ctx, &models.WorkProcessInput{
		Name: "Şanzıman Revizyonu",
		Type: models.ProcessTypeOverhaul,
		Items: []models.ProcessItemInput{
			{Name: "Sök"},
			{Name: "Temizle"},
			{Name: "Tak", Sequence: 10},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	p, err := s.processes.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(p.Items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(p.Items))
	}
	if p.Items[0].Sequence != 1 || p.Items[1].Sequence != 2 || p.Items[2].Sequence != 10 {
		t.Errorf("Unexpected sequence numbers: %d %d %d", p.Items[0].Sequence, p.Items[1].Sequence, p.Items[2].Sequence)
	}

	itemID := p.Items[1].ID
	if err := s.processes.MarkItemComplete(ctx, itemID, true); err != nil {
		t.Fatalf("MarkItemComplete failed: %v", err)
	}
	items, _ := s.processes.ListItems(ctx, id)
	if !items[1].Completed || items[1].CompletedAt == nil {
		t.Error("Expected item to be completed with a timestamp")
	}

	if err := s.processes.UpdateItem(ctx, itemID, &models.ProcessItemInput{Sequence: 2, Name: "Yıka", Completed: false}); err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	items, _ = s.processes.ListItems(ctx, id)
	if items[1].Name != "Yıka" || items[1].Completed || items[1].CompletedAt != nil {
		t.Errorf("Expected renamed and reopened item, got %+v", items[1])
	}

	if err := s.processes.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.processes.ListItems(ctx, id); !IsNotFound(err) {
		t.Errorf("Expected not found after delete, got %v", err)
	}
	if err := s.processes.MarkItemComplete(ctx, itemID, true); !IsNotFound(err) {
		t.Errorf("Expected items to be deleted with the process, got %v", err)
	}
}

func TestWorkProcessValidation(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   models.WorkProcessInput
	}{
		{"blank name", models.WorkProcessInput{Name: " "}},
		{"unknown type", models.WorkProcessInput{Name: "X", Type: "Boya"}},
		{"blank item", models.WorkProcessInput{Name: "X", Items: []models.ProcessItemInput{{Name: ""}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.processes.Create(ctx, &tt.in); !IsValidation(err) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}
